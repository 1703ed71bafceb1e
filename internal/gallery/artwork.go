package gallery

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/catalog"
	"github.com/Faultbox/midgard-gallery/internal/lod"
	"github.com/Faultbox/midgard-gallery/internal/logger"
)

// Quality is the coarse image quality currently shown.
type Quality int

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return "low"
	}
}

// Material is what the renderer draws on the canvas mesh. It is replaced as
// a whole so a frame never sees a half-updated value.
type Material struct {
	Texture *lod.Texture
	Version int
}

// Artwork is one framed image in the room.
type Artwork struct {
	Entry     catalog.Entry
	Placement Placement

	// PreloadNext fetches the next tier up whenever a texture is applied.
	PreloadNext bool

	cache    *lod.Cache
	bands    lod.Bands
	desired  lod.Tier
	material Material
	log      *zap.Logger
	disposed bool
}

// NewArtwork creates an artwork that loads its textures through cache.
func NewArtwork(entry catalog.Entry, placement Placement, cache *lod.Cache, bands lod.Bands, log *zap.Logger) *Artwork {
	return &Artwork{
		Entry:     entry,
		Placement: placement,
		cache:     cache,
		bands:     bands,
		log:       logger.Or(log, "artwork").With(zap.String("artwork", entry.Key())),
	}
}

// ID returns the artwork's catalog key.
func (a *Artwork) ID() string { return a.Entry.Key() }

// Material returns the current material.
func (a *Artwork) Material() Material { return a.material }

// Desired returns the tier the artwork is trying to show, or 0.
func (a *Artwork) Desired() lod.Tier { return a.desired }

// Cache returns the artwork's tier cache.
func (a *Artwork) Cache() *lod.Cache { return a.cache }

// Quality maps the applied tier to a quality level.
func (a *Artwork) Quality() Quality {
	tex := a.material.Texture
	switch {
	case tex == nil || tex.Tier <= a.cache.Lowest():
		return QualityLow
	case tex.Tier >= a.cache.Highest():
		return QualityHigh
	default:
		return QualityMedium
	}
}

// LowResReady reports whether the lowest tier is resident.
func (a *Artwork) LowResReady() bool { return a.cache.Has(a.cache.Lowest()) }

// HighResReady reports whether the highest tier is resident.
func (a *Artwork) HighResReady() bool { return a.cache.Has(a.cache.Highest()) }

// UpdateQuality picks the tier for a viewer at distance and requests it when
// it differs from the current target. It reports whether a request was made.
func (a *Artwork) UpdateQuality(distance float32) bool {
	if a.disposed {
		return false
	}
	tier := a.bands.Pick(distance)
	if tier == a.desired {
		return false
	}
	a.log.Debug("quality change", zap.Float32("distance", distance), zap.Int("from", int(a.desired)), zap.Int("to", int(tier)))
	a.load(tier)
	return true
}

// LoadHighRes targets the highest tier. Repeated calls share one load.
func (a *Artwork) LoadHighRes() *lod.Future {
	return a.load(a.cache.Highest())
}

// LoadLowRes targets the lowest tier. Repeated calls share one load.
func (a *Artwork) LoadLowRes() *lod.Future {
	return a.load(a.cache.Lowest())
}

func (a *Artwork) load(tier lod.Tier) *lod.Future {
	a.desired = tier
	f := a.cache.Request(tier)
	f.Then(func(tex *lod.Texture, err error) { a.apply(tier, tex, err) })
	return f
}

// apply installs a completed load if it is still the one wanted.
func (a *Artwork) apply(tier lod.Tier, tex *lod.Texture, err error) {
	if a.disposed {
		return
	}
	if err != nil {
		a.log.Warn("texture load failed, keeping current image", zap.Int("tier", int(tier)), zap.Error(err))
		return
	}
	if tier != a.desired {
		a.log.Debug("stale texture ignored", zap.Int("tier", int(tier)), zap.Int("desired", int(a.desired)))
		return
	}
	if a.material.Texture == tex {
		return
	}
	a.material = Material{Texture: tex, Version: a.material.Version + 1}
	a.cache.Activate(tier)
	if !a.PreloadNext {
		return
	}
	if next, ok := a.cache.Above(tier); ok {
		a.log.Debug("preloading next tier", zap.Int("tier", int(next)))
		a.cache.Preload(next)
	}
}

// Dispose releases every texture of the artwork. It is safe to call twice.
func (a *Artwork) Dispose() {
	if a.disposed {
		return
	}
	a.disposed = true
	a.material = Material{}
	a.cache.Dispose()
}

// Disposed reports whether Dispose has run.
func (a *Artwork) Disposed() bool { return a.disposed }
