// Package gallery builds the room: it places artworks along the walls,
// registers their meshes for picking and drives per-artwork texture quality
// from the viewer's distance.
package gallery

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/assets"
	"github.com/Faultbox/midgard-gallery/internal/catalog"
	"github.com/Faultbox/midgard-gallery/internal/engine/picking"
	"github.com/Faultbox/midgard-gallery/internal/lod"
	"github.com/Faultbox/midgard-gallery/internal/logger"
)

// Options configures a Gallery.
type Options struct {
	Layout    Layout
	Bands     lod.Bands
	Tiers     []lod.Tier
	Policy    lod.Policy
	Source    assets.Loader
	Uploader  lod.Uploader
	Scheduler *lod.Scheduler
	Picker    *picking.Service
	Logger    *zap.Logger

	// PreloadNext makes every artwork fetch the tier above the one it shows.
	PreloadNext bool

	// NewFetcher overrides how artwork images are fetched. The default reads
	// the entry's image through Source.
	NewFetcher func(entry catalog.Entry) lod.Fetcher
}

// Gallery owns the artworks of the room.
type Gallery struct {
	opts Options
	log  *zap.Logger

	artworks []*Artwork
	byID     map[string]*Artwork
	walls    []picking.AABB
	columns  []picking.AABB
}

// New creates an empty gallery.
func New(opts Options) *Gallery {
	if opts.NewFetcher == nil {
		src := opts.Source
		opts.NewFetcher = func(e catalog.Entry) lod.Fetcher {
			return &lod.ImageFetcher{Source: src, URL: e.Image, TierURLs: tierURLs(e.LODs)}
		}
	}
	return &Gallery{
		opts: opts,
		log:  logger.Or(opts.Logger, "gallery"),
		byID: make(map[string]*Artwork),
	}
}

func tierURLs(m map[int]string) map[lod.Tier]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[lod.Tier]string, len(m))
	for k, v := range m {
		out[lod.Tier(k)] = v
	}
	return out
}

// Populate replaces the room contents with entries and starts loading the
// low-resolution tier of each artwork. Entries whose key was already placed
// are skipped.
func (g *Gallery) Populate(entries []catalog.Entry) error {
	g.Teardown()

	entries = g.unique(entries)
	n := len(entries)
	for i, e := range entries {
		cache, err := lod.NewCache(lod.Options{
			Name:      e.Key(),
			Tiers:     g.opts.Tiers,
			Policy:    g.opts.Policy,
			Fetcher:   g.opts.NewFetcher(e),
			Uploader:  g.opts.Uploader,
			Scheduler: g.opts.Scheduler,
			Logger:    g.opts.Logger,
		})
		if err != nil {
			g.Teardown()
			return fmt.Errorf("creating texture cache for %s: %w", e.Key(), err)
		}

		art := NewArtwork(e, g.opts.Layout.Place(i, n), cache, g.opts.Bands, g.opts.Logger)
		art.PreloadNext = g.opts.PreloadNext
		g.artworks = append(g.artworks, art)
		g.byID[art.ID()] = art

		frame, image, panel := art.Placement.Meshes()
		g.opts.Picker.AddMesh(frame, art.ID())
		g.opts.Picker.AddMesh(image, art.ID())
		g.opts.Picker.AddMesh(panel, art.ID())

		art.LoadLowRes()
	}

	g.walls = g.opts.Layout.Walls()
	g.columns = g.opts.Layout.Columns(n)
	for _, box := range g.walls {
		g.opts.Picker.AddMesh(box, "")
	}
	for _, box := range g.columns {
		g.opts.Picker.AddMesh(box, "")
	}

	g.log.Info("gallery populated", zap.Int("artworks", n), zap.Int("columns", len(g.columns)))
	return nil
}

func (g *Gallery) unique(entries []catalog.Entry) []catalog.Entry {
	seen := make(map[string]bool, len(entries))
	out := make([]catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Key()] {
			g.log.Warn("duplicate artwork skipped", zap.String("artwork", e.Key()), zap.String("title", e.Title))
			continue
		}
		seen[e.Key()] = true
		out = append(out, e)
	}
	return out
}

// UpdateQuality feeds the viewer's distance to every artwork and returns how
// many issued a request.
func (g *Gallery) UpdateQuality(viewer mgl32.Vec3) int {
	n := 0
	for _, a := range g.artworks {
		if a.UpdateQuality(viewer.Sub(a.Placement.Position).Len()) {
			n++
		}
	}
	return n
}

// Lookup finds an artwork by catalog key.
func (g *Gallery) Lookup(id string) (*Artwork, bool) {
	a, ok := g.byID[id]
	return a, ok
}

// Artworks returns the artworks in placement order.
func (g *Gallery) Artworks() []*Artwork {
	return g.artworks
}

// Walls returns the wall boxes.
func (g *Gallery) Walls() []picking.AABB { return g.walls }

// Columns returns the column boxes.
func (g *Gallery) Columns() []picking.AABB { return g.columns }

// Layout returns the room layout.
func (g *Gallery) Layout() Layout { return g.opts.Layout }

// ResidentTiers counts resident textures across all artworks.
func (g *Gallery) ResidentTiers() int {
	n := 0
	for _, a := range g.artworks {
		n += len(a.Cache().Resident())
	}
	return n
}

// MemoryUsage sums the estimated texture memory of every artwork.
func (g *Gallery) MemoryUsage() int64 {
	var total int64
	for _, a := range g.artworks {
		total += a.Cache().MemoryUsage()
	}
	return total
}

// Teardown disposes every artwork and removes all picking meshes.
func (g *Gallery) Teardown() {
	if len(g.artworks) == 0 && len(g.walls) == 0 {
		return
	}
	for _, a := range g.artworks {
		a.Dispose()
	}
	g.opts.Picker.Clear()
	g.artworks = nil
	g.byID = make(map[string]*Artwork)
	g.walls = nil
	g.columns = nil
	g.log.Debug("gallery torn down")
}
