package lod

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/logger"
)

// Fetcher produces the decoded image for one tier. It runs on a worker
// goroutine and must not touch the cache.
type Fetcher interface {
	Fetch(ctx context.Context, tier Tier) (*image.RGBA, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, tier Tier) (*image.RGBA, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, tier Tier) (*image.RGBA, error) {
	return f(ctx, tier)
}

// Policy decides which resident tiers survive a switch.
type Policy int

const (
	// KeepActive disposes every resident tier except the active one.
	KeepActive Policy = iota
	// KeepAll keeps every loaded tier until Dispose.
	KeepAll
)

func (p Policy) String() string {
	if p == KeepAll {
		return "keep-all"
	}
	return "keep-active"
}

// ParsePolicy maps a configuration name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "keep-active":
		return KeepActive, nil
	case "keep-all":
		return KeepAll, nil
	default:
		return KeepActive, fmt.Errorf("lod: unknown policy %q", name)
	}
}

// Options configures a Cache.
type Options struct {
	Name      string // used in logs
	Tiers     []Tier
	Policy    Policy
	Fetcher   Fetcher
	Uploader  Uploader
	Scheduler *Scheduler
	Logger    *zap.Logger
}

// Stats counts cache activity.
type Stats struct {
	Fetches   int // underlying fetches started
	Hits      int // requests served from resident textures
	Coalesced int // requests joined to a pending fetch
	Failures  int
	Evictions int
}

// Cache is the per-asset tier cache. All methods must be called on the
// render goroutine.
type Cache struct {
	name     string
	tiers    []Tier
	valid    map[Tier]bool
	policy   Policy
	fetcher  Fetcher
	uploader Uploader
	sched    *Scheduler
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	resident map[Tier]*Texture
	pending  map[Tier]*Future
	retained map[Tier]bool // preloaded tiers kept until the active tier changes
	active   Tier
	stats    Stats
	disposed bool
}

// NewCache creates a cache for the given tiers.
func NewCache(opts Options) (*Cache, error) {
	if len(opts.Tiers) == 0 {
		return nil, errors.New("lod: no tiers configured")
	}
	if opts.Fetcher == nil || opts.Uploader == nil || opts.Scheduler == nil {
		return nil, errors.New("lod: fetcher, uploader and scheduler are required")
	}

	tiers := append([]Tier(nil), opts.Tiers...)
	sortTiers(tiers)
	valid := make(map[Tier]bool, len(tiers))
	for _, t := range tiers {
		if t <= 0 {
			return nil, fmt.Errorf("lod: invalid tier %d", t)
		}
		valid[t] = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		name:     opts.Name,
		tiers:    tiers,
		valid:    valid,
		policy:   opts.Policy,
		fetcher:  opts.Fetcher,
		uploader: opts.Uploader,
		sched:    opts.Scheduler,
		log:      logger.Or(opts.Logger, "lod").With(zap.String("asset", opts.Name)),
		ctx:      ctx,
		cancel:   cancel,
		resident: make(map[Tier]*Texture),
		pending:  make(map[Tier]*Future),
		retained: make(map[Tier]bool),
	}, nil
}

// Tiers returns the configured tiers, ascending.
func (c *Cache) Tiers() []Tier {
	return append([]Tier(nil), c.tiers...)
}

// Lowest returns the smallest configured tier.
func (c *Cache) Lowest() Tier { return c.tiers[0] }

// Highest returns the largest configured tier.
func (c *Cache) Highest() Tier { return c.tiers[len(c.tiers)-1] }

// Request returns a future for tier, starting at most one fetch per tier.
func (c *Cache) Request(tier Tier) *Future {
	if c.disposed {
		return rejected(tier, ErrDisposed)
	}
	if !c.valid[tier] {
		return rejected(tier, fmt.Errorf("%w: %d", ErrUnknownTier, tier))
	}
	if tex, ok := c.resident[tier]; ok {
		c.stats.Hits++
		return resolved(tex)
	}
	if f, ok := c.pending[tier]; ok {
		c.stats.Coalesced++
		return f
	}

	f := newFuture(tier)
	c.pending[tier] = f
	c.stats.Fetches++
	c.log.Debug("fetch start", zap.Int("tier", int(tier)))

	c.sched.Go(c.ctx,
		func(ctx context.Context) func() {
			img, err := c.fetcher.Fetch(ctx, tier)
			return func() { c.complete(tier, f, img, err) }
		},
		func(err error) { c.complete(tier, f, nil, err) },
	)
	return f
}

// Above returns the next configured tier larger than t.
func (c *Cache) Above(t Tier) (Tier, bool) {
	for _, tier := range c.tiers {
		if tier > t {
			return tier, true
		}
	}
	return 0, false
}

// Preload requests several tiers (all configured tiers when none are given).
// Under KeepActive preloaded tiers stay resident until the active tier
// next changes.
func (c *Cache) Preload(tiers ...Tier) []*Future {
	if len(tiers) == 0 {
		tiers = c.tiers
	}
	out := make([]*Future, 0, len(tiers))
	for _, t := range tiers {
		if c.valid[t] && !c.disposed {
			c.retained[t] = true
		}
		out = append(out, c.Request(t))
	}
	return out
}

// Retained reports whether tier is held by a Preload.
func (c *Cache) Retained(tier Tier) bool {
	return c.retained[tier]
}

// complete runs on the render goroutine when a fetch finishes.
func (c *Cache) complete(tier Tier, f *Future, img *image.RGBA, err error) {
	if c.pending[tier] == f {
		delete(c.pending, tier)
	}

	if c.disposed {
		f.reject(ErrDisposed)
		return
	}
	if err != nil {
		c.fail(tier, f, err)
		return
	}
	if img == nil {
		c.fail(tier, f, &DecodeError{Tier: tier, Err: errors.New("empty image")})
		return
	}

	id, err := c.uploader.Upload(img)
	if err != nil {
		c.fail(tier, f, &TransferError{Tier: tier, URL: "gpu", Err: err})
		return
	}

	b := img.Bounds()
	tex := &Texture{
		Tier:    tier,
		Width:   b.Dx(),
		Height:  b.Dy(),
		ID:      id,
		release: c.uploader.Release,
	}
	c.resident[tier] = tex
	c.log.Debug("fetch done", zap.Int("tier", int(tier)), zap.Int("width", tex.Width), zap.Int("height", tex.Height))

	f.resolve(tex)
	c.enforce()
}

func (c *Cache) fail(tier Tier, f *Future, err error) {
	c.stats.Failures++
	c.log.Warn("texture load failed", zap.Int("tier", int(tier)), zap.Error(err))
	f.reject(err)
}

// Activate marks tier as the one currently displayed and applies the
// eviction policy.
func (c *Cache) Activate(tier Tier) {
	if c.disposed || !c.valid[tier] {
		return
	}
	if c.active != 0 && c.active != tier {
		clear(c.retained)
	}
	c.active = tier
	c.enforce()
}

// Active returns the tier last passed to Activate, or 0.
func (c *Cache) Active() Tier {
	return c.active
}

// enforce evicts tiers according to the policy. Victims are collected first
// so disposal never runs while iterating the resident map.
func (c *Cache) enforce() {
	if c.policy != KeepActive || c.active == 0 {
		return
	}
	var victims []Tier
	for t := range c.resident {
		if t != c.active && !c.retained[t] {
			victims = append(victims, t)
		}
	}
	for _, t := range victims {
		c.evict(t)
	}
}

func (c *Cache) evict(tier Tier) {
	tex, ok := c.resident[tier]
	if !ok {
		return
	}
	delete(c.resident, tier)
	tex.Dispose()
	c.stats.Evictions++
	c.log.Debug("evicted", zap.Int("tier", int(tier)))
}

// Has reports whether tier is resident.
func (c *Cache) Has(tier Tier) bool {
	_, ok := c.resident[tier]
	return ok
}

// Get returns the resident texture for tier, if any.
func (c *Cache) Get(tier Tier) (*Texture, bool) {
	tex, ok := c.resident[tier]
	return tex, ok
}

// Pending reports whether a fetch for tier is in flight.
func (c *Cache) Pending(tier Tier) bool {
	_, ok := c.pending[tier]
	return ok
}

// Resident returns the resident tiers, ascending.
func (c *Cache) Resident() []Tier {
	out := make([]Tier, 0, len(c.resident))
	for t := range c.resident {
		out = append(out, t)
	}
	sortTiers(out)
	return out
}

// MemoryUsage estimates the GPU bytes held by resident tiers.
func (c *Cache) MemoryUsage() int64 {
	var total int64
	for _, tex := range c.resident {
		total += tex.Bytes()
	}
	return total
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Disposed reports whether Dispose has run.
func (c *Cache) Disposed() bool {
	return c.disposed
}

// Dispose releases every resident texture, cancels in-flight fetches and
// rejects their futures. The cache accepts no further requests.
func (c *Cache) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.cancel()
	clear(c.retained)

	for _, t := range c.Resident() {
		c.evict(t)
	}

	pending := c.pending
	c.pending = make(map[Tier]*Future)
	for _, f := range pending {
		f.reject(ErrDisposed)
	}
	c.active = 0
}
