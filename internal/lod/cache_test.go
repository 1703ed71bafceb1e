package lod

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"
)

// gatedFetcher blocks every fetch of a tier until a value is sent on that
// tier's gate. A nil value yields an image, anything else is returned as the
// error.
type gatedFetcher struct {
	gates map[Tier]chan error
	calls map[Tier]*atomic.Int32
}

func newGatedFetcher(tiers ...Tier) *gatedFetcher {
	f := &gatedFetcher{
		gates: make(map[Tier]chan error),
		calls: make(map[Tier]*atomic.Int32),
	}
	for _, t := range tiers {
		f.gates[t] = make(chan error, 4)
		f.calls[t] = new(atomic.Int32)
	}
	return f
}

func (f *gatedFetcher) Fetch(ctx context.Context, tier Tier) (*image.RGBA, error) {
	f.calls[tier].Add(1)
	select {
	case err := <-f.gates[tier]:
		if err != nil {
			return nil, err
		}
		size := int(tier) / 128
		return image.NewRGBA(image.Rect(0, 0, size, size)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) release(tier Tier, err error) { f.gates[tier] <- err }

func (f *gatedFetcher) count(tier Tier) int { return int(f.calls[tier].Load()) }

// fakeUploader hands out ids and tracks which are still live.
type fakeUploader struct {
	next uint32
	live map[uint32]bool
	fail error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{live: make(map[uint32]bool)}
}

func (u *fakeUploader) Upload(img *image.RGBA) (uint32, error) {
	if u.fail != nil {
		return 0, u.fail
	}
	u.next++
	u.live[u.next] = true
	return u.next, nil
}

func (u *fakeUploader) Release(id uint32) { delete(u.live, id) }

type cacheFixture struct {
	cache   *Cache
	fetcher *gatedFetcher
	up      *fakeUploader
	sched   *Scheduler
}

func newFixture(t *testing.T, policy Policy) *cacheFixture {
	t.Helper()
	tiers := []Tier{512, 1024, 2048}
	fx := &cacheFixture{
		fetcher: newGatedFetcher(tiers...),
		up:      newFakeUploader(),
		sched:   NewScheduler(4),
	}
	c, err := NewCache(Options{
		Name:      "test",
		Tiers:     tiers,
		Policy:    policy,
		Fetcher:   fx.fetcher,
		Uploader:  fx.up,
		Scheduler: fx.sched,
	})
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	fx.cache = c
	t.Cleanup(func() {
		c.Dispose()
		fx.sched.Close()
		fx.sched.Wait()
	})
	return fx
}

func (fx *cacheFixture) await(t *testing.T, f *Future) (*Texture, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	tex, err := fx.sched.Await(ctx, f)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("timed out waiting for tier %d", f.Tier())
	}
	return tex, err
}

func (fx *cacheFixture) load(t *testing.T, tier Tier) *Texture {
	t.Helper()
	f := fx.cache.Request(tier)
	fx.fetcher.release(tier, nil)
	tex, err := fx.await(t, f)
	if err != nil {
		t.Fatalf("load %d: %v", tier, err)
	}
	return tex
}

// loadActive loads tier and activates it from the completion callback, the
// way an artwork applies a fresh texture.
func (fx *cacheFixture) loadActive(t *testing.T, tier Tier) *Texture {
	t.Helper()
	f := fx.cache.Request(tier)
	f.Then(func(tex *Texture, err error) {
		if err == nil {
			fx.cache.Activate(tex.Tier)
		}
	})
	fx.fetcher.release(tier, nil)
	tex, err := fx.await(t, f)
	if err != nil {
		t.Fatalf("load %d: %v", tier, err)
	}
	return tex
}

func TestRequestCoalesces(t *testing.T) {
	fx := newFixture(t, KeepActive)

	f1 := fx.cache.Request(1024)
	f2 := fx.cache.Request(1024)
	if f1 != f2 {
		t.Fatal("concurrent requests for a pending tier should share one future")
	}
	if !fx.cache.Pending(1024) {
		t.Error("tier should be pending")
	}

	fx.fetcher.release(1024, nil)
	tex, err := fx.await(t, f1)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if tex.Tier != 1024 || tex.Width != 8 {
		t.Errorf("texture = tier %d width %d, want 1024 / 8", tex.Tier, tex.Width)
	}
	if got := fx.fetcher.count(1024); got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}

	f3 := fx.cache.Request(1024)
	if !f3.Settled() {
		t.Error("resident tier should resolve immediately")
	}
	if got, _ := f3.Result(); got != tex {
		t.Error("hit should return the resident texture")
	}

	st := fx.cache.Stats()
	if st.Fetches != 1 || st.Coalesced != 1 || st.Hits != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestThenOrdering(t *testing.T) {
	fx := newFixture(t, KeepActive)

	var order []int
	f := fx.cache.Request(512)
	f.Then(func(*Texture, error) { order = append(order, 1) })
	f.Then(func(*Texture, error) { order = append(order, 2) })
	fx.fetcher.release(512, nil)
	fx.await(t, f)

	f.Then(func(*Texture, error) { order = append(order, 3) })
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("callback order = %v, want [1 2 3]", order)
	}
	select {
	case <-f.Done():
	default:
		t.Error("Done should be closed after settling")
	}
}

func TestUnknownTier(t *testing.T) {
	fx := newFixture(t, KeepActive)

	f := fx.cache.Request(4096)
	if !f.Settled() {
		t.Fatal("unknown tier should reject immediately")
	}
	if _, err := f.Result(); !errors.Is(err, ErrUnknownTier) {
		t.Errorf("err = %v, want ErrUnknownTier", err)
	}
}

func TestFailureNotCached(t *testing.T) {
	fx := newFixture(t, KeepActive)

	f := fx.cache.Request(512)
	fx.fetcher.release(512, &DecodeError{Tier: 512, URL: "x.jpg", Err: errors.New("bad header")})
	_, err := fx.await(t, f)

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
	if fx.cache.Has(512) || fx.cache.Pending(512) {
		t.Error("failed tier must be neither resident nor pending")
	}

	fx.load(t, 512)
	if got := fx.fetcher.count(512); got != 2 {
		t.Errorf("fetches = %d, want 2 (retry refetches)", got)
	}
	if got := fx.cache.Stats().Failures; got != 1 {
		t.Errorf("failures = %d, want 1", got)
	}
}

func TestUploadFailure(t *testing.T) {
	fx := newFixture(t, KeepActive)
	fx.up.fail = errors.New("out of memory")

	f := fx.cache.Request(512)
	fx.fetcher.release(512, nil)
	_, err := fx.await(t, f)

	var te *TransferError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransferError", err)
	}
	if fx.cache.Has(512) {
		t.Error("tier must not be resident after upload failure")
	}
}

func TestKeepActiveEvicts(t *testing.T) {
	fx := newFixture(t, KeepActive)

	fx.loadActive(t, 512)
	fx.loadActive(t, 1024)

	res := fx.cache.Resident()
	if len(res) != 1 || res[0] != 1024 {
		t.Fatalf("resident = %v, want [1024]", res)
	}
	if got := len(fx.up.live); got != 1 {
		t.Errorf("live GPU textures = %d, want 1", got)
	}

	f := fx.cache.Request(512)
	if f.Settled() {
		t.Fatal("evicted tier should be refetched")
	}
	fx.fetcher.release(512, nil)
	fx.await(t, f)
	if got := fx.fetcher.count(512); got != 2 {
		t.Errorf("512 fetches = %d, want 2", got)
	}
	if got := fx.cache.Stats().Evictions; got < 1 {
		t.Errorf("evictions = %d, want at least 1", got)
	}
}

func TestStaleCompletionEvicted(t *testing.T) {
	fx := newFixture(t, KeepActive)

	fx.loadActive(t, 1024)

	// 512 finishes while 1024 is still the active tier.
	tex := fx.load(t, 512)
	if !tex.Disposed() {
		t.Error("completion for an inactive tier should be disposed")
	}
	if fx.cache.Has(512) {
		t.Error("inactive tier should not stay resident")
	}
	if !fx.cache.Has(1024) {
		t.Error("active tier should stay resident")
	}
}

func TestActivateInCallback(t *testing.T) {
	fx := newFixture(t, KeepActive)

	fx.loadActive(t, 512)

	tex := fx.loadActive(t, 2048)
	if tex.Disposed() {
		t.Error("texture activated by its callback must stay live")
	}
	res := fx.cache.Resident()
	if len(res) != 1 || res[0] != 2048 {
		t.Errorf("resident = %v, want [2048]", res)
	}
}

func TestPreloadRetainedUntilSwitch(t *testing.T) {
	fx := newFixture(t, KeepActive)

	fx.loadActive(t, 512)

	futures := fx.cache.Preload(1024, 2048)
	for _, f := range futures {
		fx.fetcher.release(f.Tier(), nil)
	}
	for _, f := range futures {
		tex, err := fx.await(t, f)
		if err != nil {
			t.Fatalf("tier %d: %v", f.Tier(), err)
		}
		if tex.Disposed() {
			t.Errorf("preloaded tier %d was disposed", f.Tier())
		}
	}

	if got := len(fx.cache.Resident()); got != 3 {
		t.Errorf("resident = %v, want 3 tiers", fx.cache.Resident())
	}
	if got := fx.cache.Stats().Evictions; got != 0 {
		t.Errorf("evictions = %d, want 0", got)
	}

	// A later request is served without a new fetch.
	if f := fx.cache.Request(2048); !f.Settled() {
		t.Error("request for a preloaded tier should be settled")
	}
	if got := fx.fetcher.count(2048); got != 1 {
		t.Errorf("2048 fetches = %d, want 1", got)
	}

	// Switching the active tier drops the retention.
	fx.cache.Activate(2048)
	res := fx.cache.Resident()
	if len(res) != 1 || res[0] != 2048 {
		t.Errorf("resident after switch = %v, want [2048]", res)
	}
	if fx.cache.Retained(1024) {
		t.Error("1024 should no longer be retained")
	}
}

func TestAbove(t *testing.T) {
	fx := newFixture(t, KeepActive)

	tests := []struct {
		in   Tier
		want Tier
		ok   bool
	}{
		{512, 1024, true},
		{1024, 2048, true},
		{2048, 0, false},
		{0, 512, true},
	}
	for _, tt := range tests {
		got, ok := fx.cache.Above(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Above(%d) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestKeepAll(t *testing.T) {
	fx := newFixture(t, KeepAll)

	futures := fx.cache.Preload()
	if len(futures) != 3 {
		t.Fatalf("Preload returned %d futures, want 3", len(futures))
	}
	for _, f := range futures {
		fx.fetcher.release(f.Tier(), nil)
	}
	for _, f := range futures {
		if _, err := fx.await(t, f); err != nil {
			t.Fatalf("tier %d: %v", f.Tier(), err)
		}
	}
	fx.cache.Activate(2048)

	if got := len(fx.cache.Resident()); got != 3 {
		t.Errorf("resident tiers = %d, want 3", got)
	}
	// 4x4 + 8x8 + 16x16 RGBA
	if got, want := fx.cache.MemoryUsage(), int64((16+64+256)*4); got != want {
		t.Errorf("MemoryUsage = %d, want %d", got, want)
	}
}

func TestDispose(t *testing.T) {
	fx := newFixture(t, KeepAll)

	fx.load(t, 512)
	fx.load(t, 1024)
	pending := fx.cache.Request(2048)

	fx.cache.Dispose()

	if got := len(fx.up.live); got != 0 {
		t.Errorf("live GPU textures after Dispose = %d, want 0", got)
	}
	if got := len(fx.cache.Resident()); got != 0 {
		t.Errorf("resident after Dispose = %d, want 0", got)
	}
	if _, err := pending.Result(); !errors.Is(err, ErrDisposed) {
		t.Errorf("pending err = %v, want ErrDisposed", err)
	}
	if _, err := fx.cache.Request(512).Result(); !errors.Is(err, ErrDisposed) {
		t.Errorf("request after Dispose: err = %v, want ErrDisposed", err)
	}

	// The cancelled fetch still posts its continuation; it must not upload.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	fx.sched.RunNext(ctx)
	if got := len(fx.up.live); got != 0 {
		t.Errorf("late completion uploaded a texture")
	}

	fx.cache.Dispose() // idempotent
}

func TestNewCacheValidation(t *testing.T) {
	s := NewScheduler(1)
	defer s.Close()
	fetch := FetcherFunc(func(context.Context, Tier) (*image.RGBA, error) { return nil, nil })

	if _, err := NewCache(Options{Fetcher: fetch, Uploader: newFakeUploader(), Scheduler: s}); err == nil {
		t.Error("expected error for no tiers")
	}
	if _, err := NewCache(Options{Tiers: []Tier{512}, Uploader: newFakeUploader(), Scheduler: s}); err == nil {
		t.Error("expected error for missing fetcher")
	}
	c, err := NewCache(Options{Tiers: []Tier{2048, 512}, Fetcher: fetch, Uploader: newFakeUploader(), Scheduler: s})
	if err != nil {
		t.Fatal(err)
	}
	if c.Lowest() != 512 || c.Highest() != 2048 {
		t.Errorf("Lowest/Highest = %d/%d, want 512/2048", c.Lowest(), c.Highest())
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", KeepActive, false},
		{"keep-active", KeepActive, false},
		{"keep-all", KeepAll, false},
		{"lru", KeepActive, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
