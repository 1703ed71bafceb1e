// Package app composes the gallery: catalog, room, camera controls, picking
// and the detail viewer. It has no window or GPU dependency; the host feeds
// it input events and a frame delta and draws what it exposes.
package app

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/assets"
	"github.com/Faultbox/midgard-gallery/internal/catalog"
	"github.com/Faultbox/midgard-gallery/internal/config"
	"github.com/Faultbox/midgard-gallery/internal/controls"
	"github.com/Faultbox/midgard-gallery/internal/engine/camera"
	"github.com/Faultbox/midgard-gallery/internal/engine/input"
	"github.com/Faultbox/midgard-gallery/internal/engine/picking"
	"github.com/Faultbox/midgard-gallery/internal/events"
	"github.com/Faultbox/midgard-gallery/internal/gallery"
	"github.com/Faultbox/midgard-gallery/internal/interaction"
	"github.com/Faultbox/midgard-gallery/internal/lod"
	"github.com/Faultbox/midgard-gallery/internal/logger"
	"github.com/Faultbox/midgard-gallery/internal/viewer"
)

// press is where the left button went down. A release only counts as a
// click when it lands on the same element and did not end a pan.
type press struct {
	down  bool
	modal bool
	hit   viewer.Hit
}

// Deps are the host services the app needs.
type Deps struct {
	Source   assets.Loader
	Uploader lod.Uploader
	Lock     controls.PointerLock
	Logger   *zap.Logger // nil leaves each component on its own named logger

	// NewFetcher overrides image fetching for both the room and the detail
	// view. Defaults to reading entry images through Source.
	NewFetcher func(entry catalog.Entry) lod.Fetcher
}

// App is the running gallery.
type App struct {
	cfg  *config.Config
	deps Deps
	log  *zap.Logger

	bus     *events.Bus
	gate    *interaction.Gate
	sched   *lod.Scheduler
	cam     *camera.FirstPerson
	ctrl    *controls.Controller
	picker  *picking.Service
	gallery *gallery.Gallery
	viewer  *viewer.Viewer
	loader  *catalog.Loader
	catalog *catalog.Catalog
	policy  lod.Policy

	hovered string
	cursorX int
	cursorY int
	press   press

	unsubs []func()
	closed bool
}

// New wires the components from cfg. Call Start to load the artworks.
func New(cfg *config.Config, deps Deps) (*App, error) {
	bands, err := bandsFromConfig(cfg.LOD)
	if err != nil {
		return nil, err
	}
	policy, err := lod.ParsePolicy(cfg.LOD.Policy)
	if err != nil {
		return nil, err
	}
	tiers := make([]lod.Tier, len(cfg.LOD.Tiers))
	for i, t := range cfg.LOD.Tiers {
		tiers[i] = lod.Tier(t)
	}

	log := logger.Or(deps.Logger, "app")
	if deps.NewFetcher == nil {
		src := deps.Source
		deps.NewFetcher = func(e catalog.Entry) lod.Fetcher {
			urls := make(map[lod.Tier]string, len(e.LODs))
			for k, v := range e.LODs {
				urls[lod.Tier(k)] = v
			}
			return &lod.ImageFetcher{Source: src, URL: e.Image, TierURLs: urls}
		}
	}

	a := &App{
		cfg:    cfg,
		deps:   deps,
		log:    log,
		policy: policy,
		bus:    events.NewBus(),
		sched:  lod.NewScheduler(cfg.LOD.MaxConcurrentLoads),
		picker: picking.NewService(),
		loader: catalog.NewLoader(deps.Source, cfg.Data.Artworks, deps.Logger),
	}
	a.gate = interaction.NewGate(a.bus, deps.Logger)

	a.cam = camera.NewFirstPerson(mgl32.Vec3{0, cfg.Camera.EyeHeight, cfg.Camera.StartZ})
	a.cam.FovY = cfg.Graphics.FOV
	a.cam.LookSensitivity = cfg.Camera.Sensitivity
	a.cam.Resize(cfg.Graphics.Width, cfg.Graphics.Height)

	a.ctrl = controls.New(controls.Options{
		Camera: a.cam,
		Gate:   a.gate,
		Lock:   deps.Lock,
		Bounds: controls.Bounds{
			HalfWidth:  cfg.Gallery.HalfWidth - cfg.Gallery.WallClearance,
			HalfLength: cfg.Gallery.Length/2 - cfg.Gallery.EndMargin,
			EyeHeight:  cfg.Camera.EyeHeight,
		},
		Speed:  cfg.Camera.Speed,
		Logger: deps.Logger,
	})

	a.gallery = gallery.New(gallery.Options{
		Layout: gallery.Layout{
			HalfWidth:     cfg.Gallery.HalfWidth,
			Length:        cfg.Gallery.Length,
			WallHeight:    cfg.Gallery.WallHeight,
			Spacing:       cfg.Gallery.ArtworkSpacing,
			CenterHeight:  cfg.Gallery.ArtworkHeight,
			WallInset:     cfg.Gallery.WallInset,
			ColumnSpacing: cfg.Gallery.ColumnSpacing,
		},
		Bands:       bands,
		Tiers:       tiers,
		Policy:      policy,
		PreloadNext: cfg.LOD.PreloadNext,
		Source:      deps.Source,
		Uploader:    deps.Uploader,
		Scheduler:   a.sched,
		Picker:      a.picker,
		Logger:      deps.Logger,
		NewFetcher:  deps.NewFetcher,
	})

	a.viewer = viewer.New(viewer.Options{
		Bus:        a.bus,
		Gate:       a.gate,
		MaxZoom:    cfg.Viewer.MaxZoom,
		ZoomStep:   cfg.Viewer.ZoomStep,
		WheelStep:  cfg.Viewer.WheelStep,
		Layout:     viewer.DefaultLayout(cfg.Graphics.Width, cfg.Graphics.Height),
		Detail:     a.detailCache,
		DetailTier: lod.Tier(cfg.Viewer.DetailTier),
		Logger:     deps.Logger,
	})

	a.unsubs = append(a.unsubs,
		a.bus.Subscribe(events.TopicClick, a.onClick),
		a.bus.Subscribe(events.TopicKeyDown, a.onKeyDown),
		a.ctrl.Attach(a.bus),
	)
	return a, nil
}

func bandsFromConfig(c config.LODConfig) (lod.Bands, error) {
	rows := make([]lod.Band, len(c.Bands))
	for i, b := range c.Bands {
		rows[i] = lod.Band{MaxDistance: b.MaxDistance, Tier: lod.Tier(b.Tier)}
	}
	bands, err := lod.NewBands(rows...)
	if err != nil {
		return nil, fmt.Errorf("lod bands: %w", err)
	}
	return bands, nil
}

func (a *App) detailCache(e catalog.Entry) (*lod.Cache, error) {
	return lod.NewCache(lod.Options{
		Name:      e.Key() + "/detail",
		Tiers:     []lod.Tier{lod.Tier(a.cfg.Viewer.DetailTier)},
		Fetcher:   a.deps.NewFetcher(e),
		Uploader:  a.deps.Uploader,
		Scheduler: a.sched,
		Logger:    a.deps.Logger,
	})
}

// Start loads the artwork list (or the built-in fallback) and fills the room.
func (a *App) Start(ctx context.Context) error {
	a.catalog = a.loader.LoadOrFallback(ctx)
	if err := a.gallery.Populate(a.catalog.List); err != nil {
		return fmt.Errorf("populating gallery: %w", err)
	}
	a.log.Info("gallery ready",
		zap.Int("artworks", a.catalog.Len()),
		zap.Stringer("policy", a.policy),
	)
	return nil
}

// HandleEvent translates one host event into bus events.
func (a *App) HandleEvent(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		a.Resize(ev.Width, ev.Height)
	case input.EventKeyDown:
		a.publish(events.TopicKeyDown, ev)
	case input.EventKeyUp:
		a.publish(events.TopicKeyUp, ev)
	case input.EventMouseMove:
		a.cursorX, a.cursorY = ev.MouseX, ev.MouseY
		a.publish(events.TopicPointerMove, ev)
	case input.EventMouseDown:
		if ev.Button == input.ButtonLeft {
			a.press = press{
				down:  true,
				modal: a.viewer.IsOpen(),
				hit:   a.viewer.HitTest(float32(ev.MouseX), float32(ev.MouseY)),
			}
		}
		a.publish(events.TopicPointerDown, ev)
	case input.EventMouseUp:
		panned := a.viewer.Zoom().Dragging()
		a.publish(events.TopicPointerUp, ev)
		if ev.Button == input.ButtonLeft {
			p := a.press
			a.press = press{}
			if a.isClick(p, ev, panned) {
				a.publish(events.TopicClick, ev)
			}
		}
	case input.EventMouseWheel:
		a.publish(events.TopicWheel, ev)
	case input.EventPointerLockLost:
		a.PointerLockLost()
	}
}

func (a *App) isClick(p press, ev input.Event, panned bool) bool {
	if !p.down || p.modal != a.viewer.IsOpen() {
		return false
	}
	if !p.modal {
		return true
	}
	return !panned && a.viewer.HitTest(float32(ev.MouseX), float32(ev.MouseY)) == p.hit
}

func (a *App) publish(topic events.Topic, ev input.Event) *events.Event {
	e := &events.Event{Topic: topic, Input: ev}
	a.bus.Publish(e)
	return e
}

// onClick opens the artwork under the crosshair (locked) or cursor
// (unlocked). An unlocked click on empty space captures the pointer.
func (a *App) onClick(e *events.Event) {
	if a.gate.IsModalOpen() {
		return
	}
	locked := a.ctrl.Locked()
	if hit, ok := a.picker.PickFrom(a.cam, float32(e.Input.MouseX), float32(e.Input.MouseY), locked); ok {
		a.OpenArtwork(hit.Owner)
		return
	}
	if !locked {
		a.ctrl.RequestLock()
	}
}

func (a *App) onKeyDown(e *events.Event) {
	if e.Input.Key == input.KeyEscape && !a.gate.IsModalOpen() && a.ctrl.Locked() {
		a.ctrl.ReleaseLock()
	}
}

// OpenArtwork shows the detail view for id. The full-resolution image is
// loaded by the viewer's detail cache; the room keeps its distance tier.
func (a *App) OpenArtwork(id string) bool {
	art, ok := a.gallery.Lookup(id)
	if !ok {
		a.log.Warn("open: unknown artwork", zap.String("artwork", id))
		return false
	}
	return a.viewer.Open(art.Entry)
}

// Update runs one frame: completed loads are applied, the camera moves,
// texture quality follows the viewer and the hover target is refreshed.
func (a *App) Update(dt float32) {
	a.sched.RunPending()
	a.ctrl.Tick(dt)
	a.gallery.UpdateQuality(a.cam.Position)
	a.updateHover()
}

func (a *App) updateHover() {
	if a.gate.IsModalOpen() {
		a.hovered = ""
		return
	}
	hit, ok := a.picker.PickFrom(a.cam, float32(a.cursorX), float32(a.cursorY), a.ctrl.Locked())
	if !ok {
		a.hovered = ""
		return
	}
	a.hovered = hit.Owner
}

// Resize updates the camera and the modal layout for a new window size.
func (a *App) Resize(width, height int) {
	a.cam.Resize(width, height)
	a.viewer.SetLayout(viewer.DefaultLayout(width, height))
	a.bus.Publish(&events.Event{Topic: events.TopicResize, Input: input.Event{Type: input.EventWindowResize, Width: width, Height: height}})
}

// PointerLockLost tells the app the host dropped the pointer lock.
func (a *App) PointerLockLost() {
	a.ctrl.LockLost()
}

// Close tears everything down and waits for in-flight loads to stop. It is
// safe to call twice.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.viewer.Close()
	a.gallery.Teardown()
	for _, u := range a.unsubs {
		u()
	}
	a.unsubs = nil
	a.ctrl.Close()
	a.sched.Close()
	a.sched.Wait()
	a.log.Info("gallery closed")
}

// Bus returns the event bus.
func (a *App) Bus() *events.Bus { return a.bus }

// Gate returns the interaction gate.
func (a *App) Gate() *interaction.Gate { return a.gate }

// Camera returns the viewer camera.
func (a *App) Camera() *camera.FirstPerson { return a.cam }

// Controller returns the camera controller.
func (a *App) Controller() *controls.Controller { return a.ctrl }

// Gallery returns the room.
func (a *App) Gallery() *gallery.Gallery { return a.gallery }

// Viewer returns the detail view.
func (a *App) Viewer() *viewer.Viewer { return a.viewer }

// Catalog returns the loaded artwork list, or nil before Start.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Cursor returns the last pointer position in window coordinates.
func (a *App) Cursor() (x, y int) { return a.cursorX, a.cursorY }

// Hovered returns the id of the artwork under the crosshair or cursor.
func (a *App) Hovered() string { return a.hovered }

// Scheduler returns the load scheduler.
func (a *App) Scheduler() *lod.Scheduler { return a.sched }
