// Package game runs the gallery in an SDL window: it owns the frame loop,
// feeds input to the app and draws the room and the overlay.
package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/app"
	"github.com/Faultbox/midgard-gallery/internal/assets"
	"github.com/Faultbox/midgard-gallery/internal/catalog"
	"github.com/Faultbox/midgard-gallery/internal/config"
	"github.com/Faultbox/midgard-gallery/internal/engine/debug"
	"github.com/Faultbox/midgard-gallery/internal/engine/input"
	"github.com/Faultbox/midgard-gallery/internal/engine/lighting"
	"github.com/Faultbox/midgard-gallery/internal/engine/renderer"
	"github.com/Faultbox/midgard-gallery/internal/engine/ui2d"
	"github.com/Faultbox/midgard-gallery/internal/engine/window"
	"github.com/Faultbox/midgard-gallery/internal/events"
	"github.com/Faultbox/midgard-gallery/internal/logger"
	"github.com/Faultbox/midgard-gallery/internal/viewer"
)

const title = "Midgard Gallery"

// Game is the running gallery window.
type Game struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	overlay  *ui2d.Renderer
	queue    *input.Queue
	app      *app.App
	shots    *debug.ScreenshotCapture

	running  bool
	wantShot bool
	unsubs   []func()
}

// New opens the window and wires the gallery to it.
func New(cfg *config.Config) (*Game, error) {
	log := logger.Named("game")
	log.Info("initializing gallery",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("artworks", cfg.Data.Artworks),
	)

	g := &Game{
		cfg:   cfg,
		log:   log,
		queue: input.NewQueue(),
		shots: debug.NewScreenshotCapture(cfg.Graphics.ScreenshotDir, "gallery"),
	}

	var err error
	g.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Logger:     logger.Named("window"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := g.window.GetSize()

	// Renderers need the GL context the window just created.
	g.renderer, err = renderer.New(renderer.Config{
		Width:  width,
		Height: height,
		Sun: lighting.Sun{
			Longitude: cfg.Graphics.SunLongitude,
			Latitude:  cfg.Graphics.SunLatitude,
			Ambient:   cfg.Graphics.Ambient,
		},
		Logger: logger.Named("renderer"),
	})
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	g.overlay, err = ui2d.New(width, height)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}

	src, err := assets.NewSource(assets.Options{
		Root:       cfg.Data.AssetRoot,
		CacheBytes: int64(cfg.Data.CacheMB) << 20,
		Timeout:    cfg.Data.FetchTimeout,
		Logger:     logger.Named("assets"),
	})
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create asset source: %w", err)
	}

	// The app keeps its own copy of the window size from the config.
	cfgCopy := *cfg
	cfgCopy.Graphics.Width, cfgCopy.Graphics.Height = width, height
	g.app, err = app.New(&cfgCopy, app.Deps{
		Source:   src,
		Uploader: g.renderer,
		Lock:     g.window,
	})
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create gallery: %w", err)
	}

	bus := g.app.Bus()
	g.unsubs = append(g.unsubs,
		bus.Subscribe(events.TopicModalOpen, func(*events.Event) {
			g.window.SetTitle(title + " - " + g.app.Viewer().Entry().Title)
		}),
		bus.Subscribe(events.TopicModalClose, func(*events.Event) {
			g.window.SetTitle(title)
			g.window.SetCursor(window.CursorArrow)
		}),
	)

	log.Info("gallery initialized")
	return g, nil
}

// Run loads the artworks and runs the frame loop until the window closes or
// ctx is cancelled.
func (g *Game) Run(ctx context.Context) error {
	if err := g.app.Start(ctx); err != nil {
		return err
	}

	g.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	g.log.Info("starting frame loop")

	for g.running {
		if ctx.Err() != nil {
			break
		}

		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		g.queue.Reset()
		g.window.PollEvents(g.queue)
		for _, ev := range g.queue.Events() {
			g.handle(ev)
		}

		g.app.Update(dt)
		g.updateCursor()
		g.render()
		if g.wantShot {
			g.wantShot = false
			g.screenshot()
		}
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			textures, bytes := g.renderer.TextureStats()
			g.log.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Int("textures", textures),
				zap.Int64("texture_bytes", bytes),
				zap.Int64("cache_bytes", g.app.Gallery().MemoryUsage()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (g *Game) handle(ev input.Event) {
	switch ev.Type {
	case input.EventQuit:
		g.running = false
		return
	case input.EventWindowResize:
		g.renderer.Resize(ev.Width, ev.Height)
		g.overlay.Resize(ev.Width, ev.Height)
	case input.EventKeyDown:
		switch ev.Key {
		case input.KeyF11:
			g.window.ToggleFullscreen()
			return
		case input.KeyF12:
			g.wantShot = true
			return
		}
	}
	g.app.HandleEvent(ev)
}

func (g *Game) updateCursor() {
	v := g.app.Viewer()
	if !v.IsOpen() {
		return
	}
	x, y := g.app.Cursor()
	if !v.Layout().Image.Contains(float32(x), float32(y)) {
		g.window.SetCursor(window.CursorArrow)
		return
	}
	switch v.Zoom().Cursor() {
	case viewer.CursorGrab:
		g.window.SetCursor(window.CursorHand)
	case viewer.CursorGrabbing:
		g.window.SetCursor(window.CursorMove)
	default:
		g.window.SetCursor(window.CursorArrow)
	}
}

func (g *Game) render() {
	cam := g.app.Camera()
	g.renderer.Begin(cam.ViewProjection(), cam.Position)
	drawRoom(g.renderer, g.app.Gallery(), g.app.Hovered())
	g.renderer.End()

	g.overlay.Begin()
	w, h := g.window.GetSize()
	drawHUD(g.overlay, g.app, float32(w), float32(h))
	if g.app.Viewer().IsOpen() {
		drawModal(g.overlay, g.app, g.roomTexture, float32(w), float32(h))
	}
	g.overlay.End()
}

func (g *Game) screenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// roomTexture returns the texture currently shown in the room for entry, so
// the modal has something to draw before the detail tier arrives.
func (g *Game) roomTexture(e catalog.Entry) (id uint32, w, h int) {
	art, ok := g.app.Gallery().Lookup(e.Key())
	if !ok {
		return 0, 0, 0
	}
	tex := art.Material().Texture
	if tex == nil {
		return 0, 0, 0
	}
	return tex.ID, tex.Width, tex.Height
}

// Close tears the gallery down and destroys the window.
func (g *Game) Close() {
	g.log.Info("closing gallery")
	for _, u := range g.unsubs {
		u()
	}
	g.unsubs = nil
	if g.app != nil {
		g.app.Close()
	}
	if g.overlay != nil {
		g.overlay.Close()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
