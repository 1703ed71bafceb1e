// Package controls turns keyboard and mouse input into first-person motion
// while the pointer is locked and no modal is open.
package controls

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gallery/internal/engine/camera"
	"github.com/Faultbox/midgard-gallery/internal/engine/input"
	"github.com/Faultbox/midgard-gallery/internal/events"
	"github.com/Faultbox/midgard-gallery/internal/interaction"
	"github.com/Faultbox/midgard-gallery/internal/logger"
)

// PointerLock captures and releases the mouse.
type PointerLock interface {
	Lock() error
	Unlock() error
}

// Bounds is the walkable rectangle centred on the origin.
type Bounds struct {
	HalfWidth  float32 // |x| limit
	HalfLength float32 // |z| limit
	EyeHeight  float32
}

// Clamp returns p moved inside the bounds at eye height.
func (b Bounds) Clamp(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(p.X(), -b.HalfWidth, b.HalfWidth),
		b.EyeHeight,
		mgl32.Clamp(p.Z(), -b.HalfLength, b.HalfLength),
	}
}

// Options configures a Controller.
type Options struct {
	Camera *camera.FirstPerson
	Gate   *interaction.Gate
	Lock   PointerLock
	Bounds Bounds
	Speed  float32 // units per second
	Logger *zap.Logger
}

// Controller moves the camera.
type Controller struct {
	cam    *camera.FirstPerson
	gate   *interaction.Gate
	lock   PointerLock
	bounds Bounds
	speed  float32
	log    *zap.Logger

	locked bool
	held   map[input.Key]bool

	stopGate func()
}

// New creates a controller and hooks it to the gate: opening the modal
// releases the pointer and forgets held keys.
func New(opts Options) *Controller {
	c := &Controller{
		cam:    opts.Camera,
		gate:   opts.Gate,
		lock:   opts.Lock,
		bounds: opts.Bounds,
		speed:  opts.Speed,
		log:    logger.Or(opts.Logger, "controls"),
		held:   make(map[input.Key]bool),
	}
	c.cam.Position = c.bounds.Clamp(c.cam.Position)
	c.stopGate = c.gate.OnChange(func(m interaction.Mode) {
		if m == interaction.ModalOpen {
			c.ReleaseLock()
			c.clearKeys()
		}
	})
	return c
}

// Close unhooks the controller from the gate.
func (c *Controller) Close() {
	c.stopGate()
	c.ReleaseLock()
}

// Locked reports whether the pointer is captured.
func (c *Controller) Locked() bool {
	return c.locked
}

// RequestLock captures the pointer. It is refused while the modal is open.
func (c *Controller) RequestLock() bool {
	if c.gate.IsModalOpen() {
		c.log.Debug("pointer lock refused while modal is open")
		return false
	}
	if c.locked {
		return true
	}
	if err := c.lock.Lock(); err != nil {
		c.log.Warn("pointer lock failed", zap.Error(err))
		return false
	}
	c.locked = true
	return true
}

// ReleaseLock frees the pointer.
func (c *Controller) ReleaseLock() {
	if !c.locked {
		return
	}
	c.locked = false
	if err := c.lock.Unlock(); err != nil {
		c.log.Warn("pointer unlock failed", zap.Error(err))
	}
}

// LockLost records that the host dropped the pointer lock on its own
// (window lost focus).
func (c *Controller) LockLost() {
	c.locked = false
	c.clearKeys()
}

// KeyDown records a held key. Keys pressed while the modal is open are
// dropped and never replayed.
func (c *Controller) KeyDown(k input.Key) {
	if c.gate.IsModalOpen() || !k.IsMovement() {
		return
	}
	c.held[k] = true
}

// KeyUp releases a key.
func (c *Controller) KeyUp(k input.Key) {
	delete(c.held, k)
}

// Held reports whether k is currently held.
func (c *Controller) Held(k input.Key) bool {
	return c.held[k]
}

func (c *Controller) clearKeys() {
	clear(c.held)
}

func (c *Controller) active() bool {
	return c.locked && !c.gate.IsModalOpen()
}

// Look applies relative mouse motion.
func (c *Controller) Look(dx, dy float32) {
	if !c.active() {
		return
	}
	c.cam.Look(dx, dy)
}

// Tick advances the camera by dt seconds of held movement keys.
func (c *Controller) Tick(dt float32) {
	if !c.active() || dt <= 0 {
		return
	}

	var forward, strafe float32
	if c.held[input.KeyW] {
		forward++
	}
	if c.held[input.KeyS] {
		forward--
	}
	if c.held[input.KeyD] {
		strafe++
	}
	if c.held[input.KeyA] {
		strafe--
	}
	if forward == 0 && strafe == 0 {
		return
	}

	dir := c.cam.FlatForward().Mul(forward).Add(c.cam.Right().Mul(strafe))
	if dir.Len() == 0 {
		return
	}
	step := dir.Normalize().Mul(c.speed * dt)
	c.cam.Position = c.bounds.Clamp(c.cam.Position.Add(step))
}

// Attach subscribes the controller to key and pointer-motion events and
// returns a function that removes the subscriptions.
func (c *Controller) Attach(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(events.TopicKeyDown, func(e *events.Event) { c.KeyDown(e.Input.Key) }),
		bus.Subscribe(events.TopicKeyUp, func(e *events.Event) { c.KeyUp(e.Input.Key) }),
		bus.Subscribe(events.TopicPointerMove, func(e *events.Event) {
			c.Look(float32(e.Input.RelX), float32(e.Input.RelY))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
