package controls

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gallery/internal/engine/camera"
	"github.com/Faultbox/midgard-gallery/internal/engine/input"
	"github.com/Faultbox/midgard-gallery/internal/events"
	"github.com/Faultbox/midgard-gallery/internal/interaction"
)

type fakeLock struct {
	locked  bool
	locks   int
	unlocks int
	err     error
}

func (l *fakeLock) Lock() error {
	if l.err != nil {
		return l.err
	}
	l.locked = true
	l.locks++
	return nil
}

func (l *fakeLock) Unlock() error {
	l.locked = false
	l.unlocks++
	return nil
}

type fixture struct {
	ctrl *Controller
	cam  *camera.FirstPerson
	gate *interaction.Gate
	lock *fakeLock
	bus  *events.Bus
}

// newFixture builds a 10 x 12 room with a one-unit margin at each end.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := events.NewBus()
	fx := &fixture{
		cam:  camera.NewFirstPerson(mgl32.Vec3{0, 1.6, 0}),
		gate: interaction.NewGate(bus, nil),
		lock: &fakeLock{},
		bus:  bus,
	}
	fx.ctrl = New(Options{
		Camera: fx.cam,
		Gate:   fx.gate,
		Lock:   fx.lock,
		Bounds: Bounds{HalfWidth: 5, HalfLength: 12/2 - 1, EyeHeight: 1.6},
		Speed:  5,
	})
	t.Cleanup(fx.ctrl.Close)
	return fx
}

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func TestTickMovesForward(t *testing.T) {
	fx := newFixture(t)
	if !fx.ctrl.RequestLock() {
		t.Fatal("RequestLock failed")
	}
	fx.ctrl.KeyDown(input.KeyW)
	fx.ctrl.Tick(1)

	p := fx.cam.Position
	if !near(p.Z(), -5) || !near(p.X(), 0) || p.Y() != 1.6 {
		t.Errorf("position = %v, want (0, 1.6, -5)", p)
	}
}

func TestTickDiagonalIsNormalised(t *testing.T) {
	fx := newFixture(t)
	fx.ctrl.RequestLock()
	fx.ctrl.KeyDown(input.KeyW)
	fx.ctrl.KeyDown(input.KeyD)
	fx.ctrl.Tick(0.2)

	moved := fx.cam.Position.Sub(mgl32.Vec3{0, 1.6, 0}).Len()
	if !near(moved, 1) {
		t.Errorf("diagonal step = %v, want 1 (speed 5 * 0.2s)", moved)
	}
}

func TestTickClampsToBounds(t *testing.T) {
	fx := newFixture(t)
	fx.ctrl.RequestLock()

	fx.ctrl.KeyDown(input.KeyW)
	for i := 0; i < 10; i++ {
		fx.ctrl.Tick(1)
	}
	if z := fx.cam.Position.Z(); z != -5 {
		t.Errorf("z = %v, want clamped at -5", z)
	}
	fx.ctrl.KeyUp(input.KeyW)

	fx.ctrl.KeyDown(input.KeyA)
	fx.ctrl.Tick(10)
	if x := fx.cam.Position.X(); x != -5 {
		t.Errorf("x = %v, want clamped at -5", x)
	}
}

func TestNoMovementWithoutLock(t *testing.T) {
	fx := newFixture(t)
	fx.ctrl.KeyDown(input.KeyW)
	fx.ctrl.Tick(1)
	fx.ctrl.Look(100, 0)

	if fx.cam.Position != (mgl32.Vec3{0, 1.6, 0}) {
		t.Errorf("moved without pointer lock: %v", fx.cam.Position)
	}
	if fx.cam.Yaw != 0 {
		t.Errorf("looked without pointer lock: yaw %v", fx.cam.Yaw)
	}
}

func TestModalGatesInput(t *testing.T) {
	fx := newFixture(t)
	fx.ctrl.RequestLock()
	fx.ctrl.KeyDown(input.KeyW)

	fx.gate.Open("1")
	if fx.ctrl.Locked() || fx.lock.locked {
		t.Error("opening the modal should release pointer lock")
	}
	if fx.ctrl.Held(input.KeyW) {
		t.Error("opening the modal should clear held keys")
	}
	if fx.ctrl.RequestLock() {
		t.Error("RequestLock should be refused while the modal is open")
	}

	// Pressed during the modal, released after it.
	fx.ctrl.KeyDown(input.KeyS)
	fx.gate.Close()
	if fx.ctrl.Held(input.KeyS) {
		t.Error("key pressed during the modal must not be replayed")
	}
	if fx.ctrl.Locked() {
		t.Error("lock must not be reacquired automatically after close")
	}

	fx.ctrl.RequestLock()
	fx.ctrl.Tick(1)
	if fx.cam.Position != (mgl32.Vec3{0, 1.6, 0}) {
		t.Errorf("camera moved from a dropped key: %v", fx.cam.Position)
	}
}

func TestRequestLockFailure(t *testing.T) {
	fx := newFixture(t)
	fx.lock.err = errors.New("no relative mouse mode")
	if fx.ctrl.RequestLock() {
		t.Error("RequestLock should report failure")
	}
	if fx.ctrl.Locked() {
		t.Error("controller should not think it is locked")
	}
}

func TestAttach(t *testing.T) {
	fx := newFixture(t)
	detach := fx.ctrl.Attach(fx.bus)
	fx.ctrl.RequestLock()

	fx.bus.Publish(&events.Event{Topic: events.TopicKeyDown, Input: input.Event{Type: input.EventKeyDown, Key: input.KeyW}})
	if !fx.ctrl.Held(input.KeyW) {
		t.Error("keydown on the bus should hold W")
	}
	fx.bus.Publish(&events.Event{Topic: events.TopicPointerMove, Input: input.Event{RelX: 10}})
	if fx.cam.Yaw == 0 {
		t.Error("pointermove should turn the camera")
	}
	fx.bus.Publish(&events.Event{Topic: events.TopicKeyUp, Input: input.Event{Key: input.KeyW}})
	if fx.ctrl.Held(input.KeyW) {
		t.Error("keyup should release W")
	}

	detach()
	if n := fx.bus.Total(); n != 0 {
		t.Errorf("subscriptions after detach = %d, want 0", n)
	}
}

func TestLockLost(t *testing.T) {
	fx := newFixture(t)
	fx.ctrl.RequestLock()
	fx.ctrl.KeyDown(input.KeyD)
	fx.ctrl.LockLost()
	if fx.ctrl.Locked() || fx.ctrl.Held(input.KeyD) {
		t.Error("LockLost should drop the lock and held keys")
	}
}
