package events

import (
	"testing"

	"github.com/Faultbox/midgard-gallery/internal/engine/input"
)

func TestSubscribePublish(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(TopicKeyDown, func(ev *Event) { got = append(got, "first:"+ev.Input.Key.String()) })
	bus.Subscribe(TopicKeyDown, func(ev *Event) { got = append(got, "second:"+ev.Input.Key.String()) })
	bus.Subscribe(TopicKeyUp, func(ev *Event) { got = append(got, "keyup") })

	bus.Publish(&Event{Topic: TopicKeyDown, Input: input.Event{Type: input.EventKeyDown, Key: input.KeyW}})

	want := []string{"first:W", "second:W"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	off := bus.Subscribe(TopicWheel, func(*Event) { calls++ })

	if n := bus.Listeners(TopicWheel); n != 1 {
		t.Fatalf("Listeners = %d, want 1", n)
	}

	off()
	off() // second call is a no-op

	bus.Emit(TopicWheel, nil)
	if calls != 0 {
		t.Errorf("handler called %d times after unsubscribe", calls)
	}
	if n := bus.Listeners(TopicWheel); n != 0 {
		t.Errorf("Listeners = %d after unsubscribe, want 0", n)
	}
	if n := bus.Total(); n != 0 {
		t.Errorf("Total = %d, want 0", n)
	}
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()

	var second func()
	secondCalls := 0
	bus.Subscribe(TopicModalClose, func(*Event) { second() })
	second = bus.Subscribe(TopicModalClose, func(*Event) { secondCalls++ })

	bus.Emit(TopicModalClose, nil)
	if secondCalls != 0 {
		t.Errorf("handler removed mid-dispatch was still called %d times", secondCalls)
	}
}

func TestSubscribeDuringDispatchNotDelivered(t *testing.T) {
	bus := NewBus()
	lateCalls := 0
	bus.Subscribe(TopicClick, func(*Event) {
		bus.Subscribe(TopicClick, func(*Event) { lateCalls++ })
	})

	bus.Emit(TopicClick, nil)
	if lateCalls != 0 {
		t.Errorf("handler added mid-dispatch was called for the same event")
	}
	if n := bus.Listeners(TopicClick); n != 2 {
		t.Errorf("Listeners = %d, want 2", n)
	}
}

func TestPreventDefaultAndStopPropagation(t *testing.T) {
	bus := NewBus()
	after := 0
	bus.Subscribe(TopicWheel, func(ev *Event) {
		ev.PreventDefault()
		ev.StopPropagation()
	})
	bus.Subscribe(TopicWheel, func(*Event) { after++ })

	ev := bus.Emit(TopicWheel, nil)
	if !ev.DefaultPrevented() {
		t.Error("expected DefaultPrevented to be true")
	}
	if after != 0 {
		t.Errorf("handler after StopPropagation called %d times", after)
	}
}
