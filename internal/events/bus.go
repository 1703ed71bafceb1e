// Package events provides topic-based event dispatch between viewer components.
//
// The Bus replaces ad hoc callback fields: a component subscribes to a topic
// and keeps the returned unsubscribe function, which it must call when it is
// disabled. Listeners reports the live subscription count per topic so tests
// can assert that nothing leaks across open/close cycles.
//
// Delivery is synchronous, in subscription order. A handler removed during a
// dispatch is not called for the remainder of that dispatch.
package events

import (
	"sync"

	"github.com/Faultbox/midgard-gallery/internal/engine/input"
)

// Topic names an event stream.
type Topic string

// Topics published by the viewer.
const (
	TopicModalOpen   Topic = "modal-open"
	TopicModalClose  Topic = "modal-close"
	TopicKeyDown     Topic = "keydown"
	TopicKeyUp       Topic = "keyup"
	TopicPointerDown Topic = "pointerdown"
	TopicPointerMove Topic = "pointermove"
	TopicPointerUp   Topic = "pointerup"
	TopicClick       Topic = "click"
	TopicWheel       Topic = "wheel"
	TopicResize      Topic = "resize"
)

// Event is a single dispatched notification.
type Event struct {
	Topic   Topic
	Input   input.Event
	Payload any

	defaultPrevented bool
	propagation      bool
}

// PreventDefault marks the event so the host skips its default action
// (page scroll for wheel events).
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents delivery to handlers subscribed after the current one.
func (e *Event) StopPropagation() {
	e.propagation = true
}

// Handler receives events for a topic.
type Handler func(*Event)

type subscription struct {
	topic   Topic
	handler Handler
	active  bool
}

// Bus dispatches events to subscribers.
type Bus struct {
	mu   sync.Mutex
	subs map[Topic][]*subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]*subscription)}
}

// Subscribe registers handler for topic and returns its unsubscribe function.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(topic Topic, handler Handler) func() {
	sub := &subscription{topic: topic, handler: handler, active: true}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	return func() { b.remove(sub) }
}

func (b *Bus) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !sub.active {
		return
	}
	sub.active = false

	list := b.subs[sub.topic]
	for i, s := range list {
		if s == sub {
			b.subs[sub.topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.topic]) == 0 {
		delete(b.subs, sub.topic)
	}
}

// Publish delivers ev to every handler subscribed to ev.Topic.
func (b *Bus) Publish(ev *Event) {
	b.mu.Lock()
	snapshot := append([]*subscription(nil), b.subs[ev.Topic]...)
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.mu.Lock()
		active := sub.active
		b.mu.Unlock()
		if !active {
			continue
		}
		sub.handler(ev)
		if ev.propagation {
			return
		}
	}
}

// Emit is shorthand for publishing a payload-only event.
func (b *Bus) Emit(topic Topic, payload any) *Event {
	ev := &Event{Topic: topic, Payload: payload}
	b.Publish(ev)
	return ev
}

// Listeners returns the number of live subscriptions for topic.
func (b *Bus) Listeners(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Total returns the number of live subscriptions across all topics.
func (b *Bus) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, list := range b.subs {
		n += len(list)
	}
	return n
}
