// Package bus is a small publish/subscribe hub passed by reference to every
// component that needs to talk to another one.
//
// Topics are typed: a Topic[T] can only carry T payloads, so subscribers get
// the concrete value without type switches. Every subscription returns an
// Unsubscribe handle that the owner releases on teardown.
package bus

import (
	"fmt"
	"log/slog"
	"sync"
)

type Topic[T any] struct {
	name string
}

func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

func (t Topic[T]) Name() string { return t.name }

// Unsubscribe removes a subscription. Calling it more than once is harmless.
type Unsubscribe func()

// Describer is implemented by payloads that render themselves for logs.
type Describer interface {
	Describe() string
}

type subscription struct {
	id   uint64
	once bool
	fn   func(any)
}

type tap struct {
	id uint64
	fn func(topic string, payload any)
}

type Bus struct {
	mu       sync.Mutex
	seq      uint64
	handlers map[string][]*subscription
	taps     []tap
	logger   *slog.Logger
}

func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[string][]*subscription),
		logger:   logger.With(slog.String("component", "bus")),
	}
}

// On subscribes fn to every emission on t.
func On[T any](b *Bus, t Topic[T], fn func(T)) Unsubscribe {
	return b.add(t.name, false, func(p any) { fn(p.(T)) })
}

// Once subscribes fn to the next emission on t only.
func Once[T any](b *Bus, t Topic[T], fn func(T)) Unsubscribe {
	return b.add(t.name, true, func(p any) { fn(p.(T)) })
}

// Emit delivers payload to every subscriber of t in subscription order and
// reports whether anyone was listening. A panicking handler is logged and
// does not stop delivery to the others.
func Emit[T any](b *Bus, t Topic[T], payload T) bool {
	return b.emit(t.name, payload)
}

// Tap observes every emission on every topic. Used for logging and for
// recording event traces.
func (b *Bus) Tap(fn func(topic string, payload any)) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	id := b.seq
	b.taps = append(b.taps, tap{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, tp := range b.taps {
			if tp.id == id {
				b.taps = append(b.taps[:i], b.taps[i+1:]...)
				return
			}
		}
	}
}

// Off drops every subscriber of the named topic.
func (b *Bus) Off(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, topic)
}

// Count returns the number of live subscriptions on a topic.
func (b *Bus) Count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[topic])
}

func (b *Bus) add(topic string, once bool, fn func(any)) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	sub := &subscription{id: b.seq, once: once, fn: fn}
	b.handlers[topic] = append(b.handlers[topic], sub)
	return func() { b.remove(topic, sub.id) }
}

func (b *Bus) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[topic]
	for i, s := range subs {
		if s.id == id {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(b.handlers, topic)
		return
	}
	b.handlers[topic] = subs
}

func (b *Bus) emit(topic string, payload any) bool {
	b.mu.Lock()
	subs := append([]*subscription(nil), b.handlers[topic]...)
	taps := append([]tap(nil), b.taps...)
	for _, s := range subs {
		if s.once {
			b.removeLocked(topic, s.id)
		}
	}
	b.mu.Unlock()

	for _, tp := range taps {
		b.call(topic, func() { tp.fn(topic, payload) })
	}
	for _, s := range subs {
		b.call(topic, func() { s.fn(payload) })
	}
	return len(subs) > 0
}

func (b *Bus) removeLocked(topic string, id uint64) {
	subs := b.handlers[topic]
	for i, s := range subs {
		if s.id == id {
			b.handlers[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[topic]) == 0 {
		delete(b.handlers, topic)
	}
}

func (b *Bus) call(topic string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				slog.String("topic", topic),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}
