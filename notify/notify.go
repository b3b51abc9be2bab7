// Package notify implements a small synchronous publish/subscribe bus.
//
// Handlers are registered per event name and invoked in registration order
// on the publisher's goroutine. A failing handler (returned error or panic)
// is isolated: it is logged, reported to Options.OnFailure and the remaining
// handlers still run. Publish never surfaces handler failures to its caller.
package notify

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrInvalidArgument is returned (wrapped) for blank event names and nil
// handlers.
var ErrInvalidArgument = errors.New("notify: invalid argument")

// Handler consumes one payload. A non-nil error marks the delivery as failed.
type Handler[P any] func(payload P) error

// Unsubscribe revokes a single registration. Calling it more than once is safe.
type Unsubscribe func()

// HandlerPanicError wraps a value recovered from a panicking handler.
type HandlerPanicError struct {
	Event string
	Value any
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("notify: handler for %q panicked: %v", e.Event, e.Value)
}

// Options configures a Bus. Zero values are safe:
//   - nil Logger    => zap.NewNop()
//   - nil OnFailure => failures are only logged and counted
type Options struct {
	Logger *zap.Logger
	// OnFailure is called synchronously after a handler fails. It must not
	// panic.
	OnFailure func(event string, err error)
}

type subscription[P any] struct {
	id    uint64
	h     Handler[P]
	once  bool
	fired atomic.Bool
}

// Bus is a registry of handlers keyed by event name. Safe for concurrent use.
type Bus[P any] struct {
	mu     sync.RWMutex
	subs   map[string][]*subscription[P]
	nextID uint64

	log       *zap.Logger
	onFailure func(event string, err error)
	failures  atomic.Uint64
}

// New constructs an empty bus.
func New[P any](opt Options) *Bus[P] {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return &Bus[P]{
		subs:      make(map[string][]*subscription[P]),
		log:       opt.Logger,
		onFailure: opt.OnFailure,
	}
}

// Subscribe registers h for future publications of event. The same handler
// may be registered several times; each registration is delivered to.
func (b *Bus[P]) Subscribe(event string, h Handler[P]) (Unsubscribe, error) {
	return b.subscribe(event, h, false)
}

// Once registers h for a single delivery; the registration is removed
// before h runs.
func (b *Bus[P]) Once(event string, h Handler[P]) (Unsubscribe, error) {
	return b.subscribe(event, h, true)
}

func (b *Bus[P]) subscribe(event string, h Handler[P], once bool) (Unsubscribe, error) {
	if err := validateName(event); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("%w: handler for %q is nil", ErrInvalidArgument, event)
	}

	b.mu.Lock()
	b.nextID++
	s := &subscription[P]{id: b.nextID, h: h, once: once}
	b.subs[event] = append(b.subs[event], s)
	b.mu.Unlock()

	var done sync.Once
	return func() {
		done.Do(func() { b.remove(event, s.id) })
	}, nil
}

// Publish delivers payload to every handler registered for event, in
// registration order. Handlers registered or removed while Publish runs do
// not affect the in-flight delivery. Without handlers this is a no-op.
func (b *Bus[P]) Publish(event string, payload P) error {
	if err := validateName(event); err != nil {
		return err
	}

	b.mu.RLock()
	subs := slices.Clone(b.subs[event])
	b.mu.RUnlock()

	for i, s := range subs {
		if s.once {
			if !s.fired.CompareAndSwap(false, true) {
				continue
			}
			b.remove(event, s.id)
		}
		if err := deliver(event, s.h, payload); err != nil {
			b.fail(event, i, err)
		}
	}
	return nil
}

// Counts returns the number of registrations per event name.
func (b *Bus[P]) Counts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]int, len(b.subs))
	for name, subs := range b.subs {
		out[name] = len(subs)
	}
	return out
}

// Clear drops every registration.
func (b *Bus[P]) Clear() {
	b.mu.Lock()
	b.subs = make(map[string][]*subscription[P])
	b.mu.Unlock()
}

// Failures returns the number of failed deliveries since construction.
func (b *Bus[P]) Failures() uint64 { return b.failures.Load() }

func (b *Bus[P]) remove(event string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[event]
	i := slices.IndexFunc(subs, func(s *subscription[P]) bool { return s.id == id })
	if i < 0 {
		return
	}
	subs = slices.Delete(subs, i, i+1)
	if len(subs) == 0 {
		delete(b.subs, event)
		return
	}
	b.subs[event] = subs
}

func (b *Bus[P]) fail(event string, idx int, err error) {
	b.failures.Add(1)
	b.log.Error("event handler failed",
		zap.String("event", event),
		zap.Int("handler", idx),
		zap.Error(err),
	)
	if b.onFailure != nil {
		b.onFailure(event, err)
	}
}

// deliver runs h, converting a panic into a *HandlerPanicError.
func deliver[P any](event string, h Handler[P], payload P) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerPanicError{Event: event, Value: r}
		}
	}()
	return h(payload)
}

func validateName(event string) error {
	if strings.TrimSpace(event) == "" {
		return fmt.Errorf("%w: event name must be a non-empty string", ErrInvalidArgument)
	}
	return nil
}
