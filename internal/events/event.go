package events

import (
	"sync"
)

// Event is a typed pub/sub point.
// Listeners run synchronously on the goroutine that calls Notify, in the
// order they were registered. Channel listeners are fed without blocking.
type Event[T any] struct {
	mu         sync.RWMutex
	listeners  []listener[T]
	nextID     uint64
	replayLast bool
	last       *T
}

type listener[T any] struct {
	id       uint64
	callback func(T)
}

// NewEvent creates an Event.
// replayLast: if true, the Event remembers the last Notify value and hands it
// to every new listener at registration time.
func NewEvent[T any](replayLast bool) *Event[T] {
	return &Event[T]{
		replayLast: replayLast,
	}
}

// Listen registers a callback and returns its deregistration function.
// Calling the deregistration function more than once is safe.
func (e *Event[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("Event: callback cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	// copy-on-write so Notify can iterate a snapshot without holding the lock
	next := make([]listener[T], 0, len(e.listeners)+1)
	next = append(next, e.listeners...)
	e.listeners = append(next, listener[T]{id: id, callback: callback})
	var replay *T
	if e.replayLast && e.last != nil {
		v := *e.last
		replay = &v
	}
	e.mu.Unlock()

	if replay != nil {
		callback(*replay)
	}

	return func() {
		e.remove(id)
	}
}

// ListenChan registers a channel listener. Values are sent without blocking;
// a full channel misses the value.
func (e *Event[T]) ListenChan(ch chan<- T) func() {
	if ch == nil {
		panic("Event: channel cannot be nil")
	}
	return e.Listen(func(value T) {
		select {
		case ch <- value:
		default:
		}
	})
}

// Notify calls every registered listener with value.
func (e *Event[T]) Notify(value T) {
	e.mu.Lock()
	if e.replayLast {
		v := value
		e.last = &v
	}
	snapshot := e.listeners
	e.mu.Unlock()

	for _, l := range snapshot {
		l.callback(value)
	}
}

// Last returns the most recent value when replayLast is enabled.
func (e *Event[T]) Last() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.last == nil {
		var zero T
		return zero, false
	}
	return *e.last, true
}

// ListenerCount returns the number of registered listeners.
func (e *Event[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

func (e *Event[T]) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, l := range e.listeners {
		if l.id == id {
			next := make([]listener[T], 0, len(e.listeners)-1)
			next = append(next, e.listeners[:i]...)
			e.listeners = append(next, e.listeners[i+1:]...)
			return
		}
	}
}
