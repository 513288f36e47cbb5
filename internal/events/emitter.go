package events

import (
	"log/slog"
	"sync"
)

type Listener func(Event)

// Emitter delivers events synchronously to its listeners in subscription
// order. Emit must not be called while holding a lock a listener may need.
type Emitter struct {
	mu        sync.Mutex
	next      uint64
	listeners []subscription
	logger    *slog.Logger
}

type subscription struct {
	id uint64
	fn Listener
}

func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{logger: logger}
}

// Subscribe registers l and returns its disposer. Calling the disposer more
// than once is harmless.
func (e *Emitter) Subscribe(l Listener) func() {
	e.mu.Lock()
	e.next++
	id := e.next
	e.listeners = append(e.listeners, subscription{id: id, fn: l})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *Emitter) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.listeners {
		if s.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Emit calls every listener registered at the time of the call. A panicking
// listener is logged and skipped.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	snapshot := make([]subscription, len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.Unlock()

	for _, s := range snapshot {
		e.deliver(s, ev)
	}
}

func (e *Emitter) deliver(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Event listener panicked",
				"event_type", ev.Type,
				"event_id", ev.ID,
				"panic", r)
		}
	}()
	s.fn(ev)
}
