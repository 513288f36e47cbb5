package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionRegistry holds server-side working state (wizards, builders) keyed
// by a random id and owned by one caller. Idle sessions expire after ttl.
type sessionRegistry[T any] struct {
	mu       sync.Mutex
	sessions map[string]*session[T]
	ttl      time.Duration
	kind     string
	logger   *slog.Logger
	now      func() time.Time
}

type session[T any] struct {
	mu       sync.Mutex
	owner    string
	value    T
	lastUsed time.Time
}

func newSessionRegistry[T any](kind string, ttl time.Duration, logger *slog.Logger) *sessionRegistry[T] {
	return &sessionRegistry[T]{
		sessions: make(map[string]*session[T]),
		ttl:      ttl,
		kind:     kind,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *sessionRegistry[T]) create(owner string, value T) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = &session[T]{owner: owner, value: value, lastUsed: r.now()}
	r.mu.Unlock()
	return id
}

// with runs fn with exclusive access to the session. Unknown, expired and
// foreign sessions are all reported as ErrSessionNotFound.
func (r *sessionRegistry[T]) with(id, owner string, fn func(T) error) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok && r.expired(s) {
		delete(r.sessions, id)
		ok = false
	}
	r.mu.Unlock()
	if !ok || s.owner != owner {
		return fmt.Errorf("%w: %s %s", ErrSessionNotFound, r.kind, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = r.now()
	return fn(s.value)
}

func (r *sessionRegistry[T]) remove(id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.owner != owner {
		return fmt.Errorf("%w: %s %s", ErrSessionNotFound, r.kind, id)
	}
	delete(r.sessions, id)
	return nil
}

func (r *sessionRegistry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweep drops every expired session and reports how many were removed.
func (r *sessionRegistry[T]) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// run sweeps on every tick until ctx is done.
func (r *sessionRegistry[T]) run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				r.logger.Info("Expired idle sessions", "kind", r.kind, "count", n)
			}
		}
	}
}

func (r *sessionRegistry[T]) expired(s *session[T]) bool {
	if r.ttl <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.now().Sub(s.lastUsed) > r.ttl
}
