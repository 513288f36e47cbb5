package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(ttl time.Duration) (*sessionRegistry[*int], *testClock) {
	clock := newTestClock(time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC))
	r := newSessionRegistry[*int]("test", ttl, discardLogger())
	r.now = clock.Now
	return r, clock
}

func TestSessionRegistry_OwnerOnly(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)
	v := 1
	id := r.create("alice", &v)

	err := r.with(id, "alice", func(p *int) error {
		*p++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	err = r.with(id, "mallory", func(*int) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	err = r.with("unknown", "alice", func(*int) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, r.remove(id, "mallory"), ErrSessionNotFound)
	require.NoError(t, r.remove(id, "alice"))
	assert.Equal(t, 0, r.len())
}

func TestSessionRegistry_Expiry(t *testing.T) {
	r, clock := newTestRegistry(time.Hour)
	v := 0
	stale := r.create("alice", &v)
	clock.Set(clock.Now().Add(30 * time.Minute))
	fresh := r.create("alice", &v)

	clock.Set(clock.Now().Add(45 * time.Minute))
	assert.Equal(t, 1, r.sweep())
	assert.Equal(t, 1, r.len())

	assert.ErrorIs(t, r.with(stale, "alice", func(*int) error { return nil }), ErrSessionNotFound)
	require.NoError(t, r.with(fresh, "alice", func(*int) error { return nil }))

	// use refreshes the idle timer
	clock.Set(clock.Now().Add(50 * time.Minute))
	require.NoError(t, r.with(fresh, "alice", func(*int) error { return nil }))

	clock.Set(clock.Now().Add(2 * time.Hour))
	assert.ErrorIs(t, r.with(fresh, "alice", func(*int) error { return nil }), ErrSessionNotFound)
	assert.Equal(t, 0, r.len())
}

func TestSessionRegistry_NoTTL(t *testing.T) {
	r, clock := newTestRegistry(0)
	v := 0
	id := r.create("alice", &v)
	clock.Set(clock.Now().Add(1000 * time.Hour))

	assert.Equal(t, 0, r.sweep())
	require.NoError(t, r.with(id, "alice", func(*int) error { return nil }))
}

func TestSessionRegistry_RunStopsWithContext(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancel")
	}
}
