package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

const bridgeBuffer = 256

// Bridge forwards emitter events to an EventPublisher from a background
// goroutine, so a slow broker never blocks a store mutation.
type Bridge struct {
	publisher EventPublisher
	logger    *slog.Logger

	queue     chan Event
	done      chan struct{}
	mu        sync.Mutex
	disposers []func()
	closed    bool
}

func NewBridge(publisher EventPublisher, logger *slog.Logger) *Bridge {
	b := &Bridge{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan Event, bridgeBuffer),
		done:      make(chan struct{}),
	}
	go b.run()
	return b
}

// Attach forwards every event of e until the bridge is closed.
func (b *Bridge) Attach(e *Emitter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.disposers = append(b.disposers, e.Subscribe(b.enqueue))
}

func (b *Bridge) enqueue(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.queue <- ev:
	default:
		b.logger.Warn("Event bridge queue full, dropping event", "event_type", ev.Type, "event_id", ev.ID)
	}
}

func (b *Bridge) run() {
	defer close(b.done)
	for ev := range b.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := b.publisher.Publish(ctx, ev); err != nil {
			b.logger.Error("Failed to publish event", "event_type", ev.Type, "event_id", ev.ID, "error", err)
		}
		cancel()
	}
}

// Close detaches from all emitters, drains queued events and closes the
// publisher.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	disposers := b.disposers
	b.disposers = nil
	close(b.queue)
	b.mu.Unlock()

	for _, dispose := range disposers {
		dispose()
	}

	select {
	case <-b.done:
	case <-ctx.Done():
		b.logger.Warn("Event bridge drain interrupted", "error", ctx.Err())
	}
	return b.publisher.Close()
}

// AuditLog consumes events from a watermill subscriber and logs each one.
// It returns when ctx is cancelled or the subscription ends.
func AuditLog(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	for msg := range messages {
		var ev Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			logger.Warn("Malformed event on audit topic", "message_uuid", msg.UUID, "error", err)
			msg.Ack()
			continue
		}
		logger.Info("Store event",
			"event_type", ev.Type,
			"event_id", ev.ID,
			"timestamp", ev.Timestamp)
		msg.Ack()
	}
	return nil
}
