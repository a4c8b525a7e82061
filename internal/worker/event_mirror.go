package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/foodrush/internal/adapter/rabbitmq"
	"github.com/polkiloo/foodrush/internal/realtime"
)

const publishTimeout = 5 * time.Second

// EventMirror copies published realtime envelopes to a broker using a pool of workers.
// Mirror never blocks the bus: envelopes are dropped when the queue is full.
type EventMirror struct {
	publisher rabbitmq.Publisher
	workers   int
	logger    *slog.Logger

	jobs    chan realtime.Envelope
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewEventMirror constructs the mirror worker pool.
func NewEventMirror(publisher rabbitmq.Publisher, queueSize, workers int, logger *slog.Logger) *EventMirror {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &EventMirror{
		publisher: publisher,
		workers:   workers,
		logger:    logger,
		jobs:      make(chan realtime.Envelope, queueSize),
	}
}

// Mirror enqueues env for publishing.
func (m *EventMirror) Mirror(env realtime.Envelope) {
	select {
	case m.jobs <- env:
	default:
		m.dropped.Add(1)
		m.logger.Warn("event mirror queue full", slog.String("event", env.Event), slog.String("room", env.Room))
	}
}

// Start launches background publishing.
func (m *EventMirror) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel

	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker(runCtx)
	}
}

// Stop waits for all workers to finish. Envelopes still queued are published before returning.
func (m *EventMirror) Stop() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// Dropped returns the number of envelopes discarded because the queue was full.
func (m *EventMirror) Dropped() int64 {
	return m.dropped.Load()
}

// Failed returns the number of envelopes the publisher rejected.
func (m *EventMirror) Failed() int64 {
	return m.failed.Load()
}

func (m *EventMirror) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			m.drain()
			return
		case env := <-m.jobs:
			m.publish(env)
		}
	}
}

func (m *EventMirror) drain() {
	for {
		select {
		case env := <-m.jobs:
			m.publish(env)
		default:
			return
		}
	}
}

func (m *EventMirror) publish(env realtime.Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := m.publisher.Publish(ctx, env); err != nil {
		m.failed.Add(1)
		m.logger.Error("mirror event failed",
			slog.String("event", env.Event),
			slog.String("room", env.Room),
			slog.String("error", err.Error()),
		)
	}
}
