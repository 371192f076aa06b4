package events

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the delivery queue
var (
	ErrQueueClosed = errors.New("delivery queue is closed")
	ErrQueueFull   = errors.New("delivery queue is full")
)

// delivery is one event bound for one subscriber.
type delivery struct {
	sub   *subscription
	event *ProjectUpdatedEvent
}

// deliveryQueue is a bounded buffer of pending deliveries.
type deliveryQueue struct {
	mu     sync.Mutex
	jobs   chan delivery
	logger *slog.Logger
	closed bool
}

func newDeliveryQueue(size int, logger *slog.Logger) *deliveryQueue {
	return &deliveryQueue{
		jobs:   make(chan delivery, size),
		logger: logger,
	}
}

// enqueue adds d without blocking.
// Returns an error if the queue is full or closed.
func (q *deliveryQueue) enqueue(d delivery) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- d:
		q.logger.Debug("delivery enqueued",
			"event_id", d.event.ID,
			"project_id", d.event.Project.ID,
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// close stops further enqueues. Workers drain what is already buffered.
func (q *deliveryQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("delivery queue closed")
	}
}

func (q *deliveryQueue) channel() <-chan delivery {
	return q.jobs
}
