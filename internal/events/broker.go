package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
)

// ErrBrokerStopped is returned when publishing to a stopped broker.
var ErrBrokerStopped = errors.New("event broker is stopped")

// Config holds broker sizing.
type Config struct {
	// WorkerCount is the number of delivery goroutines. Defaults to 1 if not positive.
	WorkerCount int

	// QueueSize bounds the number of pending deliveries.
	QueueSize int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// subscription is one registered handler.
type subscription struct {
	projectID uuid.UUID
	handler   Handler
	active    atomic.Bool
}

// Broker fans project updates out to per-project subscribers.
type Broker struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]map[*subscription]struct{}
	queue   *deliveryQueue
	pool    *workerPool
	logger  *slog.Logger
	started atomic.Bool
	stopped atomic.Bool
}

// Ensure Broker implements Publisher
var _ Publisher = (*Broker)(nil)

// NewBroker creates a Broker. Call Start before publishing.
func NewBroker(cfg Config, logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "event_broker")

	size := cfg.QueueSize
	if size < 0 {
		size = 0
	}
	queue := newDeliveryQueue(size, logger)

	return &Broker{
		subs:   make(map[uuid.UUID]map[*subscription]struct{}),
		queue:  queue,
		pool:   newWorkerPool(queue, cfg.WorkerCount, logger),
		logger: logger,
	}
}

// Start launches the delivery workers. Calling it again has no effect.
func (b *Broker) Start() {
	if b.started.CompareAndSwap(false, true) {
		b.pool.start()
	}
}

// Stop closes the queue and waits for buffered deliveries to finish, or for
// ctx to be done.
func (b *Broker) Stop(ctx context.Context) error {
	if !b.stopped.CompareAndSwap(false, true) {
		return nil
	}
	b.queue.close()
	if !b.started.Load() {
		return nil
	}
	return b.pool.stop(ctx)
}

// Subscribe registers fn for updates to projectID. The returned function
// unsubscribes; deliveries still queued for fn are skipped once it returns.
// It is safe to call more than once.
func (b *Broker) Subscribe(ctx context.Context, projectID uuid.UUID, fn func(domain.Project)) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.stopped.Load() {
		return nil, ErrBrokerStopped
	}

	sub := &subscription{projectID: projectID, handler: fn}
	sub.active.Store(true)

	b.mu.Lock()
	set, ok := b.subs[projectID]
	if !ok {
		set = make(map[*subscription]struct{})
		b.subs[projectID] = set
	}
	set[sub] = struct{}{}
	count := len(set)
	b.mu.Unlock()

	b.logger.Debug("subscribed to project updates",
		"project_id", projectID,
		"subscriber_count", count)

	return func() { b.unsubscribe(sub) }, nil
}

func (b *Broker) unsubscribe(sub *subscription) {
	if !sub.active.CompareAndSwap(true, false) {
		return
	}

	b.mu.Lock()
	if set, ok := b.subs[sub.projectID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, sub.projectID)
		}
	}
	b.mu.Unlock()

	b.logger.Debug("unsubscribed from project updates", "project_id", sub.projectID)
}

// Publish queues one delivery per current subscriber of project. A full
// queue drops the delivery and logs it; Publish only fails when the broker
// is stopped or ctx is done.
func (b *Broker) Publish(ctx context.Context, project domain.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.stopped.Load() {
		return ErrBrokerStopped
	}

	b.mu.RLock()
	targets := make([]*subscription, 0, len(b.subs[project.ID]))
	for sub := range b.subs[project.ID] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	if len(targets) == 0 {
		b.logger.Debug("no subscribers for project update", "project_id", project.ID)
		return nil
	}

	event := NewProjectUpdatedEvent(project)
	for _, sub := range targets {
		err := b.queue.enqueue(delivery{sub: sub, event: event})
		switch {
		case err == nil:
		case errors.Is(err, ErrQueueClosed):
			return ErrBrokerStopped
		default:
			b.logger.Warn("dropping project update delivery",
				"error", err,
				"event_id", event.ID,
				"project_id", project.ID)
		}
	}
	return nil
}

// SubscriberCount returns the number of handlers registered for projectID.
func (b *Broker) SubscriberCount(projectID uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[projectID])
}
