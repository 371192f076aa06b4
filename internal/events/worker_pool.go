package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// workerPool drains a delivery queue on a fixed number of goroutines.
type workerPool struct {
	// queue provides the deliveries to be processed
	queue *deliveryQueue

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is canceled to abandon buffered deliveries on shutdown
	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger
}

func newWorkerPool(queue *deliveryQueue, workerCount int, logger *slog.Logger) *workerPool {
	if workerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", workerCount,
			"default_count", 1)
		workerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &workerPool{
		queue:       queue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// start launches the workers.
func (p *workerPool) start() {
	p.logger.Info("starting event worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// stop waits for workers to drain the closed queue, or abandons the
// remaining deliveries when ctx is done first.
func (p *workerPool) stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("event worker pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		p.logger.Warn("event worker pool stopped before draining queue")
		return ctx.Err()
	}
}

func (p *workerPool) worker(id int) {
	defer p.wg.Done()
	logger := p.logger.With("worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			return
		case d, ok := <-p.queue.channel():
			if !ok {
				return
			}
			p.process(logger, d)
		}
	}
}

func (p *workerPool) process(logger *slog.Logger, d delivery) {
	if !d.sub.active.Load() {
		logger.Debug("skipping delivery to unsubscribed handler",
			"event_id", d.event.ID,
			"project_id", d.event.Project.ID)
		return
	}

	if err := safeDeliver(d.sub.handler, d.event); err != nil {
		logger.Warn("event handler failed",
			"error", err,
			"event_id", d.event.ID,
			"project_id", d.event.Project.ID)
	}
}

func safeDeliver(h Handler, event *ProjectUpdatedEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	h(event.Project.Clone())
	return nil
}
