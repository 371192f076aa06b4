package taskcache

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// CleanupFunc releases a resource tied to a cache entry's lifetime.
// A returned error is logged; it never stops the entry from being destroyed.
type CleanupFunc func() error

// DetachFunc removes a cleanup registration. Calling it more than once, or
// after the entry is gone, does nothing.
type DetachFunc func()

// subscriber is one registration. Identity is the pointer, so the same
// function registered twice yields two independent subscribers.
type subscriber struct {
	cleanup CleanupFunc
	done    bool
}

// Subscribe attaches cleanup to the entry for projectID. If the project is
// not cached the callback is discarded and the returned DetachFunc does
// nothing.
func (s *Store) Subscribe(projectID uuid.UUID, cleanup CleanupFunc) DetachFunc {
	e, ok := s.entries[projectID]
	if !ok || cleanup == nil {
		return func() {}
	}

	sub := &subscriber{cleanup: cleanup}
	e.subscribers[sub] = struct{}{}

	return func() {
		if sub.done {
			return
		}
		sub.done = true
		delete(e.subscribers, sub)
	}
}

// runCleanup invokes a subscriber's cleanup at most once, isolating errors
// and panics.
func (s *Store) runCleanup(projectID uuid.UUID, sub *subscriber) {
	if sub.done {
		return
	}
	sub.done = true

	if err := safeCall(sub.cleanup); err != nil {
		s.logger.Warn("task cache cleanup failed",
			slog.String("project_id", projectID.String()),
			slog.String("error", err.Error()))
	}
}

// safeCall runs fn, converting a panic into an error.
func safeCall(fn CleanupFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cleanup panicked: %v", r)
		}
	}()
	return fn()
}
