// Package selection tracks the currently selected project and the single
// live update subscription that follows it.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
)

// UpdateChannel delivers asynchronous project updates. The returned function
// ends the subscription; it must be safe to call more than once.
type UpdateChannel interface {
	Subscribe(ctx context.Context, projectID uuid.UUID, onUpdate func(domain.Project)) (func(), error)
}

// State is the selection. The zero State is idle.
type State struct {
	Project *domain.Project `json:"project"`
}

// Selected reports whether a project is selected.
func (s State) Selected() bool {
	return s.Project != nil
}

type listener struct {
	id int
	fn func(State)
}

// Store holds the selection and at most one upstream subscription.
//
// Select and Clear are serialized with each other. Updates may arrive on any
// goroutine; they are merged only when they are for the project that is
// selected at the moment they arrive.
type Store struct {
	channel UpdateChannel
	logger  *slog.Logger

	// opMu serializes transitions. It is held while calling into the channel.
	opMu sync.Mutex

	// notifyMu serializes listener calls so they observe states in order.
	notifyMu sync.Mutex

	// mu guards the fields below and is never held while calling out.
	mu             sync.Mutex
	current        *domain.Project
	release        func()
	listeners      []listener
	nextListenerID int
	// version counts state changes. A notification for an older version
	// is dropped.
	version uint64
}

// New creates an idle Store.
func New(channel UpdateChannel, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		channel: channel,
		logger:  logger.With(slog.String("component", "selection")),
	}
}

// Select makes project the current selection and subscribes to its updates.
// Any previously held subscription is released first. If subscribing fails
// the project stays selected without a live subscription and the error is
// returned.
func (s *Store) Select(ctx context.Context, project domain.Project) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.releaseHandle()

	p := project.Clone()
	s.mu.Lock()
	s.current = &p
	snapshot, version := s.changedLocked()
	s.mu.Unlock()
	s.notify(snapshot, version)

	unsubscribe, err := s.channel.Subscribe(ctx, project.ID, s.merge)
	if err != nil {
		s.logger.Warn("failed to subscribe to project updates",
			slog.String("project_id", project.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("subscribe to project %s updates: %w", project.ID, err)
	}

	s.mu.Lock()
	s.release = unsubscribe
	s.mu.Unlock()

	s.logger.Debug("project selected", slog.String("project_id", project.ID.String()))
	return nil
}

// Clear releases the active subscription, if any, and returns to idle.
func (s *Store) Clear() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.releaseHandle()

	s.mu.Lock()
	s.current = nil
	snapshot, version := s.changedLocked()
	s.mu.Unlock()
	s.notify(snapshot, version)

	s.logger.Debug("selection cleared")
}

// Current returns a copy of the selection.
func (s *Store) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// OnChange registers fn to be called with the new state after every select,
// clear and merged update. Listeners are called one at a time, in the order
// the changes were made; a change superseded before its listeners ran is
// skipped. fn must not call Select or Clear. The returned function removes
// it and may be called more than once.
func (s *Store) OnChange(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// merge applies an upstream update if it is for the selected project.
func (s *Store) merge(update domain.Project) {
	s.mu.Lock()
	if s.current == nil || s.current.ID != update.ID {
		s.mu.Unlock()
		s.logger.Debug("discarding stale project update",
			slog.String("update_project_id", update.ID.String()))
		return
	}
	p := update.Clone()
	s.current = &p
	snapshot, version := s.changedLocked()
	s.mu.Unlock()

	s.notify(snapshot, version)
}

// releaseHandle drops the held subscription. Callers hold opMu, so a handle
// is released at most once.
func (s *Store) releaseHandle() {
	s.mu.Lock()
	release := s.release
	s.release = nil
	s.mu.Unlock()

	if release != nil {
		release()
	}
}

func (s *Store) snapshotLocked() State {
	if s.current == nil {
		return State{}
	}
	p := s.current.Clone()
	return State{Project: &p}
}

// changedLocked records a state change and returns the new state with its
// version.
func (s *Store) changedLocked() (State, uint64) {
	s.version++
	return s.snapshotLocked(), s.version
}

// notify calls the listeners with state unless a newer change has been made
// since it was taken. A merge that loses the race with Select therefore
// never reaches listeners after the newer selection.
func (s *Store) notify(state State, version uint64) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if version != s.version {
		s.mu.Unlock()
		return
	}
	fns := make([]func(State), len(s.listeners))
	for i, l := range s.listeners {
		fns[i] = l.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
