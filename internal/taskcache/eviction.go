package taskcache

import (
	"bytes"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// expired reports whether e is older than the TTL.
func (s *Store) expired(e *entry) bool {
	return s.clock.Now().Sub(e.insertedAt) > s.cfg.TTL
}

// evict removes the oldest entries to make room for an insert.
// Ties on insertedAt are broken by key so the order is deterministic.
func (s *Store) evict() {
	quota := min(s.cfg.evictionQuota(), len(s.entries))
	if quota == 0 {
		return
	}

	type candidate struct {
		key        uuid.UUID
		entry      *entry
		insertedAt time.Time
	}
	candidates := make([]candidate, 0, len(s.entries))
	for k, e := range s.entries {
		candidates = append(candidates, candidate{key: k, entry: e, insertedAt: e.insertedAt})
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.insertedAt.Equal(b.insertedAt) {
			return a.insertedAt.Before(b.insertedAt)
		}
		return bytes.Compare(a.key[:], b.key[:]) < 0
	})

	for _, c := range candidates[:quota] {
		s.logger.Debug("evicting cache entry",
			slog.String("project_id", c.key.String()),
			slog.Time("inserted_at", c.insertedAt))
		s.destroy(c.key, c.entry)
	}

	s.logger.Debug("capacity eviction complete",
		slog.Int("evicted", quota),
		slog.Int("cache_size", len(s.entries)))
}

// destroy runs every cleanup attached to e and then removes it from the
// index. The entry stays indexed while cleanups run.
func (s *Store) destroy(projectID uuid.UUID, e *entry) {
	subs := make([]*subscriber, 0, len(e.subscribers))
	for sub := range e.subscribers {
		subs = append(subs, sub)
	}
	for _, sub := range subs {
		s.runCleanup(projectID, sub)
	}
	clear(e.subscribers)

	// A cleanup may have replaced the entry; only remove the one we destroyed.
	if cur, ok := s.entries[projectID]; ok && cur == e {
		delete(s.entries, projectID)
	}
}
