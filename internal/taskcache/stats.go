package taskcache

import "time"

// Stats is a point-in-time summary of the cache. Oldest and Newest are nil
// when the cache is empty.
type Stats struct {
	Count            int        `json:"count"`
	TotalSubscribers int        `json:"total_subscribers"`
	Oldest           *time.Time `json:"oldest,omitempty"`
	Newest           *time.Time `json:"newest,omitempty"`
}

// Stats summarizes the index. Expired entries that have not been read yet
// are still counted.
func (s *Store) Stats() Stats {
	var st Stats
	for _, e := range s.entries {
		st.Count++
		st.TotalSubscribers += len(e.subscribers)

		ts := e.insertedAt
		if st.Oldest == nil || ts.Before(*st.Oldest) {
			oldest := ts
			st.Oldest = &oldest
		}
		if st.Newest == nil || ts.After(*st.Newest) {
			newest := ts
			st.Newest = &newest
		}
	}
	return st
}
