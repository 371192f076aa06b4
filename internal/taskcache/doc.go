// Package taskcache holds per-project task snapshots in memory.
//
// The cache is bounded two ways. Entries older than Config.TTL are treated as
// absent and removed the next time they are read; there is no background
// sweep, so an expired entry that is never read stays in memory until
// capacity pressure or an explicit invalidation removes it. When a new key
// would push the index past Config.MaxEntries, the oldest quarter of the
// configured capacity (at least one entry) is evicted first.
//
// Callers can attach cleanup callbacks to an entry with Subscribe. Whenever
// an entry is destroyed (expiry, eviction, replacement, invalidation) each
// attached cleanup runs exactly once, while the entry is still indexed, and
// the entry is removed only after all of them have been attempted. A failing
// or panicking cleanup is logged and does not affect its siblings.
//
// Store is not safe for concurrent use. Cleanups run synchronously on the
// goroutine that triggered them, so they may read the Store but must not
// re-enter whatever lock the caller uses to serialize access.
package taskcache
