package taskcache

import "time"

// Default cache limits
const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 50
)

// Config holds the cache limits. It is fixed once the Store is built.
type Config struct {
	// TTL is the maximum age of a snapshot. An entry is live while
	// now - insertedAt <= TTL.
	TTL time.Duration

	// MaxEntries caps the number of indexed projects. Zero disables caching.
	MaxEntries int
}

// DefaultConfig returns a Config with the default limits.
func DefaultConfig() Config {
	return Config{
		TTL:        DefaultTTL,
		MaxEntries: DefaultMaxEntries,
	}
}

// normalize fills a non-positive TTL with the default and clamps a negative
// capacity to zero.
func (c Config) normalize() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxEntries < 0 {
		c.MaxEntries = 0
	}
	return c
}

// evictionQuota is max(1, floor(MaxEntries * 0.25)).
func (c Config) evictionQuota() int {
	return max(1, c.MaxEntries/4)
}
