package tagcache

import "time"

const (
	defaultShards = 32
	maxShards     = 1 << 16
)

// config holds the construction-time settings assembled via functional options.
type config struct {
	shards  int
	metrics Metrics
	now     func() time.Time
	maxAge  time.Duration
}

// Option configures a Store.
type Option func(*config)

// WithShards sets the number of lock shards. The value is rounded up to the
// next power of two and capped at 65536; values below 1 select a single
// shard.
func WithShards(n int) Option {
	return func(c *config) {
		c.shards = n
	}
}

// WithMetrics installs the hooks the store reports hits, misses, writes and
// revalidations to.
func WithMetrics(m Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithClock replaces the clock used to stamp [Entry.LastModified].
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMaxAge records a max age for the serving layer to advertise. The store
// itself never expires entries.
func WithMaxAge(d time.Duration) Option {
	return func(c *config) {
		c.maxAge = d
	}
}

func defaultConfig() config {
	return config{
		shards:  defaultShards,
		metrics: NoopMetrics{},
		now:     time.Now,
	}
}

// nextPow2 rounds n up to a power of two between 1 and maxShards.
func nextPow2(n int) int {
	n = min(n, maxShards)
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
