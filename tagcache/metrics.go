package tagcache

// Metrics receives the store's lifecycle events. Implementations must be
// safe for concurrent use and must not block.
type Metrics interface {
	// Hit is called when Get or GetOrSet finds an entry.
	Hit()

	// Miss is called when Get or GetOrSet finds nothing.
	Miss()

	// Set is called after an entry has been written.
	Set()

	// Revalidate is called once per RevalidateTag call with the number of
	// entries it removed.
	Revalidate(removed int)
}

// NoopMetrics discards every event. It is the default so the store never has
// to nil-check its metrics.
type NoopMetrics struct{}

func (NoopMetrics) Hit()           {}
func (NoopMetrics) Miss()          {}
func (NoopMetrics) Set()           {}
func (NoopMetrics) Revalidate(int) {}
