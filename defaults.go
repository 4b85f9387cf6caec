package gorawrcache

// DefaultOptions returns the recommended set of options for production use:
// panic recovery, request IDs and an in-process response cache.
func DefaultOptions() []Option {
	return []Option{
		WithRecovery(),
		WithRequestID(),
		WithResponseCache(nil, nil),
	}
}
