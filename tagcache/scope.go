package tagcache

import (
	"context"
	"sync"
)

// scopeKey is the context key under which a request Scope is stored.
type scopeKey struct{}

// Scope is a per-request scratch memo layered on top of the shared Store.
// It lives for one request and is cleared by [Store.ResetRequestCache].
// All methods are safe for concurrent use.
type Scope struct {
	mu    sync.Mutex
	items map[string]any
}

// WithRequestScope returns a derived context carrying a fresh, empty Scope.
// If ctx already carries one it is returned unchanged.
func WithRequestScope(ctx context.Context) context.Context {
	if _, ok := ScopeFromContext(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, &Scope{items: make(map[string]any)})
}

// ScopeFromContext extracts the request Scope stored in ctx.
// The boolean return value indicates whether a Scope was present.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok
}

// Get returns the value memoized under key for this request.
func (s *Scope) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok
}

// Set memoizes v under key for the rest of the request.
func (s *Scope) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = v
}

// Len returns the number of memoized values.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Reset drops every memoized value.
func (s *Scope) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.items)
}

// Memo returns the value memoized under key, computing and storing it with fn
// on the first call within the request. Without a Scope in ctx fn runs every
// time.
func Memo[T any](ctx context.Context, key string, fn func() (T, error)) (T, error) {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		return fn()
	}
	if v, hit := s.Get(key); hit {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	t, err := fn()
	if err != nil {
		return t, err
	}
	s.Set(key, t)
	return t, nil
}
