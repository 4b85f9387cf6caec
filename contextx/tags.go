package contextx

import (
	"context"
	"sync"
)

// tagCollector accumulates cache tags a handler adds while building a response.
type tagCollector struct {
	mu   sync.Mutex
	tags []string
}

// WithTagCollector returns a derived context in which AddCacheTags records tags.
func WithTagCollector(ctx context.Context) context.Context {
	return context.WithValue(ctx, tagsKey, &tagCollector{})
}

// AddCacheTags attaches tags to the response being built, in addition to the
// tags of its policy. It reports false when the response is not being cached.
func AddCacheTags(ctx context.Context, tags ...string) bool {
	c, ok := ctx.Value(tagsKey).(*tagCollector)
	if !ok {
		return false
	}
	c.mu.Lock()
	c.tags = append(c.tags, tags...)
	c.mu.Unlock()
	return true
}

// CollectedTags returns the tags added with AddCacheTags so far.
func CollectedTags(ctx context.Context) []string {
	c, ok := ctx.Value(tagsKey).(*tagCollector)
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.tags...)
}
