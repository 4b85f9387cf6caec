package pages

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StaticRenderer serves pages from memory. Publish replaces a page with its
// pending draft, if one was staged with Stage.
type StaticRenderer struct {
	mu     sync.RWMutex
	live   map[string]Page
	drafts map[string]Page

	renders atomic.Int64
}

// NewStaticRenderer returns a StaticRenderer serving the given pages.
func NewStaticRenderer(pages map[string]Page) *StaticRenderer {
	r := &StaticRenderer{
		live:   make(map[string]Page, len(pages)),
		drafts: make(map[string]Page),
	}
	for path, p := range pages {
		r.live[path] = clonePage(p)
	}
	return r
}

// Render returns the live page at path, or codes.NotFound.
func (r *StaticRenderer) Render(_ context.Context, path string) (Page, error) {
	r.renders.Add(1)
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.live[path]
	if !ok {
		return Page{}, status.Errorf(codes.NotFound, "page %q not found", path)
	}
	return clonePage(p), nil
}

// Stage records a draft for path that becomes live on the next Publish.
func (r *StaticRenderer) Stage(path string, p Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[path] = clonePage(p)
}

// Publish makes the staged draft for path live. Publishing a path without a
// draft is a no-op for existing pages and codes.NotFound otherwise.
func (r *StaticRenderer) Publish(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.drafts[path]; ok {
		r.live[path] = d
		delete(r.drafts, path)
		return nil
	}
	if _, ok := r.live[path]; !ok {
		return status.Errorf(codes.NotFound, "page %q not found", path)
	}
	return nil
}

// Renders returns how many times Render has been called.
func (r *StaticRenderer) Renders() int {
	return int(r.renders.Load())
}

func clonePage(p Page) Page {
	p.Tags = slices.Clone(p.Tags)
	return p
}
