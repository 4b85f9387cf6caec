// Package tagcache provides a process-wide, tag-indexed cache for computed
// artifacts such as rendered responses.
//
// Entries are keyed by an opaque fingerprint and carry a set of tags. Any
// holder of the store can drop every entry sharing a tag with
// [Store.RevalidateTag]. Entries never expire on their own and are never
// evicted for size; they live until a matching revalidation.
//
// A Store is created once with [New] and shared by reference:
//
//	pages := tagcache.New[[]byte]()
//	_ = pages.Set(ctx, fp, html, tagcache.SetOptions{Tags: []string{"home"}})
//	pages.RevalidateTag(ctx, "home")
package tagcache

import (
	"context"
	"errors"
	"maps"
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidKey is returned when an operation is called with an empty key.
var ErrInvalidKey = errors.New("tagcache: key must not be empty")

// Loader computes the artifact for a key on a GetOrSet miss and returns the
// options it should be stored with.
type Loader[V any] func(ctx context.Context) (V, SetOptions, error)

// shard is an independently locked slice of the key space.
type shard[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
}

// Store is a concurrent fingerprint → Entry mapping with tag revalidation.
// All methods are safe for concurrent use.
type Store[V any] struct {
	shards []*shard[V]
	mask   uint64
	cfg    config

	// seq counts RevalidateTag calls; revalidated maps each tag to the seq of
	// the last call that named it. GetOrSet uses both to refuse storing a
	// value computed before one of its tags was revalidated. inflight counts
	// running loads by their start seq; revalidated only holds generations
	// newer than the oldest of them and is empty when no load runs.
	genMu       sync.Mutex
	seq         uint64
	revalidated map[string]uint64
	inflight    map[uint64]int

	sf singleflight.Group
}

// New creates an empty Store.
func New[V any](opts ...Option) *Store[V] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	n := nextPow2(cfg.shards)

	s := &Store[V]{
		shards:      make([]*shard[V], n),
		mask:        uint64(n - 1),
		cfg:         cfg,
		revalidated: make(map[string]uint64),
		inflight:    make(map[uint64]int),
	}
	for i := range s.shards {
		s.shards[i] = &shard[V]{entries: make(map[string]Entry[V])}
	}
	return s
}

func (s *Store[V]) shardFor(key string) *shard[V] {
	return s.shards[xxhash.Sum64String(key)&s.mask]
}

// Get returns the entry stored under key. The boolean is false when no entry
// exists, which is not an error.
func (s *Store[V]) Get(_ context.Context, key string) (Entry[V], bool, error) {
	if key == "" {
		return Entry[V]{}, false, ErrInvalidKey
	}
	e, ok := s.lookup(key)
	if !ok {
		s.cfg.metrics.Miss()
		return Entry[V]{}, false, nil
	}
	s.cfg.metrics.Hit()
	return e.clone(), true, nil
}

func (s *Store[V]) lookup(key string) (Entry[V], bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.entries[key]
	return e, ok
}

// Set creates or replaces the entry under key. The previous entry's tags are
// discarded, not merged.
func (s *Store[V]) Set(_ context.Context, key string, value V, opts SetOptions) error {
	if key == "" {
		return ErrInvalidKey
	}
	e := s.newEntry(value, opts)

	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.entries[key] = e
	sh.mu.Unlock()

	s.cfg.metrics.Set()
	return nil
}

func (s *Store[V]) newEntry(value V, opts SetOptions) Entry[V] {
	return Entry[V]{
		Value:        value,
		LastModified: s.cfg.now(),
		Tags:         normalizeTags(opts.Tags),
		Meta:         maps.Clone(opts.Meta),
	}
}

// RevalidateTag removes every entry whose tag set intersects tags and returns
// how many were removed. Empty or unknown tags are a no-op.
//
// Shards are visited one at a time; each removal is atomic for its key but
// the scan as a whole is not a snapshot. A Set racing with the scan either
// lands before its shard is visited and is removed, or after and survives.
func (s *Store[V]) RevalidateTag(_ context.Context, tags ...string) int {
	set := tagSet(tags)
	if len(set) == 0 {
		s.cfg.metrics.Revalidate(0)
		return 0
	}

	s.genMu.Lock()
	s.seq++
	if len(s.inflight) > 0 {
		for t := range set {
			s.revalidated[t] = s.seq
		}
	}
	s.genMu.Unlock()

	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for k, e := range sh.entries {
			if intersects(e.Tags, set) {
				delete(sh.entries, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}

	s.cfg.metrics.Revalidate(removed)
	return removed
}

// ResetRequestCache clears the per-request Scope carried by ctx, if any. It
// never touches the shared entries.
func (s *Store[V]) ResetRequestCache(ctx context.Context) {
	if sc, ok := ScopeFromContext(ctx); ok {
		sc.Reset()
	}
}

// GetOrSet returns the cached value for key (hit = true). On a miss it calls
// load once, deduplicating concurrent callers for the same key, stores the
// result and returns it. Loader errors are returned and never cached.
//
// load runs detached from the cancellation of the caller that started it, so
// one caller giving up does not fail the others waiting on the same key. Each
// caller stops waiting when its own ctx is done and gets ctx.Err().
//
// If one of the loaded entry's tags is revalidated while load runs, the value
// is still returned but not stored.
func (s *Store[V]) GetOrSet(ctx context.Context, key string, load Loader[V]) (V, bool, error) {
	e, hit, err := s.GetOrSetEntry(ctx, key, load)
	return e.Value, hit, err
}

// loadPanic carries a loader panic to every caller waiting on the load, so it
// is re-raised on their goroutines instead of the detached one.
type loadPanic struct {
	value any
}

// GetOrSetEntry is GetOrSet returning the whole entry.
func (s *Store[V]) GetOrSetEntry(ctx context.Context, key string, load Loader[V]) (Entry[V], bool, error) {
	if key == "" {
		return Entry[V]{}, false, ErrInvalidKey
	}
	if e, ok := s.lookup(key); ok {
		s.cfg.metrics.Hit()
		return e.clone(), true, nil
	}
	s.cfg.metrics.Miss()

	loadCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				v, err = loadPanic{value: r}, nil
			}
		}()
		start := s.beginLoad()
		defer s.endLoad(start)

		val, opts, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		e := s.newEntry(val, opts)
		s.fill(key, e, start)
		return e, nil
	})

	select {
	case <-ctx.Done():
		return Entry[V]{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Entry[V]{}, false, res.Err
		}
		if p, ok := res.Val.(loadPanic); ok {
			panic(p.value)
		}
		return res.Val.(Entry[V]).clone(), false, nil
	}
}

// beginLoad registers a running load and returns the seq it started at.
func (s *Store[V]) beginLoad() uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.inflight[s.seq]++
	return s.seq
}

// endLoad unregisters a load and drops the generations no running load can
// be stale against any more.
func (s *Store[V]) endLoad(start uint64) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	s.inflight[start]--
	if s.inflight[start] == 0 {
		delete(s.inflight, start)
	}
	if len(s.inflight) == 0 {
		clear(s.revalidated)
		return
	}
	oldest := uint64(math.MaxUint64)
	for st := range s.inflight {
		oldest = min(oldest, st)
	}
	if oldest <= start {
		// The oldest running load is unchanged.
		return
	}
	maps.DeleteFunc(s.revalidated, func(_ string, gen uint64) bool {
		return gen <= oldest
	})
}

// fill stores a loaded entry unless one of its tags was revalidated after
// start. The check runs under the shard lock so a revalidation that misses it
// is guaranteed to scan the shard after the write.
func (s *Store[V]) fill(key string, e Entry[V], start uint64) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if s.staleSince(e.Tags, start) {
		return
	}
	sh.entries[key] = e
	s.cfg.metrics.Set()
}

func (s *Store[V]) staleSince(tags []string, start uint64) bool {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	for _, t := range tags {
		if s.revalidated[t] > start {
			return true
		}
	}
	return false
}

// Len returns the number of entries currently stored.
func (s *Store[V]) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}

// MaxAge returns the value configured with [WithMaxAge].
func (s *Store[V]) MaxAge() time.Duration {
	return s.cfg.maxAge
}
