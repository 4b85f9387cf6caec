package tagcache

import (
	"maps"
	"slices"
	"time"
)

// Entry is a cached artifact together with the instant it was written and
// the tags it can be revalidated by.
type Entry[V any] struct {
	Value        V
	LastModified time.Time

	// Tags is the entry's tag set: sorted, without duplicates or empty
	// strings. It may be empty, in which case no revalidation matches it.
	Tags []string

	// Meta is caller metadata carried through Set. The store never looks at it.
	Meta map[string]string
}

// HasTag reports whether tag is a member of the entry's tag set.
func (e Entry[V]) HasTag(tag string) bool {
	_, found := slices.BinarySearch(e.Tags, tag)
	return found
}

// SetOptions is the context passed along with a value to [Store.Set].
type SetOptions struct {
	// Tags to attach to the entry. Duplicates and empty strings are dropped.
	Tags []string

	// Meta is stored verbatim on the entry.
	Meta map[string]string
}

// clone returns a copy of e that shares nothing mutable with the stored entry.
func (e Entry[V]) clone() Entry[V] {
	e.Tags = slices.Clone(e.Tags)
	e.Meta = maps.Clone(e.Meta)
	return e
}

// normalizeTags collapses tags into a sorted set with empty strings removed.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// tagSet builds a lookup set for revalidation.
func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// intersects reports whether any of tags is in set.
func intersects(tags []string, set map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
