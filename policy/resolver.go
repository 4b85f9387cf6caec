package policy

import "sync"

// Resolver resolves a full gRPC method name to the best-matching group and
// its policy. Add and Resolve may be called concurrently; a GroupBuilder must
// not be modified once it has been handed to a Resolver.
type Resolver struct {
	mu     sync.RWMutex
	groups []*GroupBuilder
}

// NewResolver creates a Resolver from the supplied group builders.
func NewResolver(groups ...*GroupBuilder) *Resolver {
	return &Resolver{groups: groups}
}

// Add appends more groups. Groups added later lose ties against earlier ones.
func (res *Resolver) Add(groups ...*GroupBuilder) {
	res.mu.Lock()
	defer res.mu.Unlock()
	res.groups = append(res.groups, groups...)
}

// Resolve finds the best-matching group for fullMethod.
//
// Priority rules:
//   - Exact matches beat prefix matches, which beat regex matches.
//   - Among matches of the same kind the longer match wins.
//   - On equal kind and length the group registered first wins.
//
// If no group matches, or res is nil, ok is false.
func (res *Resolver) Resolve(fullMethod string) (groupName string, pol *Policy, ok bool) {
	if res == nil {
		return "", nil, false
	}
	res.mu.RLock()
	defer res.mu.RUnlock()

	bestKind := matchKind(-1)
	bestLen := -1

	for _, g := range res.groups {
		for i := range g.rules {
			r := &g.rules[i]
			matched, n := r.match(fullMethod)
			if !matched {
				continue
			}
			if bestKind < 0 || r.kind < bestKind || (r.kind == bestKind && n > bestLen) {
				bestKind, bestLen = r.kind, n
				groupName, pol, ok = g.name, g.policy, true
			}
		}
	}
	return groupName, pol, ok
}
