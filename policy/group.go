// Package policy maps gRPC methods to cache policies. Methods are grouped by
// exact, prefix or regex rules; each group carries the tags its responses are
// cached under and the tags a successful call revalidates.
package policy

import "regexp"

// CacheRule describes how responses of a method group are cached.
type CacheRule struct {
	// Tags attached to every cached response. They may contain the
	// placeholders {tenant}, {group} and {method}; see ExpandTags.
	Tags []string

	// PerTenant includes the caller's tenant in the request fingerprint so
	// tenants never share cached responses.
	PerTenant bool
}

// Policy holds the configuration that applies to a matched method group.
type Policy struct {
	// Cache enables response caching. Nil means responses are never cached.
	Cache *CacheRule

	// Revalidate lists tags to revalidate after a successful call, for
	// mutating methods. Placeholders are expanded as for CacheRule.Tags.
	Revalidate []string

	// AuthRequired rejects calls that carry no authenticated actor.
	AuthRequired bool
}

// matchKind distinguishes the three matching strategies.
type matchKind int

const (
	kindExact  matchKind = iota // highest priority
	kindPrefix                  // medium priority
	kindRegex                   // lowest priority
)

// rule is a single matching rule inside a group.
type rule struct {
	kind    matchKind
	pattern string
	re      *regexp.Regexp
}

// GroupBuilder constructs a method group with one or more matching rules and
// a policy.
type GroupBuilder struct {
	name   string
	rules  []rule
	policy *Policy
}

// Group starts building a new method group with the given name.
func Group(name string) *GroupBuilder {
	return &GroupBuilder{name: name}
}

// Exact adds an exact-match rule for a full method name such as
// "/rawr.Pages/Render".
func (g *GroupBuilder) Exact(fullMethod string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindExact, pattern: fullMethod})
	return g
}

// Prefix adds a prefix-match rule, typically a whole service ("/rawr.Pages/").
func (g *GroupBuilder) Prefix(prefix string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindPrefix, pattern: prefix})
	return g
}

// Regex adds a regex-match rule. The pattern is compiled immediately; an
// invalid regex panics.
func (g *GroupBuilder) Regex(pattern string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindRegex, pattern: pattern, re: regexp.MustCompile(pattern)})
	return g
}

// Policy attaches p to the group and returns the finished builder.
func (g *GroupBuilder) Policy(p Policy) *GroupBuilder {
	g.policy = &p
	return g
}

// Name returns the group name.
func (g *GroupBuilder) Name() string { return g.name }
