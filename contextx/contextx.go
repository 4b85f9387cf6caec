// Package contextx defines the request-scoped values the interceptors share
// through context.Context.
package contextx

import "context"

// contextKey is an unexported type used as context key to avoid collisions
// with keys defined in other packages.
type contextKey int

const (
	actorKey contextKey = iota
	requestIDKey
	groupKey
	tagsKey
)

// Actor is the authenticated identity behind a request, set by the auth
// interceptor. Its Tenant partitions cached responses of per-tenant method
// groups and fills the {tenant} placeholder of cache tags.
type Actor struct {
	Subject string
	Tenant  string
	Scopes  []string
}

// WithActor returns a derived context that carries a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext extracts the Actor stored in ctx.
// The boolean return value indicates whether an Actor was present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}

// TenantFromContext returns the tenant of the actor in ctx, or "".
func TenantFromContext(ctx context.Context) string {
	a, _ := ActorFromContext(ctx)
	return a.Tenant
}

// WithRequestID returns a derived context that carries the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithGroup returns a derived context that carries the resolved policy group.
func WithGroup(ctx context.Context, group string) context.Context {
	return context.WithValue(ctx, groupKey, group)
}

// GroupFromContext returns the policy group stored in ctx, or "".
func GroupFromContext(ctx context.Context) string {
	g, _ := ctx.Value(groupKey).(string)
	return g
}
