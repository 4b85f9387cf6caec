package gorawrcache

import (
	"github.com/Keksclan/goRawrCache/auth"
	"github.com/Keksclan/goRawrCache/policy"
	"github.com/Keksclan/goRawrCache/tagcache"
	"github.com/Keksclan/goRawrCache/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Option configures a Server.
type Option func(*config)

// WithLogger sets the logger used by the recovery and response cache
// middleware. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUnaryInterceptor appends a unary server interceptor to the chain. User
// interceptors run after all built-in middleware.
func WithUnaryInterceptor(i grpc.UnaryServerInterceptor) Option {
	return func(c *config) {
		c.unaryInterceptors = append(c.unaryInterceptors, i)
	}
}

// WithStreamInterceptor appends a stream server interceptor to the chain.
func WithStreamInterceptor(i grpc.StreamServerInterceptor) Option {
	return func(c *config) {
		c.streamInterceptors = append(c.streamInterceptors, i)
	}
}

// WithRecovery installs panic-recovery interceptors so that a panic inside a
// handler returns codes.Internal instead of crashing the process.
func WithRecovery() Option {
	return func(c *config) {
		c.recovery = true
	}
}

// WithRequestID ensures every call carries a request ID, taken from the
// x-request-id header or generated, and echoes it back.
func WithRequestID() Option {
	return func(c *config) {
		c.requestID = true
	}
}

// WithAuth installs fn as the authentication callback. Methods whose policy
// sets AuthRequired additionally reject calls without an actor.
func WithAuth(fn auth.AuthFunc) Option {
	return func(c *config) {
		c.authFn = fn
	}
}

// WithOpenTelemetry traces every call. Nil arguments select the global
// provider and propagator.
func WithOpenTelemetry(tp trace.TracerProvider, prop propagation.TextMapPropagator) Option {
	return func(c *config) {
		c.tracing = &tracing.Config{TracerProvider: tp, Propagators: prop}
	}
}

// WithResponseCache serves responses of methods with a cache rule from store.
// A nil store is created by NewServer, reporting to Prometheus when
// WithPrometheus is set. A nil resolver starts empty; policies can be added
// with WithCachePolicies.
func WithResponseCache(store *tagcache.Store[any], resolver *policy.Resolver) Option {
	return func(c *config) {
		c.responseCache = true
		c.store = store
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithCacheStoreOptions passes options to the store NewServer creates.
// They are ignored when a store is given to WithResponseCache.
func WithCacheStoreOptions(opts ...tagcache.Option) Option {
	return func(c *config) {
		c.storeOpts = append(c.storeOpts, opts...)
	}
}

// WithCachePolicies adds method groups to the policy resolver shared by the
// auth and response cache middleware.
func WithCachePolicies(groups ...*policy.GroupBuilder) Option {
	return func(c *config) {
		c.groups = append(c.groups, groups...)
	}
}

// WithPrometheus registers the cache metrics with reg under namespace. A nil
// reg selects prometheus.DefaultRegisterer.
func WithPrometheus(reg prometheus.Registerer, namespace string) Option {
	return func(c *config) {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		c.registerer = reg
		c.namespace = namespace
	}
}
