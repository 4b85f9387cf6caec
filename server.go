// Package gorawrcache is a gRPC server toolkit built around an in-process,
// tag-indexed response cache. Responses of methods with a cache policy are
// stored under tags and dropped in bulk when a mutating RPC, or any caller
// holding the Server, revalidates one of those tags.
package gorawrcache

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Keksclan/goRawrCache/interceptors"
	"github.com/Keksclan/goRawrCache/internal/core"
	"github.com/Keksclan/goRawrCache/metrics"
	"github.com/Keksclan/goRawrCache/pages"
	"github.com/Keksclan/goRawrCache/policy"
	"github.com/Keksclan/goRawrCache/tagcache"
	"github.com/Keksclan/goRawrCache/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server is a composable wrapper around a [grpc.Server] that layers middleware
// (recovery, request IDs, tracing, authentication, response caching) via
// functional [Option] values passed to [NewServer].
//
// After construction the underlying gRPC server is available through [Server.GRPC]
// so that service implementations can be registered normally:
//
//	srv, err := gorawrcache.NewServer(gorawrcache.DefaultOptions()...)
//	pb.RegisterMyServiceServer(srv.GRPC(), &myImpl{})
type Server struct {
	grpcServer *grpc.Server
	store      *tagcache.Store[any]
	resolver   *policy.Resolver
	logger     *zap.Logger
	gatherer   prometheus.Gatherer
}

// NewServer creates a new [Server] by applying the supplied functional [Option]
// values and wiring the resulting unary and stream interceptor chains into
// [grpc.NewServer]. Middleware execution order is determined by fixed priority
// levels (see the Order constants of internal/core), not by the order options
// are passed.
//
// Example:
//
//	srv, err := gorawrcache.NewServer(
//		gorawrcache.WithRecovery(),
//		gorawrcache.WithAuth(myAuthFunc),
//		gorawrcache.WithResponseCache(nil, nil),
//		gorawrcache.WithCachePolicies(pages.Policies(true)...),
//	)
func NewServer(opts ...Option) (*Server, error) {
	cfg := config{logger: zap.NewNop()}
	for _, o := range opts {
		o(&cfg)
	}

	s := &Server{logger: cfg.logger}
	if cfg.resolver == nil {
		cfg.resolver = policy.NewResolver()
	}
	cfg.resolver.Add(cfg.groups...)
	s.resolver = cfg.resolver

	if cfg.responseCache {
		store, err := newStore(&cfg)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	if g, ok := cfg.registerer.(prometheus.Gatherer); ok {
		s.gatherer = g
	}

	var mw core.MiddlewareBuilder
	if cfg.recovery {
		mw.Add(core.OrderRecovery, "recovery",
			interceptors.RecoveryUnary(cfg.logger), interceptors.RecoveryStream(cfg.logger))
	}
	if cfg.requestID {
		mw.Add(core.OrderRequestID, "requestid",
			interceptors.RequestIDUnary(), interceptors.RequestIDStream())
	}
	if cfg.tracing != nil {
		mw.Add(core.OrderTracing, "tracing",
			tracing.UnaryServerInterceptor(cfg.tracing), tracing.StreamServerInterceptor(cfg.tracing))
	}
	if cfg.authFn != nil {
		mw.Add(core.OrderAuth, "auth",
			interceptors.AuthUnary(cfg.authFn, cfg.resolver), interceptors.AuthStream(cfg.authFn, cfg.resolver))
	}
	if s.store != nil {
		rc := interceptors.ResponseCacheConfig{
			Store:    s.store,
			Resolver: cfg.resolver,
			Logger:   cfg.logger,
		}
		mw.Add(core.OrderResponseCache, "responsecache",
			interceptors.ResponseCacheUnary(rc), interceptors.ResponseCacheStream(rc))
	}
	for _, u := range cfg.unaryInterceptors {
		mw.Add(core.OrderUser, "user", u, nil)
	}
	for _, st := range cfg.streamInterceptors {
		mw.Add(core.OrderUser, "user", nil, st)
	}

	cfg.logger.Debug("server middleware", zap.Strings("chain", mw.Names()))
	s.grpcServer = grpc.NewServer(mw.ServerOptions()...)
	return s, nil
}

// newStore returns the configured store, creating one when none was given,
// and registers its metrics.
func newStore(cfg *config) (*tagcache.Store[any], error) {
	store := cfg.store
	if store == nil {
		storeOpts := cfg.storeOpts
		if cfg.registerer != nil {
			m, err := metrics.NewPrometheus(cfg.registerer, cfg.namespace)
			if err != nil {
				return nil, fmt.Errorf("gorawrcache: %w", err)
			}
			storeOpts = append([]tagcache.Option{tagcache.WithMetrics(m)}, storeOpts...)
		}
		store = tagcache.New[any](storeOpts...)
	}
	if cfg.registerer != nil {
		if err := metrics.RegisterEntries(cfg.registerer, cfg.namespace, store.Len); err != nil {
			return nil, fmt.Errorf("gorawrcache: %w", err)
		}
	}
	return store, nil
}

// GRPC returns the underlying *grpc.Server so callers can register services.
func (s *Server) GRPC() *grpc.Server {
	return s.grpcServer
}

// Cache returns the response cache store. It returns nil if the response
// cache is not enabled.
func (s *Server) Cache() *tagcache.Store[any] {
	return s.store
}

// Policies returns the resolver shared by the auth and response cache
// middleware. Groups added to it while the server is serving apply to
// subsequent calls.
func (s *Server) Policies() *policy.Resolver {
	return s.resolver
}

// RevalidateTag drops every cached response tagged with one of tags and
// returns how many were removed. Without a response cache it does nothing.
func (s *Server) RevalidateTag(ctx context.Context, tags ...string) int {
	if s.store == nil {
		return 0
	}
	removed := s.store.RevalidateTag(ctx, tags...)
	s.logger.Info("cache revalidated", zap.Strings("tags", tags), zap.Int("removed", removed))
	return removed
}

// RegisterPages registers the built-in rawr.Pages service backed by r on the
// underlying gRPC server. Its cache policies are not added; pass
// pages.Policies to WithCachePolicies for that.
func (s *Server) RegisterPages(r pages.Renderer) {
	pages.Register(s.grpcServer, pages.NewHandler(r))
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics from
// the registry given to WithPrometheus, or from the default registry.
func (s *Server) MetricsHandler() http.Handler {
	if s.gatherer != nil {
		return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}
