package gorawrcache

import (
	"github.com/Keksclan/goRawrCache/auth"
	"github.com/Keksclan/goRawrCache/policy"
	"github.com/Keksclan/goRawrCache/tagcache"
	"github.com/Keksclan/goRawrCache/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// config holds the internal configuration assembled via functional options.
// Interceptors are built from it in NewServer, so options may be passed in
// any order.
type config struct {
	logger *zap.Logger

	recovery  bool
	requestID bool
	authFn    auth.AuthFunc
	tracing   *tracing.Config

	responseCache bool
	store         *tagcache.Store[any]
	storeOpts     []tagcache.Option
	resolver      *policy.Resolver
	groups        []*policy.GroupBuilder

	registerer prometheus.Registerer
	namespace  string

	unaryInterceptors  []grpc.UnaryServerInterceptor
	streamInterceptors []grpc.StreamServerInterceptor
}
