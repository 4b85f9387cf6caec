// Package core assembles the server's interceptor chain.
package core

import (
	"cmp"
	"slices"

	"github.com/Keksclan/goRawrCache/interceptors"
	"google.golang.org/grpc"
)

// Fixed positions of the built-in middleware. Lower values run first, so
// recovery wraps everything and the response cache sees the authenticated
// actor.
const (
	OrderRecovery      = 100
	OrderRequestID     = 150
	OrderTracing       = 200
	OrderAuth          = 300
	OrderResponseCache = 400
	OrderUser          = 500
)

// middleware is a single interceptor pair (unary + stream) at a fixed
// position in the chain.
type middleware struct {
	Name   string
	Unary  grpc.UnaryServerInterceptor
	Stream grpc.StreamServerInterceptor
	Order  int
}

// MiddlewareBuilder collects middleware entries and produces the server
// options that install them in order.
type MiddlewareBuilder struct {
	entries []middleware
}

// Add registers a middleware entry with the given order and name.
// Either interceptor may be nil if only one direction is needed.
func (b *MiddlewareBuilder) Add(order int, name string, unary grpc.UnaryServerInterceptor, stream grpc.StreamServerInterceptor) {
	b.entries = append(b.entries, middleware{
		Name:   name,
		Unary:  unary,
		Stream: stream,
		Order:  order,
	})
}

func (b *MiddlewareBuilder) sorted() []middleware {
	slices.SortStableFunc(b.entries, func(a, c middleware) int {
		return cmp.Compare(a.Order, c.Order)
	})
	return b.entries
}

// Names returns the registered middleware names in execution order.
func (b *MiddlewareBuilder) Names() []string {
	var names []string
	for _, m := range b.sorted() {
		names = append(names, m.Name)
	}
	return names
}

// Build sorts the collected middleware by Order (stable) and returns the
// separated unary and stream interceptor slices.
func (b *MiddlewareBuilder) Build() ([]grpc.UnaryServerInterceptor, []grpc.StreamServerInterceptor) {
	var unary []grpc.UnaryServerInterceptor
	var stream []grpc.StreamServerInterceptor

	for _, m := range b.sorted() {
		if m.Unary != nil {
			unary = append(unary, m.Unary)
		}
		if m.Stream != nil {
			stream = append(stream, m.Stream)
		}
	}

	return unary, stream
}

// ServerOptions chains the built interceptors into grpc.ServerOption values
// for grpc.NewServer.
func (b *MiddlewareBuilder) ServerOptions() []grpc.ServerOption {
	unary, stream := b.Build()

	var opts []grpc.ServerOption
	if u := interceptors.ChainUnary(unary); u != nil {
		opts = append(opts, grpc.UnaryInterceptor(u))
	}
	if s := interceptors.ChainStream(stream); s != nil {
		opts = append(opts, grpc.StreamInterceptor(s))
	}
	return opts
}
