package core

import (
	"context"
	"slices"
	"testing"

	"google.golang.org/grpc"
)

func tagUnary(tag string, log *[]string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		*log = append(*log, tag)
		return handler(ctx, req)
	}
}

func TestMiddlewareBuilder_SortsByOrder(t *testing.T) {
	var log []string
	var b MiddlewareBuilder
	b.Add(OrderUser, "user", tagUnary("user", &log), nil)
	b.Add(OrderRecovery, "recovery", tagUnary("recovery", &log), nil)
	b.Add(OrderResponseCache, "cache", tagUnary("cache", &log), nil)
	b.Add(OrderAuth, "auth", tagUnary("auth", &log), nil)

	want := []string{"recovery", "auth", "cache", "user"}
	if got := b.Names(); !slices.Equal(got, want) {
		t.Fatalf("got names %v, want %v", got, want)
	}

	unary, stream := b.Build()
	if len(unary) != 4 || len(stream) != 0 {
		t.Fatalf("got %d unary / %d stream, want 4 / 0", len(unary), len(stream))
	}
	for _, ic := range unary {
		_, _ = ic(t.Context(), nil, &grpc.UnaryServerInfo{}, func(context.Context, any) (any, error) { return nil, nil })
	}
	if !slices.Equal(log, want) {
		t.Fatalf("got run order %v, want %v", log, want)
	}
}

func TestMiddlewareBuilder_StableForEqualOrder(t *testing.T) {
	var b MiddlewareBuilder
	b.Add(OrderUser, "first", nil, nil)
	b.Add(OrderUser, "second", nil, nil)
	b.Add(OrderUser, "third", nil, nil)

	want := []string{"first", "second", "third"}
	if got := b.Names(); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMiddlewareBuilder_EmptyHasNoOptions(t *testing.T) {
	var b MiddlewareBuilder
	if opts := b.ServerOptions(); len(opts) != 0 {
		t.Fatalf("got %d server options, want 0", len(opts))
	}
}
