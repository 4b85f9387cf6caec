package interceptors

import (
	"context"
	"slices"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func makeUnaryTag(tag string, log *[]string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		*log = append(*log, tag+":before")
		resp, err := handler(ctx, req)
		*log = append(*log, tag+":after")
		return resp, err
	}
}

func makeStreamTag(tag string, log *[]string) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		*log = append(*log, tag+":before")
		err := handler(srv, ss)
		*log = append(*log, tag+":after")
		return err
	}
}

// fakeStream is a grpc.ServerStream that records the headers it was given.
type fakeStream struct {
	grpc.ServerStream
	ctx    context.Context
	header metadata.MD
}

func (s *fakeStream) Context() context.Context { return s.ctx }

func (s *fakeStream) SetHeader(md metadata.MD) error {
	s.header = metadata.Join(s.header, md)
	return nil
}

func TestChainUnary_Order(t *testing.T) {
	var log []string
	chained := ChainUnary([]grpc.UnaryServerInterceptor{
		makeUnaryTag("A", &log),
		makeUnaryTag("B", &log),
		makeUnaryTag("C", &log),
	})

	handler := func(_ context.Context, _ any) (any, error) {
		log = append(log, "handler")
		return "ok", nil
	}

	resp, err := chained(t.Context(), "req", &grpc.UnaryServerInfo{}, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected response: %v", resp)
	}

	want := []string{"A:before", "B:before", "C:before", "handler", "C:after", "B:after", "A:after"}
	if !slices.Equal(log, want) {
		t.Fatalf("got %v, want %v", log, want)
	}
}

func TestChainUnary_ReusableAcrossCalls(t *testing.T) {
	var log []string
	chained := ChainUnary([]grpc.UnaryServerInterceptor{
		makeUnaryTag("A", &log),
		makeUnaryTag("B", &log),
	})
	handler := func(_ context.Context, _ any) (any, error) { return nil, nil }

	for range 2 {
		if _, err := chained(t.Context(), nil, &grpc.UnaryServerInfo{}, handler); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(log) != 8 {
		t.Fatalf("got %d log lines, want 8: %v", len(log), log)
	}
}

func TestChainUnary_Empty(t *testing.T) {
	if ChainUnary(nil) != nil {
		t.Fatal("ChainUnary(nil) should return nil")
	}
}

func TestChainStream_Order(t *testing.T) {
	var log []string
	chained := ChainStream([]grpc.StreamServerInterceptor{
		makeStreamTag("A", &log),
		makeStreamTag("B", &log),
	})

	handler := func(_ any, _ grpc.ServerStream) error {
		log = append(log, "handler")
		return nil
	}

	if err := chained(nil, nil, &grpc.StreamServerInfo{}, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"A:before", "B:before", "handler", "B:after", "A:after"}
	if !slices.Equal(log, want) {
		t.Fatalf("got %v, want %v", log, want)
	}
}

func TestChainStream_Empty(t *testing.T) {
	if ChainStream(nil) != nil {
		t.Fatal("ChainStream(nil) should return nil")
	}
}
