package interceptors

import (
	"context"
	"testing"

	"github.com/Keksclan/goRawrCache/contextx"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestRequestIDUnary_UsesIncomingHeader(t *testing.T) {
	ctx := metadata.NewIncomingContext(t.Context(), metadata.Pairs(RequestIDHeader, "req-42"))

	var got string
	handler := func(ctx context.Context, _ any) (any, error) {
		got = contextx.RequestIDFromContext(ctx)
		return nil, nil
	}
	if _, err := RequestIDUnary()(ctx, nil, &grpc.UnaryServerInfo{}, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "req-42" {
		t.Fatalf("got %q, want %q", got, "req-42")
	}
}

func TestRequestIDUnary_GeneratesWhenMissing(t *testing.T) {
	var ids []string
	handler := func(ctx context.Context, _ any) (any, error) {
		ids = append(ids, contextx.RequestIDFromContext(ctx))
		return nil, nil
	}
	ic := RequestIDUnary()
	for range 2 {
		if _, err := ic(t.Context(), nil, &grpc.UnaryServerInfo{}, handler); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := uuid.Parse(ids[0]); err != nil {
		t.Fatalf("got id %q, want a UUID: %v", ids[0], err)
	}
	if ids[0] == ids[1] {
		t.Fatalf("expected distinct ids, got %q twice", ids[0])
	}
}

func TestRequestIDStream_EchoesHeader(t *testing.T) {
	ctx := metadata.NewIncomingContext(t.Context(), metadata.Pairs(RequestIDHeader, "stream-1"))
	ss := &fakeStream{ctx: ctx}

	var got string
	handler := func(_ any, ss grpc.ServerStream) error {
		got = contextx.RequestIDFromContext(ss.Context())
		return nil
	}
	if err := RequestIDStream()(nil, ss, &grpc.StreamServerInfo{}, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "stream-1" {
		t.Fatalf("got %q, want %q", got, "stream-1")
	}
	if h := ss.header.Get(RequestIDHeader); len(h) != 1 || h[0] != "stream-1" {
		t.Fatalf("got header %v, want [stream-1]", h)
	}
}
