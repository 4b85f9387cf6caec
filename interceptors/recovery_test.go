package interceptors

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestRecoveryUnary_Panic_ReturnsInternal(t *testing.T) {
	log, logs := observedLogger()
	ic := RecoveryUnary(log)
	handler := func(_ context.Context, _ any) (any, error) {
		panic("boom")
	}

	resp, err := ic(t.Context(), "req", &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}, handler)
	if resp != nil {
		t.Fatalf("expected nil response, got %v", resp)
	}
	if got := status.Code(err); got != codes.Internal {
		t.Fatalf("got %v, want %v", got, codes.Internal)
	}

	entries := logs.FilterMessage("recovered from panic in handler").All()
	if len(entries) != 1 {
		t.Fatalf("got %d panic log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["panic"] != "boom" || fields["method"] != "/svc/Method" {
		t.Fatalf("unexpected log fields: %v", fields)
	}
}

func TestRecoveryUnary_NonStringPanic_ReturnsInternal(t *testing.T) {
	ic := RecoveryUnary(nil)
	handler := func(_ context.Context, _ any) (any, error) {
		panic(42)
	}

	_, err := ic(t.Context(), "req", &grpc.UnaryServerInfo{}, handler)
	if got := status.Code(err); got != codes.Internal {
		t.Fatalf("got %v, want %v", got, codes.Internal)
	}
}

func TestRecoveryUnary_NoPanic_Passthrough(t *testing.T) {
	log, logs := observedLogger()
	ic := RecoveryUnary(log)
	handler := func(_ context.Context, req any) (any, error) {
		return req, nil
	}

	resp, err := ic(t.Context(), "hello", &grpc.UnaryServerInfo{}, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "hello" {
		t.Fatalf("got %v, want %q", resp, "hello")
	}
	if logs.Len() != 0 {
		t.Fatalf("got %d log entries, want 0", logs.Len())
	}
}

func TestRecoveryStream_Panic_ReturnsInternal(t *testing.T) {
	ic := RecoveryStream(nil)
	handler := func(_ any, _ grpc.ServerStream) error {
		panic("boom")
	}

	err := ic(nil, nil, &grpc.StreamServerInfo{}, handler)
	if got := status.Code(err); got != codes.Internal {
		t.Fatalf("got %v, want %v", got, codes.Internal)
	}
}
