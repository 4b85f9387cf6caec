package contextx

import (
	"slices"
	"testing"
)

func TestWithActorRoundTrip(t *testing.T) {
	a := Actor{Subject: "user-1", Tenant: "tenant-a", Scopes: []string{"read", "write"}}
	ctx := WithActor(t.Context(), a)

	got, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatal("expected actor in context")
	}
	if got.Subject != a.Subject || got.Tenant != a.Tenant {
		t.Fatalf("got %+v, want %+v", got, a)
	}
	if !slices.Equal(got.Scopes, a.Scopes) {
		t.Fatalf("Scopes: got %v, want %v", got.Scopes, a.Scopes)
	}
	if TenantFromContext(ctx) != "tenant-a" {
		t.Fatalf("TenantFromContext = %q", TenantFromContext(ctx))
	}
}

func TestActorFromContextMissing(t *testing.T) {
	if _, ok := ActorFromContext(t.Context()); ok {
		t.Fatal("expected no actor in empty context")
	}
	if got := TenantFromContext(t.Context()); got != "" {
		t.Fatalf("expected empty tenant, got %q", got)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(t.Context(), "req-abc-123")
	if got := RequestIDFromContext(ctx); got != "req-abc-123" {
		t.Fatalf("got %q, want %q", got, "req-abc-123")
	}
	if got := RequestIDFromContext(t.Context()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestGroupRoundTrip(t *testing.T) {
	ctx := WithGroup(t.Context(), "pages")
	if got := GroupFromContext(ctx); got != "pages" {
		t.Fatalf("got %q, want %q", got, "pages")
	}
	if got := GroupFromContext(t.Context()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestAddCacheTags(t *testing.T) {
	if AddCacheTags(t.Context(), "x") {
		t.Fatal("AddCacheTags without collector must report false")
	}

	ctx := WithTagCollector(t.Context())
	if !AddCacheTags(ctx, "booking:1") || !AddCacheTags(ctx, "booking:2", "list") {
		t.Fatal("AddCacheTags with collector must report true")
	}
	want := []string{"booking:1", "booking:2", "list"}
	if got := CollectedTags(ctx); !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := CollectedTags(t.Context()); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
