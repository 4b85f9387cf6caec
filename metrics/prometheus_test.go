package metrics

import (
	"strings"
	"testing"

	"github.com/Keksclan/goRawrCache/tagcache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheus_CountsStoreEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg, "rawr")
	if err != nil {
		t.Fatalf("NewPrometheus: %v", err)
	}
	s := tagcache.New[string](tagcache.WithMetrics(m))
	ctx := t.Context()

	_, _, _ = s.Get(ctx, "k")
	_ = s.Set(ctx, "k", "v", tagcache.SetOptions{Tags: []string{"home"}})
	_ = s.Set(ctx, "k2", "v", tagcache.SetOptions{Tags: []string{"home"}})
	_, _, _ = s.Get(ctx, "k")
	s.RevalidateTag(ctx, "home")

	for name, tc := range map[string]struct {
		c    prometheus.Collector
		want float64
	}{
		"hits":          {m.hits, 1},
		"misses":        {m.misses, 1},
		"sets":          {m.sets, 2},
		"revalidations": {m.revalidations, 1},
		"revalidated":   {m.revalidated, 2},
	} {
		if got := testutil.ToFloat64(tc.c); got != tc.want {
			t.Fatalf("%s: got %v, want %v", name, got, tc.want)
		}
	}
}

func TestPrometheus_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheus(reg, "rawr"); err != nil {
		t.Fatalf("first NewPrometheus: %v", err)
	}
	if _, err := NewPrometheus(reg, "rawr"); err == nil {
		t.Fatal("expected error on duplicate registration")
	}
}

func TestRegisterEntries(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := tagcache.New[int]()
	_ = s.Set(t.Context(), "a", 1, tagcache.SetOptions{})
	_ = s.Set(t.Context(), "b", 2, tagcache.SetOptions{})

	if err := RegisterEntries(reg, "rawr", s.Len); err != nil {
		t.Fatalf("RegisterEntries: %v", err)
	}

	want := `
# HELP rawr_cache_entries Entries currently held by the cache.
# TYPE rawr_cache_entries gauge
rawr_cache_entries 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "rawr_cache_entries"); err != nil {
		t.Fatal(err)
	}
}
