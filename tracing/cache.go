package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Cache outcomes recorded on the active span.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheBypass = "bypass"
)

// RecordCacheResult annotates the span in ctx with the response cache outcome
// and the request fingerprint. Without an active span it does nothing.
func RecordCacheResult(ctx context.Context, result, fingerprint string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("cache.result", result)}
	if fingerprint != "" {
		attrs = append(attrs, attribute.String("cache.fingerprint", fingerprint))
	}
	span.SetAttributes(attrs...)
}

// RecordRevalidation adds a "cache.revalidate" event to the span in ctx.
func RecordRevalidation(ctx context.Context, tags []string, removed int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("cache.revalidate", trace.WithAttributes(
		attribute.StringSlice("cache.tags", tags),
		attribute.Int("cache.removed", removed),
	))
}
