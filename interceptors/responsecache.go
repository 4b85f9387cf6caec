package interceptors

import (
	"context"
	"net/http"
	"slices"
	"strconv"

	"github.com/Keksclan/goRawrCache/contextx"
	"github.com/Keksclan/goRawrCache/policy"
	"github.com/Keksclan/goRawrCache/tagcache"
	"github.com/Keksclan/goRawrCache/tracing"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Response metadata set by the response cache.
const (
	CacheStatusHeader  = "x-cache"
	LastModifiedHeader = "x-cache-last-modified"
	CacheControlHeader = "cache-control"

	cacheStatusHit  = "HIT"
	cacheStatusMiss = "MISS"
	methodMetaKey   = "method"
	tenantMetaKey   = "tenant"
)

// ResponseCacheConfig configures the response cache interceptors. Cached
// responses are copied per caller when they are protobuf messages or
// implement [Cloner]; any other value is shared between callers.
type ResponseCacheConfig struct {
	Store    *tagcache.Store[any]
	Resolver *policy.Resolver
	Logger   *zap.Logger
}

func (c ResponseCacheConfig) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// ResponseCacheUnary returns a unary server interceptor that serves responses
// of methods with a cache rule from cfg.Store, stores fresh ones under their
// policy tags and revalidates the tags of mutating methods once they succeed.
func ResponseCacheUnary(cfg ResponseCacheConfig) grpc.UnaryServerInterceptor {
	log := cfg.logger()
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = tagcache.WithRequestScope(ctx)
		defer cfg.Store.ResetRequestCache(ctx)

		group, pol, ok := cfg.Resolver.Resolve(info.FullMethod)
		if !ok || pol == nil {
			return handler(ctx, req)
		}
		ctx = contextx.WithGroup(ctx, group)
		vars := policy.Vars{
			Tenant: contextx.TenantFromContext(ctx),
			Group:  group,
			Method: info.FullMethod,
		}

		var (
			resp any
			err  error
		)
		if pol.Cache != nil {
			resp, err = serveCached(ctx, cfg.Store, log, pol.Cache, vars, req, info, handler)
		} else {
			resp, err = handler(ctx, req)
		}
		if err != nil {
			return nil, err
		}

		revalidate(ctx, cfg.Store, log, pol.Revalidate, vars)
		return resp, nil
	}
}

func serveCached(
	ctx context.Context,
	store *tagcache.Store[any],
	log *zap.Logger,
	rule *policy.CacheRule,
	vars policy.Vars,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	tenant := ""
	if rule.PerTenant {
		tenant = vars.Tenant
	}
	key, err := Fingerprint(info.FullMethod, tenant, req)
	if err != nil {
		log.Warn("response cache bypassed", zap.String("method", info.FullMethod), zap.Error(err))
		tracing.RecordCacheResult(ctx, tracing.CacheBypass, "")
		return handler(ctx, req)
	}

	e, hit, err := store.GetOrSetEntry(ctx, key, func(ctx context.Context) (any, tagcache.SetOptions, error) {
		ctx = contextx.WithTagCollector(ctx)
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, tagcache.SetOptions{}, err
		}
		meta := map[string]string{methodMetaKey: info.FullMethod}
		if tenant != "" {
			meta[tenantMetaKey] = tenant
		}
		return resp, tagcache.SetOptions{
			Tags: slices.Concat(policy.ExpandTags(rule.Tags, vars), contextx.CollectedTags(ctx)),
			Meta: meta,
		}, nil
	})
	if err != nil {
		// Handler errors pass through unchanged, also to callers that shared
		// the failed load.
		return nil, err
	}

	result := tracing.CacheMiss
	status := cacheStatusMiss
	if hit {
		result = tracing.CacheHit
		status = cacheStatusHit
	}
	tracing.RecordCacheResult(ctx, result, key)

	md := metadata.Pairs(
		CacheStatusHeader, status,
		LastModifiedHeader, e.LastModified.UTC().Format(http.TimeFormat),
	)
	if maxAge := store.MaxAge(); maxAge > 0 {
		md.Set(CacheControlHeader, "max-age="+strconv.Itoa(int(maxAge.Seconds())))
	}
	// SetHeader fails once headers were sent or outside a server transport;
	// neither affects the response itself.
	if err := grpc.SetHeader(ctx, md); err != nil {
		log.Debug("cache headers not set", zap.String("method", info.FullMethod), zap.Error(err))
	}

	return cloneResponse(e.Value), nil
}

func revalidate(ctx context.Context, store *tagcache.Store[any], log *zap.Logger, templates []string, vars policy.Vars) {
	if len(templates) == 0 {
		return
	}
	tags := policy.ExpandTags(templates, vars)
	if len(tags) == 0 {
		log.Warn("revalidation skipped, no tag resolved",
			zap.String("method", vars.Method),
			zap.Strings("templates", templates),
		)
		return
	}
	removed := store.RevalidateTag(ctx, tags...)
	tracing.RecordRevalidation(ctx, tags, removed)
	log.Info("cache revalidated",
		zap.String("method", vars.Method),
		zap.String("request_id", contextx.RequestIDFromContext(ctx)),
		zap.Strings("tags", tags),
		zap.Int("removed", removed),
	)
}

// ResponseCacheStream returns a stream server interceptor that attaches a
// request scope and the resolved policy group. Streams are never cached.
func ResponseCacheStream(cfg ResponseCacheConfig) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := tagcache.WithRequestScope(ss.Context())
		defer cfg.Store.ResetRequestCache(ctx)

		if group, _, ok := cfg.Resolver.Resolve(info.FullMethod); ok {
			ctx = contextx.WithGroup(ctx, group)
		}
		return handler(srv, &scopedStream{ServerStream: ss, ctx: ctx})
	}
}
