package interceptors

import (
	"context"

	"github.com/Keksclan/goRawrCache/auth"
	"github.com/Keksclan/goRawrCache/contextx"
	"github.com/Keksclan/goRawrCache/policy"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	errUnauthenticated = status.Error(codes.Unauthenticated, "unauthenticated")
	errNoActor         = status.Error(codes.PermissionDenied, "method requires an authenticated actor")
)

// authError keeps gRPC status errors from the AuthFunc and maps anything else
// to codes.Unauthenticated.
func authError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return errUnauthenticated
}

// authenticate runs fn and, when the method's policy demands it, checks that
// an actor ended up in the context.
func authenticate(ctx context.Context, fn auth.AuthFunc, res *policy.Resolver, fullMethod string) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	ctx, err := fn(ctx, fullMethod, md)
	if err != nil {
		return nil, authError(err)
	}
	if _, pol, ok := res.Resolve(fullMethod); ok && pol != nil && pol.AuthRequired {
		if _, ok := contextx.ActorFromContext(ctx); !ok {
			return nil, errNoActor
		}
	}
	return ctx, nil
}

// AuthUnary returns a unary server interceptor that calls fn before the
// handler. The context fn returns, typically carrying a contextx.Actor, is
// passed on. res may be nil.
func AuthUnary(fn auth.AuthFunc, res *policy.Resolver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := authenticate(ctx, fn, res, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// AuthStream is the stream counterpart of AuthUnary.
func AuthStream(fn auth.AuthFunc, res *policy.Resolver) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := authenticate(ss.Context(), fn, res, info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &scopedStream{ServerStream: ss, ctx: ctx})
	}
}
