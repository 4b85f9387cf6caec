// Package auth provides the authentication function type used by the
// optional authentication middleware.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Keksclan/goRawrCache/contextx"
	"google.golang.org/grpc/metadata"
)

// AuthorizationHeader is the metadata key StaticTokens reads.
const AuthorizationHeader = "authorization"

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("auth: missing bearer token")
	// ErrUnknownToken is returned when the bearer token is not recognised.
	ErrUnknownToken = errors.New("auth: unknown token")
)

// AuthFunc is a user-supplied callback that authenticates a gRPC request.
// It receives the request context, the full method name, and the incoming
// metadata. On success it returns a (possibly enriched) context; on failure
// it returns an error.
//
// The tenant of the contextx.Actor placed in the returned context partitions
// the response cache.
type AuthFunc func(ctx context.Context, fullMethod string, md metadata.MD) (context.Context, error)

// StaticTokens returns an AuthFunc that maps "Bearer <token>" values of the
// authorization header to fixed actors. Requests without a token pass through
// anonymously; the auth interceptor still rejects them on methods whose
// policy requires authentication.
func StaticTokens(actors map[string]contextx.Actor) AuthFunc {
	return func(ctx context.Context, _ string, md metadata.MD) (context.Context, error) {
		vals := md.Get(AuthorizationHeader)
		if len(vals) == 0 {
			return ctx, nil
		}
		token, ok := strings.CutPrefix(vals[0], "Bearer ")
		if !ok || token == "" {
			return nil, ErrMissingToken
		}
		a, ok := actors[token]
		if !ok {
			return nil, ErrUnknownToken
		}
		return contextx.WithActor(ctx, a), nil
	}
}
