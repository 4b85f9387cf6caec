// Package pages provides the built-in rawr.Pages service: a cacheable Render
// RPC and a mutating Publish RPC. It uses [grpc.ServiceDesc] registration so
// that no protobuf code generation is required.
//
// Because the request/response types are plain Go structs (not generated
// protobuf messages), the package registers a thin codec wrapper that
// JSON-encodes Pages types while delegating all other messages to the
// standard proto codec. Import this package (or call [Register]) to
// activate the codec automatically.
package pages

import (
	"context"
	"time"

	"github.com/Keksclan/goRawrCache/contextx"
	"github.com/Keksclan/goRawrCache/policy"
	"google.golang.org/grpc"
)

// Full method names of the service.
const (
	RenderMethod  = "/rawr.Pages/Render"
	PublishMethod = "/rawr.Pages/Publish"
)

// Tags every rendered page carries: AllPagesTag, plus PathTagPrefix followed
// by its own path.
const (
	AllPagesTag   = "pages"
	PathTagPrefix = "page:"
)

// RenderRequest is the input for the Render method.
type RenderRequest struct {
	Path string `json:"path"`
}

// RenderResponse is the output of the Render method.
type RenderResponse struct {
	Path           string `json:"path"`
	HTML           string `json:"html"`
	RenderedAtUnix int64  `json:"rendered_at_unix"`
}

// PublishRequest is the input for the Publish method.
type PublishRequest struct {
	Path string `json:"path"`
}

// PublishResponse is the output of the Publish method.
type PublishResponse struct {
	Path string `json:"path"`
}

// pagesMsg is a marker interface satisfied by the request and response types.
type pagesMsg interface {
	isPagesMsg()
}

func (*RenderRequest) isPagesMsg()   {}
func (*RenderResponse) isPagesMsg()  {}
func (*PublishRequest) isPagesMsg()  {}
func (*PublishResponse) isPagesMsg() {}

// Clone returns a copy so cached responses are never shared between callers.
func (r *RenderResponse) Clone() any {
	c := *r
	return &c
}

// Clone returns a copy of r.
func (r *PublishResponse) Clone() any {
	c := *r
	return &c
}

// Page is a rendered page and the cache tags it depends on.
type Page struct {
	HTML string
	Tags []string
}

// Renderer produces and publishes pages. Implementations must be safe for
// concurrent use.
type Renderer interface {
	Render(ctx context.Context, path string) (Page, error)
	Publish(ctx context.Context, path string) error
}

// Handler is the interface that a Pages service implementation must satisfy.
type Handler interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResponse, error)
	Publish(ctx context.Context, req *PublishRequest) (*PublishResponse, error)
}

// NewHandler returns a Handler backed by r. Rendered pages are tagged with
// their own path tag plus the tags r reports.
func NewHandler(r Renderer) Handler {
	return &handler{renderer: r, now: time.Now}
}

type handler struct {
	renderer Renderer
	now      func() time.Time
}

func (h *handler) Render(ctx context.Context, req *RenderRequest) (*RenderResponse, error) {
	page, err := h.renderer.Render(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	contextx.AddCacheTags(ctx, PathTagPrefix+req.Path)
	contextx.AddCacheTags(ctx, page.Tags...)
	return &RenderResponse{
		Path:           req.Path,
		HTML:           page.HTML,
		RenderedAtUnix: h.now().Unix(),
	}, nil
}

func (h *handler) Publish(ctx context.Context, req *PublishRequest) (*PublishResponse, error) {
	if err := h.renderer.Publish(ctx, req.Path); err != nil {
		return nil, err
	}
	return &PublishResponse{Path: req.Path}, nil
}

// ServiceDesc is the grpc.ServiceDesc for the rawr.Pages service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "rawr.Pages",
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Render",
			Handler:    renderHandler,
		},
		{
			MethodName: "Publish",
			Handler:    publishHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rawr/pages.proto",
}

func renderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(RenderRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Render(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RenderMethod,
	}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).Render(ctx, r.(*RenderRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func publishHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(PublishRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Publish(ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PublishMethod,
	}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).Publish(ctx, r.(*PublishRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// Register registers a Pages service implementation on the given gRPC server.
func Register(s grpc.ServiceRegistrar, h Handler) {
	s.RegisterService(&ServiceDesc, h)
}

// Policies returns the default cache policies of the service: Render is
// cached under the "pages" tag and a successful Publish revalidates it.
// Publish requires an authenticated actor when requireAuth is set.
func Policies(requireAuth bool) []*policy.GroupBuilder {
	return []*policy.GroupBuilder{
		policy.Group("pages.render").Exact(RenderMethod).Policy(policy.Policy{
			Cache: &policy.CacheRule{Tags: []string{AllPagesTag}},
		}),
		policy.Group("pages.publish").Exact(PublishMethod).Policy(policy.Policy{
			Revalidate:   []string{AllPagesTag},
			AuthRequired: requireAuth,
		}),
	}
}
