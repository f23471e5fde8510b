package http

import (
	"context"
	"fmt"
	"strings"

	"github.com/sws-server/sws/app/lib/cgi"
)

type HandlerFunction func(ctx context.Context, req *HttpRequest) (Reply, error)

// RouteHandler serves every normalized path starting with prefix.
type RouteHandler struct {
	name   string
	prefix string
	handle HandlerFunction
}

func NewRouteHandler(name string, prefix string, h HandlerFunction) (RouteHandler, error) {
	if !strings.HasPrefix(prefix, "/") {
		return RouteHandler{}, fmt.Errorf("route %s: prefix %q must start with /", name, prefix)
	}
	return RouteHandler{
		name:   name,
		prefix: prefix,
		handle: h,
	}, nil
}

func (h RouteHandler) match(p string) bool {
	return strings.HasPrefix(p, h.prefix)
}

// StaticHandler serves files and directory listings through r.
func StaticHandler(r *StaticResolver) HandlerFunction {
	return func(ctx context.Context, req *HttpRequest) (Reply, error) {
		return r.Resolve(req)
	}
}

// CgiHandler runs the script addressed by the request and wraps its output
// as a 200 reply. Any executor failure is an internal error.
func CgiHandler(e *cgi.Executor) HandlerFunction {
	return func(ctx context.Context, req *HttpRequest) (Reply, error) {
		target := req.Path
		if req.HasQuery {
			target += "?" + req.Query
		}
		out, err := e.Run(ctx, cgi.Invocation{
			Method:  req.HttpMethod,
			Path:    target,
			Ambient: req.Peer.Ambient,
		})
		if err != nil {
			return Reply{}, fmt.Errorf("%w: %w", ErrInternal, err)
		}

		return Reply{
			Status:      Status200OK,
			Body:        out.Body,
			ContentType: out.ContentType,
		}, nil
	}
}
