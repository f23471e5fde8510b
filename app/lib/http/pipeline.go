package http

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sws-server/sws/app/lib/cgi"
)

type HttpPipeline struct {
	handlers []RouteHandler
	fallback HandlerFunction
	logger   zerolog.Logger
	now      func() time.Time
}

func NewHttpPipeline(handlers []RouteHandler, fallback HandlerFunction, logger zerolog.Logger) *HttpPipeline {
	return &HttpPipeline{
		handlers: handlers,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// NewServerPipeline wires the static resolver and, when executor is non-nil,
// the /cgi-bin/ route in front of it.
func NewServerPipeline(static *StaticResolver, executor *cgi.Executor, logger zerolog.Logger) (*HttpPipeline, error) {
	handlers := make([]RouteHandler, 0, 1)
	if executor != nil {
		h, err := NewRouteHandler("cgi", cgi.Prefix, CgiHandler(executor))
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return NewHttpPipeline(handlers, StaticHandler(static), logger), nil
}

// Handle runs one request through parse, normalize, route and respond. It
// always tries to send some response and returns what the access log needs.
func (p *HttpPipeline) Handle(ctx context.Context, conn io.ReadWriter, peer Peer) (HttpRequest, HttpResponse) {
	reader := bufio.NewReaderSize(conn, MaxRequestLine)

	req, outcome := ReadRequest(reader)
	req.Peer = peer
	req.Logger = p.logger.With().
		Str("conn_id", peer.ConnId.String()).
		Str("method", req.HttpMethod).
		Str("path", req.RawPath).
		Logger()

	if outcome != ParseOk {
		req.Logger.Info().Str("outcome", outcome.String()).Str("line", req.RequestLine).Msg("rejecting request")
		return req, p.respond(conn, &req, ErrorReply(StatusForOutcome(outcome)))
	}

	// the query is handed on verbatim; only the path is decoded
	target, query, hasQuery := strings.Cut(req.RawPath, "?")
	normalized, err := Normalize(target)
	if err != nil {
		req.Logger.Info().Err(err).Msg("rejecting path")
		return req, p.respond(conn, &req, ErrorReply(StatusForError(err)))
	}
	req.Path = normalized
	req.Query = query
	req.HasQuery = hasQuery

	reply, err := p.route(ctx, &req)
	if err != nil {
		status := StatusForError(err)
		event := req.Logger.Info()
		if status == Status500InternalServerError {
			event = req.Logger.Error()
		}
		event.Err(err).Int("status", status.Code).Msg("request failed")
		reply = ErrorReply(status)
	}

	return req, p.respond(conn, &req, reply)
}

func (p *HttpPipeline) route(ctx context.Context, req *HttpRequest) (Reply, error) {
	for _, h := range p.handlers {
		if !h.match(req.Path) {
			continue
		}
		req.Logger.Debug().Str("route", h.name).Str("normalized", req.Path).Msg("found match")
		return h.handle(ctx, req)
	}

	req.Logger.Debug().Str("normalized", req.Path).Msg("using fallback route")
	return p.fallback(ctx, req)
}

func (p *HttpPipeline) respond(conn io.Writer, req *HttpRequest, reply Reply) HttpResponse {
	res, err := WriteResponse(conn, reply, req.IsHead(), p.now())
	if err != nil {
		req.Logger.Warn().Err(err).Msg("failed writing response")
	}
	req.Logger.Debug().Int("status", res.StatusCode).Int64("length", res.ContentLength).Msg("sent response")
	return res
}
