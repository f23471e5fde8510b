package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sws-server/sws/app/lib/accesslog"
	"github.com/sws-server/sws/app/lib/cgi"
	"github.com/sws-server/sws/app/lib/config"
	"github.com/sws-server/sws/app/lib/http"
)

// DefaultHeartbeat bounds how long Accept blocks before the listener logs
// that it is still idle.
const DefaultHeartbeat = 5 * time.Second

const maxAcceptBackoff = time.Second

type Server struct {
	conf      config.Config
	pipeline  *http.HttpPipeline
	access    *accesslog.Logger
	workers   *Registry
	hostname  string
	heartbeat time.Duration
	logger    zerolog.Logger
}

func New(conf config.Config, pipeline *http.HttpPipeline, access *accesslog.Logger, logger zerolog.Logger) *Server {
	hostname, err := os.Hostname()
	if err != nil {
		logger.Warn().Err(err).Msg("could not determine hostname")
		hostname = "localhost"
	}

	return &Server{
		conf:      conf,
		pipeline:  pipeline,
		access:    access,
		workers:   NewRegistry(logger.With().Str("component", "reaper").Logger()),
		hostname:  hostname,
		heartbeat: DefaultHeartbeat,
		logger:    logger,
	}
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.conf.Address())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.conf.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. In debug mode each
// connection is handled to completion before the next is accepted; otherwise
// every connection gets its own worker.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	s.logger.Info().
		Str("address", ln.Addr().String()).
		Bool("debug", s.conf.Debug).
		Msg("Waiting for connection")

	if !s.conf.Debug {
		s.workers.Start()
		defer s.workers.Close()
	}

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	deadliner, _ := ln.(interface{ SetDeadline(time.Time) error })

	var backoff time.Duration
	for {
		if deadliner != nil {
			deadliner.SetDeadline(time.Now().Add(s.heartbeat))
		}

		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info().Msg("listener closed, waiting for workers")
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Debug().Int("active", s.workers.Active()).Msg("Idly sitting here, waiting for connections...")
				continue
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > maxAcceptBackoff {
				backoff = maxAcceptBackoff
			}
			s.logger.Err(err).Dur("retry_in", backoff).Msg("Error accepting connection")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
			}
			continue
		}
		backoff = 0

		id := uuid.New()
		if s.conf.Debug {
			s.handleConnection(ctx, id, conn)
			continue
		}
		s.workers.Spawn(id, func() { s.handleConnection(ctx, id, conn) })
	}
}

func (s *Server) handleConnection(ctx context.Context, id uuid.UUID, conn net.Conn) {
	logger := s.logger.With().Str("conn_id", id.String()).Logger()
	defer conn.Close()
	// unblock a client that is still sending its request when shutdown begins
	release := context.AfterFunc(ctx, func() { conn.SetReadDeadline(time.Now()) })
	defer release()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("worker panicked")
		}
	}()

	remote := peerHost(conn.RemoteAddr())
	logger.Debug().Str("remote", remote).Msg("Client connected")

	peer := http.Peer{
		ConnId:     id,
		RemoteAddr: remote,
		Ambient:    cgi.Ambient(remote, s.hostname, localPort(conn.LocalAddr(), s.conf.Port)),
	}

	req, res := s.pipeline.Handle(ctx, conn, peer)

	s.access.Log(accesslog.Record{
		Client:  remote,
		Time:    time.Now(),
		Method:  req.HttpMethod,
		Path:    req.LogPath(),
		Version: req.HttpVersion,
		Status:  res.StatusCode,
		Length:  res.ContentLength,
	})
}

func peerHost(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

func localPort(addr net.Addr, fallback int) int {
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.Port != 0 {
		return tcp.Port
	}
	return fallback
}
