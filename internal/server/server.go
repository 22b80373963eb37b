// Package server runs the liveness listener that hosting platforms probe.
package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Body is what GET / always answers.
const Body = "🧪 Stats bot diagnostics running"

type Server struct {
	http     *http.Server
	listener net.Listener
	log      zerolog.Logger
}

// Handler serves exactly one route: GET /.
func Handler() http.Handler {
	mux := http.NewServeMux()
	addRoutes(mux)
	return mux
}

func addRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", health)
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(Body))
}

// Listen binds addr right away so a bind failure is known before any check runs.
func Listen(addr string, log zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return &Server{
		http: &http.Server{
			Handler:           Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		listener: ln,
		log:      log,
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve blocks until Close. A closed server is not an error.
func (s *Server) Serve() error {
	s.log.Info().Str("addr", s.Addr().String()).Msg("🌐 HTTP сервер запущен")
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close drops the listener and open connections without draining.
func (s *Server) Close() error {
	return s.http.Close()
}
