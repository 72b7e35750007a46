package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/louisbranch/trailhunt/internal/platform/timeouts"
	"github.com/louisbranch/trailhunt/internal/services/hunt/engine"
)

// Config defines the inputs for the hunt HTTP server.
type Config struct {
	HTTPAddr string
	TeamPass TeamPassConfig
}

// Server hosts the hunt HTTP API.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewServer builds a configured hunt server around an assembled engine.
func NewServer(config Config, e *engine.Engine) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if e == nil {
		return nil, errors.New("engine is required")
	}

	if len(config.TeamPass.Key) == 0 {
		key, err := GenerateTeamPassKey()
		if err != nil {
			return nil, err
		}
		config.TeamPass.Key = key
		log.Printf("team pass key not configured, using an ephemeral key")
	}
	pass, err := NewTeamPass(config.TeamPass)
	if err != nil {
		return nil, fmt.Errorf("build team pass: %w", err)
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(e, pass),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("hunt server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("hunt listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
