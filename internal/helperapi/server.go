package helperapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
)

// Server serves the control API over a Unix domain socket.
type Server struct {
	cfg     Config
	handler *Handler
	logger  *slog.Logger
}

// NewServer creates a new Server. Config defaults are applied
// automatically.
func NewServer(cfg Config, handler *Handler, logger *slog.Logger) *Server {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger.With("component", "helperapi"),
	}
}

// Start runs the server. It blocks until ctx is cancelled, then shuts down
// gracefully within the configured timeout and removes the socket file.
func (s *Server) Start(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	if dir := filepath.Dir(s.cfg.SocketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("helperapi: create socket dir: %w", err)
		}
	}

	// Remove stale socket from a previous run.
	os.Remove(s.cfg.SocketPath)

	ln, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("helperapi: listen unix %s: %w", s.cfg.SocketPath, err)
	}

	srv := &http.Server{Handler: s.handler.Mux()}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	s.logger.Info("control API started", "socket", s.cfg.SocketPath)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		os.Remove(s.cfg.SocketPath)
		if err != nil {
			return fmt.Errorf("helperapi: serve: %w", err)
		}
		return nil
	}

	s.logger.Info("control API shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	os.Remove(s.cfg.SocketPath)
	<-errCh

	s.logger.Info("control API stopped")
	return ctx.Err()
}
