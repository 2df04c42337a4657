package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrServerStart indicates the listener failed to start or crashed.
	ErrServerStart = errors.New("gateway: server failed to start")
	// ErrServerShutdown indicates graceful shutdown did not complete in time.
	ErrServerShutdown = errors.New("gateway: server shutdown failed")
)

// Server wraps http.Server with graceful shutdown tied to a context.
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// NewServer returns a Server for the given listener settings.
func NewServer(cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{cfg: cfg, logger: log}
}

// Run serves handler until ctx is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Join(ErrServerShutdown, err)
		}
		<-errCh
		s.logger.Info("http server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(ErrServerStart, err)
		}
		return nil
	}
}
