package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/docuvault/docrisk/internal/config"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
)

// Server wraps the net/http server with configured timeouts and graceful
// shutdown.
type Server struct {
	srv    *http.Server
	cfg    config.ServerConfig
	logger logging.Logger
}

// NewServer builds a Server around the given handler.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg:    cfg,
		logger: logger.Named("server"),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", logging.String("addr", s.cfg.Addr()))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server",
		logging.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
