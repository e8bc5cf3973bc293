package app

import (
	"context"
	"errors"
	stdhttp "net/http"

	"go.uber.org/zap"

	"download-service/internal/audit"
	"download-service/internal/config"
	"download-service/internal/http"
)

const serverAddrPrefix = ":"

// Service owns the HTTP server and the resources it depends on.
type Service struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	audit   *audit.Logger
	closers []func() error
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	s.server.StartBackground(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", zap.String("port", s.config.Server.Port))
		if err := s.server.Start(serverAddrPrefix + s.config.Server.Port); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.close()
			return err
		}
	case <-ctx.Done():
	}

	return s.Shutdown()
}

// Shutdown stops accepting requests, drains pending audit writes and
// releases connections.
func (s *Service) Shutdown() error {
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.server.ShutdownTimeout())
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.audit != nil {
		s.audit.Wait()
	}
	s.close()

	if err != nil {
		return err
	}
	s.logger.Info("server exited gracefully")
	return nil
}

func (s *Service) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close failed", zap.Error(err))
		}
	}
	s.closers = nil
}
