// Package http arma y opera el servidor HTTP del servicio.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/crossgate-id/crossgate/internal/config"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
)

// Server envuelve http.Server con los timeouts de configuración y un
// shutdown ordenado.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

// NewServer crea el servidor con el handler ya armado.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// ListenAndServe bloquea hasta que el servidor cierre. ErrServerClosed no es
// un error para el caller.
func (s *Server) ListenAndServe() error {
	logger.L().Info("http server listening", logger.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drena las conexiones en curso dentro del timeout configurado.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
