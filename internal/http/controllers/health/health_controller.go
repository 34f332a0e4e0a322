// Package health contiene el controller de readiness.
package health

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
)

// Pinger es lo que el readiness check necesita de cada dependencia.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller maneja GET /readyz.
type Controller struct {
	// Checks mapea nombre de dependencia a su ping.
	Checks map[string]Pinger
}

// Ready responde 200 si todas las dependencias contestan el ping dentro de
// los 2 segundos, 503 si alguna no.
func (c *Controller) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, p := range c.Checks {
		if err := p.Ping(ctx); err != nil {
			logger.From(r.Context()).Warn("readiness check failed",
				logger.Component(name),
				logger.Err(err),
			)
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, status)
}
