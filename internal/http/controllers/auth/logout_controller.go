package auth

import (
	"errors"
	"net/http"

	dto "github.com/crossgate-id/crossgate/internal/http/dto/auth"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
	"github.com/crossgate-id/crossgate/internal/jwt"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
)

// LogoutController maneja POST /v1/auth/logout.
type LogoutController struct {
	deps Deps
}

// Logout deja el access token en la denylist por lo que le queda de vida y
// consume el refresh si se entrega. Si la sesión nació federada, también
// cierra la sesión en el broker.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Logout"))

	access := helpers.BearerToken(r)
	if access == "" {
		httperrors.WriteError(w, httperrors.ErrTokenInvalid)
		return
	}

	var req dto.LogoutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if !helpers.ReadJSON(w, r, &req) {
			return
		}
	}

	if err := c.deps.Auth.Invalidate(ctx, access, req.RefreshToken); err != nil {
		if errors.Is(err, jwt.ErrTokenInvalid) {
			httperrors.WriteError(w, httperrors.ErrTokenInvalid)
			return
		}
		log.Error("logout failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	if req.BrokerUserID != "" && c.deps.Broker != nil {
		// Best-effort: el logout local ya está hecho.
		if err := c.deps.Broker.Logout(ctx, req.BrokerUserID); err != nil {
			log.Warn("broker logout failed", logger.Err(err))
		}
	}

	helpers.ClearFingerprintCookie(w, c.deps.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}
