package auth

import (
	"errors"
	"net/http"

	authsvc "github.com/crossgate-id/crossgate/internal/auth"
	dto "github.com/crossgate-id/crossgate/internal/http/dto/auth"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
	"github.com/crossgate-id/crossgate/internal/jwt"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
	tokens "github.com/crossgate-id/crossgate/internal/security/token"
)

// RefreshController maneja POST /v1/auth/refresh.
type RefreshController struct {
	deps Deps
}

// Refresh consume el refresh token (single-use) y emite un access token
// nuevo. No se re-emite refresh: vencida la cadena, se vuelve por login.
func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Refresh"))

	var req dto.RefreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("refresh_token required"))
		return
	}

	// El access nuevo queda ligado a la cookie existente; si no hay, se
	// emite un seed fresco.
	seed := helpers.FingerprintSeed(r)
	if seed == "" {
		var err error
		seed, err = tokens.GenerateOpaqueToken(32)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
			return
		}
		helpers.SetFingerprintCookie(w, seed, c.deps.SecureCookies)
	}

	access, claims, err := c.deps.Auth.LoginFromRefresh(ctx, req.RefreshToken, seed)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenInvalid) || errors.Is(err, authsvc.ErrUnauthorized) {
			httperrors.WriteError(w, httperrors.ErrTokenInvalid)
			return
		}
		log.Error("refresh failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(claims.ExpiresAt.Sub(claims.IssuedAt).Seconds()),
	})
}
