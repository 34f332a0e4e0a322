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

// ExchangeController maneja POST /v1/auth/exchange.
type ExchangeController struct {
	deps Deps
}

// Exchange acepta un token firmado por el emisor externo de confianza y
// re-emite un par propio, sin password.
func (c *ExchangeController) Exchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Exchange"))

	var req dto.ExchangeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("token required"))
		return
	}

	seed, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	pair, err := c.deps.Auth.ExchangeToken(ctx, req.Token, seed)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenInvalid) || errors.Is(err, authsvc.ErrAuthenticationFailed) {
			httperrors.WriteError(w, httperrors.ErrTokenInvalid)
			return
		}
		log.Error("exchange failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	helpers.SetFingerprintCookie(w, seed, c.deps.SecureCookies)
	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(pair.AccessClaims.ExpiresAt.Sub(pair.AccessClaims.IssuedAt).Seconds()),
		RefreshToken: pair.RefreshToken,
	})
}
