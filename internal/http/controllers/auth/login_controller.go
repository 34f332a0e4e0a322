package auth

import (
	"errors"
	"net/http"

	authsvc "github.com/crossgate-id/crossgate/internal/auth"
	"github.com/crossgate-id/crossgate/internal/domain"
	dto "github.com/crossgate-id/crossgate/internal/http/dto/auth"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
	tokens "github.com/crossgate-id/crossgate/internal/security/token"
)

// LoginController maneja POST /v1/auth/login.
type LoginController struct {
	deps Deps
}

// Login verifica credenciales y emite el par de tokens. El fingerprint seed
// va en cookie HttpOnly; el token lleva solo su hash.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("username and password required"))
		return
	}

	seed, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	pair, err := c.deps.Auth.Login(ctx, authsvc.LoginRequest{
		Username:        req.Username,
		Password:        req.Password,
		UserType:        domain.UserType(req.UserType),
		Site:            domain.ParseSite(req.Site),
		FingerprintSeed: seed,
		WithRefresh:     true,
	})
	if err != nil {
		if errors.Is(err, authsvc.ErrAuthenticationFailed) {
			// Genérico a propósito: nunca se distingue usuario inexistente
			// de password malo.
			httperrors.WriteError(w, httperrors.ErrUnauthorized)
			return
		}
		log.Error("login failed", logger.Err(err))
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
