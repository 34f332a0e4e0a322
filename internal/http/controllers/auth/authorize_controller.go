package auth

import (
	"errors"
	"net/http"

	authsvc "github.com/crossgate-id/crossgate/internal/auth"
	dto "github.com/crossgate-id/crossgate/internal/http/dto/auth"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
)

// AuthorizeController maneja GET /v1/auth/authorize.
type AuthorizeController struct {
	deps Deps
}

// Authorize valida el access token del header contra firma, fingerprint de
// cookie y denylist. Pensado para que los gateways lo usen como subrequest.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	access := helpers.BearerToken(r)
	if access == "" {
		httperrors.WriteError(w, httperrors.ErrTokenInvalid)
		return
	}

	claims, err := c.deps.Issuer.Decode(access)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrTokenInvalid)
		return
	}

	uniqueID, roles, err := c.deps.Auth.Authorize(ctx, claims, helpers.FingerprintSeed(r))
	if err != nil {
		if errors.Is(err, authsvc.ErrUnauthorized) {
			httperrors.WriteError(w, httperrors.ErrUnauthorized)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.AuthorizeResponse{
		UniqueID: uniqueID,
		Roles:    roles,
	})
}
