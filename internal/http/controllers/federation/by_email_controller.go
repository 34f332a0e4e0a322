package federation

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crossgate-id/crossgate/internal/domain/repository"
	dto "github.com/crossgate-id/crossgate/internal/http/dto/federation"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
)

// ByEmailController maneja GET /v1/federation/by-email.
type ByEmailController struct {
	deps Deps
}

// ByEmail rutea un email a su federación: allowlist de usuarios de prueba
// primero, dominios después. 404 si ninguna lo atiende.
func (c *ByEmailController) ByEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email required"))
		return
	}

	fed, err := c.deps.Federation.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ByEmailResponse{
		Name:   fed.Name,
		SiteID: fed.SiteID,
	})
}
