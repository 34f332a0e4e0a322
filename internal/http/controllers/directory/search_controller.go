// Package directory contiene el controller de identificación de usuarios.
package directory

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/crossgate-id/crossgate/internal/auth"
	"github.com/crossgate-id/crossgate/internal/domain"
	dto "github.com/crossgate-id/crossgate/internal/http/dto/directory"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
)

// SearchController maneja GET /v1/directory/search.
type SearchController struct {
	Verifier auth.Verifier
}

// Search identifica los mappings de un username sin confirmar credenciales:
// la búsqueda con password vacío marca como buenos todos los mappings que
// pasan el filtro de tipo/sitio.
func (c *SearchController) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Search"))

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("username required"))
		return
	}

	userType := 0
	if raw := r.URL.Query().Get("user_type"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("user_type must be numeric"))
			return
		}
		userType = n
	}
	site := domain.ParseSite(r.URL.Query().Get("site"))

	res, err := c.Verifier.FindMatches(ctx, username, "", domain.UserType(userType), site)
	if err != nil {
		log.Error("directory search failed", logger.Username(username), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	out := dto.SearchResponse{Entries: []dto.Entry{}}
	if res.Identity == nil {
		helpers.WriteJSON(w, http.StatusOK, out)
		return
	}
	for _, m := range res.Good {
		out.Entries = append(out.Entries, dto.Entry{
			UniqueID:    m.Mapping.UniqueID().String(),
			DisplayName: res.Identity.DisplayName(),
			Platform:    m.Mapping.Platform,
			Role:        m.Mapping.Role,
		})
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}
