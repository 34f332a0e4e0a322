package federation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crossgate-id/crossgate/internal/domain/repository"
	dto "github.com/crossgate-id/crossgate/internal/http/dto/federation"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
)

// URLController maneja GET /v1/federation/{name}/url.
type URLController struct {
	deps Deps
}

// BuildURL arma la URL de autorización del partner con un estado de
// correlación fresco. El estado lleva el nombre de la federación para que el
// exchange posterior verifique que cierra el mismo handshake.
func (c *URLController) BuildURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("BuildURL"))

	name := chi.URLParam(r, "name")
	fed, err := c.deps.Federation.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		log.Error("federation lookup failed", logger.Federation(name), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	stateKey, err := c.deps.Federation.StoreCorrelation(ctx, fed.Name)
	if err != nil {
		log.Error("correlation store failed", logger.Federation(name), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	u, err := c.deps.Federation.BuildAuthorizationURL(fed, stateKey)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.URLResponse{URL: u, State: stateKey})
}
