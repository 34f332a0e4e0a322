package federation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crossgate-id/crossgate/internal/domain/repository"
	fedsvc "github.com/crossgate-id/crossgate/internal/federation"
	dto "github.com/crossgate-id/crossgate/internal/http/dto/federation"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
	"github.com/crossgate-id/crossgate/internal/state"
)

// ExchangeController maneja POST /v1/federation/{name}/exchange.
type ExchangeController struct {
	deps Deps
}

// Exchange cierra el handshake: consume el estado de correlación, cambia el
// authorization code por la identidad federada y entrega la sesión del
// broker más un function code de un solo uso para el portal.
func (c *ExchangeController) Exchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("Exchange"),
		logger.Federation(name),
	)

	var req dto.ExchangeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.State == "" || req.Code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("state and code required"))
		return
	}

	fed, err := c.deps.Federation.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	// Paso 1: el estado de correlación se consume exactamente una vez y tiene
	// que haber nacido en esta federación.
	st, err := c.deps.Federation.ReadCorrelation(ctx, req.State)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrUnauthorized)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}
	if st.Payload != fed.Name {
		log.Warn("correlation state belongs to another federation")
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	// Paso 2: code → identidad federada.
	identity, err := c.deps.Federation.ExchangeCodeForIdentity(ctx, fed, req.Code)
	if err != nil {
		if errors.Is(err, fedsvc.ErrProtocol) {
			log.Warn("partner protocol error", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrFederationProtocol)
			return
		}
		log.Error("code exchange failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	// Paso 3: provisión y sesión en el broker.
	pair, err := c.deps.Broker.HandoffIdentity(ctx, identity)
	if err != nil {
		log.Error("broker handoff failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrFederationProtocol)
		return
	}

	// Paso 4: function code para el handoff al portal. Best-effort.
	code, err := c.deps.States.IssueFunctionCode(ctx, identity)
	if err != nil {
		log.Warn("function code issue failed", logger.Err(err))
		code = ""
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ExchangeResponse{
		Identity:     identity,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		FunctionCode: code,
	})
}
