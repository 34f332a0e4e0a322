package federation

import (
	"errors"
	"net/http"

	dto "github.com/crossgate-id/crossgate/internal/http/dto/federation"
	httperrors "github.com/crossgate-id/crossgate/internal/http/errors"
	"github.com/crossgate-id/crossgate/internal/http/helpers"
	"github.com/crossgate-id/crossgate/internal/state"
)

// RedeemController maneja POST /v1/federation/redeem.
type RedeemController struct {
	deps Deps
}

// Redeem consume un function code emitido durante el exchange. Un code solo
// se canjea una vez; vencido o repetido es 404.
func (c *RedeemController) Redeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.RedeemRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("code required"))
		return
	}

	identity, err := c.deps.States.ConsumeFunctionCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.RedeemResponse{Identity: identity})
}
