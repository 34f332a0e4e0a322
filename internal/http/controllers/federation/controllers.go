// Package federation contiene los controllers del handshake de federación.
package federation

import (
	"github.com/crossgate-id/crossgate/internal/broker"
	fedsvc "github.com/crossgate-id/crossgate/internal/federation"
	"github.com/crossgate-id/crossgate/internal/state"
)

// Controllers agrupa los controllers del dominio federation.
type Controllers struct {
	URL      *URLController
	ByEmail  *ByEmailController
	Exchange *ExchangeController
	Redeem   *RedeemController
}

// Deps son las dependencias compartidas por los controllers.
type Deps struct {
	Federation *fedsvc.Service
	Broker     *broker.Client
	States     *state.Store
}

// NewControllers crea el agregador.
func NewControllers(d Deps) *Controllers {
	return &Controllers{
		URL:      &URLController{deps: d},
		ByEmail:  &ByEmailController{deps: d},
		Exchange: &ExchangeController{deps: d},
		Redeem:   &RedeemController{deps: d},
	}
}
