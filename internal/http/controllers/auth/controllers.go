// Package auth contiene los controllers de los endpoints de autenticación.
package auth

import (
	authsvc "github.com/crossgate-id/crossgate/internal/auth"
	"github.com/crossgate-id/crossgate/internal/broker"
	"github.com/crossgate-id/crossgate/internal/jwt"
)

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Login     *LoginController
	Refresh   *RefreshController
	Exchange  *ExchangeController
	Logout    *LogoutController
	Authorize *AuthorizeController
}

// Deps son las dependencias compartidas por los controllers.
type Deps struct {
	Auth   *authsvc.Service
	Issuer *jwt.Issuer

	// Broker es opcional: solo el logout federado lo usa.
	Broker *broker.Client

	// SecureCookies apaga el flag Secure en desarrollo local.
	SecureCookies bool
}

// NewControllers crea el agregador.
func NewControllers(d Deps) *Controllers {
	return &Controllers{
		Login:     &LoginController{deps: d},
		Refresh:   &RefreshController{deps: d},
		Exchange:  &ExchangeController{deps: d},
		Logout:    &LogoutController{deps: d},
		Authorize: &AuthorizeController{deps: d},
	}
}
