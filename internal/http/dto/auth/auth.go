// Package auth contiene los DTOs de los endpoints de autenticación.
package auth

// LoginRequest es la solicitud de login por password.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType int    `json:"user_type"`
	Site     string `json:"site"`
}

// TokenResponse es la respuesta exitosa de login, refresh y exchange.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // segundos
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshRequest entrega el refresh token a consumir.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ExchangeRequest entrega un token del emisor externo de confianza.
type ExchangeRequest struct {
	Token string `json:"token"`
}

// LogoutRequest invalida el access token del header y, opcionalmente,
// el refresh token y la sesión federada en el broker.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
	BrokerUserID string `json:"broker_user_id,omitempty"`
}

// AuthorizeResponse es el veredicto de la validación de un access token.
type AuthorizeResponse struct {
	UniqueID string   `json:"unique_id"`
	Roles    []string `json:"roles"`
}
