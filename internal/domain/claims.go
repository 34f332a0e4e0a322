package domain

import "time"

// TokenClaims es el claim set tipado de un token firmado. Se materializa
// una sola vez en el decode, nunca se persiste.
type TokenClaims struct {
	DisplayName string
	UniqueID    string
	UserType    UserType
	Roles       []string
	JTI         string
	IssuedAt    time.Time
	ExpiresAt   time.Time

	// FingerprintHash es el SHA-256 hex del seed entregado por canal aparte
	// (cookie). Vacío si el token no quedó ligado a un fingerprint.
	FingerprintHash string

	// Username y Site solo viajan en tokens de exchange, para que el
	// receptor re-resuelva la identidad sin password.
	Username string
	Site     string
}

// HasRole verifica pertenencia exacta en la lista de roles.
func (c *TokenClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// SSOState es el estado de correlación de un handshake SSO. Vale 30 minutos
// y se consume exactamente una vez (la lectura lo borra).
type SSOState struct {
	Key       string
	Payload   string
	CreatedAt time.Time
}

// SSOStateTTL es la ventana de validez del estado de correlación.
const SSOStateTTL = 30 * time.Minute
