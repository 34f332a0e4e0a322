// Package passwd implementa los esquemas históricos de hashing de passwords
// y el esquema canónico al que se migran. Las construcciones son compatibilidad
// bit a bit con los sistemas de origen: no se modernizan ni se "corrigen".
package passwd

import (
	"strings"

	"github.com/crossgate-id/crossgate/internal/domain"
)

// Scheme identifica una construcción de hashing concreta. Se resuelve una
// sola vez por mapping, nunca por comparación de strings en el camino de
// verificación.
type Scheme int

const (
	// SchemeNone: el mapping no tiene salt almacenado; la verificación falla.
	SchemeNone Scheme = iota

	// SchemeSHA1Hex: hex(SHA1(salt+password)) sobre UTF-8, comparación
	// case-insensitive. Cuentas epic/catalyst con método "SHA1".
	SchemeSHA1Hex

	// SchemeSHA1UTF16: base64(SHA1(UTF16LE(password) ∥ base64(salt))).
	// Solo la población admin legacy de pac.
	SchemeSHA1UTF16

	// SchemeSHA256UTF16: base64(SHA256(UTF16LE(password) ∥ salt)), sin
	// iteración. Resto de pac y todo mapping con salt y método distinto.
	SchemeSHA256UTF16
)

func (s Scheme) String() string {
	switch s {
	case SchemeSHA1Hex:
		return "sha1-hex"
	case SchemeSHA1UTF16:
		return "sha1-utf16"
	case SchemeSHA256UTF16:
		return "sha256-utf16"
	default:
		return "none"
	}
}

// Resolve decide el esquema legacy de un mapping según plataforma, rol y
// método almacenado.
func Resolve(m *domain.PlatformMapping) Scheme {
	method := strings.ToUpper(strings.TrimSpace(m.HashMethod))

	if method == "SHA1" && (m.Platform == domain.PlatformEpic || m.Platform == domain.PlatformCatalyst) {
		return SchemeSHA1Hex
	}
	if method == "SHA256" && m.Platform == domain.PlatformPac {
		if m.Role == domain.RoleAdmin {
			return SchemeSHA1UTF16
		}
		return SchemeSHA256UTF16
	}
	if m.PasswordSalt != "" {
		return SchemeSHA256UTF16
	}
	return SchemeNone
}

// VerifyLegacy compara un password contra el hash legacy de un mapping,
// usando el esquema resuelto.
func VerifyLegacy(scheme Scheme, password string, m *domain.PlatformMapping) bool {
	switch scheme {
	case SchemeSHA1Hex:
		return verifySHA1Hex(password, m.PasswordSalt, m.PasswordHash)
	case SchemeSHA1UTF16:
		return verifySHA1UTF16(password, m.PasswordSalt, m.PasswordHash)
	case SchemeSHA256UTF16:
		return verifySHA256UTF16(password, m.PasswordSalt, m.PasswordHash)
	default:
		return false
	}
}
