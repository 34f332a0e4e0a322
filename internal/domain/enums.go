// Package domain contiene los tipos centrales del modelo: identidades,
// mappings de plataforma, federaciones y claims de token.
package domain

import "strings"

// UserType codifica el tipo de usuario histórico. Los valores numéricos
// viajan en el claim user_type y no pueden cambiar.
type UserType int

const (
	UserTypeAny            UserType = 0
	UserTypeEpicAdmin      UserType = 1
	UserTypeEpicLearner    UserType = 2
	UserTypePacAdmin       UserType = 3
	UserTypePacLearner     UserType = 4
	UserTypeXyzFacilitator UserType = 5
	UserTypeLpiFacilitator UserType = 7
	UserTypeLpiLearner     UserType = 8
)

// SiteType identifica el sitio de origen de un request de autenticación.
type SiteType string

const (
	SiteAny            SiteType = "any"
	SiteCatalyst       SiteType = "catalyst"
	SiteEpic           SiteType = "epic"
	SiteLPI            SiteType = "lpi"
	SiteWLS            SiteType = "wls"
	SiteLPISelfStudent SiteType = "lpiselfstudent"
	SiteCK             SiteType = "ck"
	SiteWiley          SiteType = "wiley"
)

// ParseSite normaliza un sitio recibido por request. Vacío equivale a Any.
func ParseSite(s string) SiteType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SiteAny
	}
	return SiteType(s)
}

// Plataformas y roles conocidos.
const (
	PlatformEpic     = "epic"
	PlatformCatalyst = "catalyst"
	PlatformPac      = "pac"
	PlatformLPI      = "lpi"

	RoleLearner     = "learner"
	RoleFacilitator = "facilitator"
	RoleAdmin       = "admin"
)
