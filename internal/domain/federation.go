package domain

import "strings"

// Métodos de autenticación del token endpoint del partner.
const (
	AuthMethodClientSecretPost  = "client_secret_post"
	AuthMethodClientSecretBasic = "client_secret_basic"

	// DefaultScope es el scope OIDC que se pide si la federación no define uno.
	DefaultScope = "openid"
)

// Federation es la configuración por partner para el handshake OIDC.
// De solo lectura para este servicio.
type Federation struct {
	ID     int64
	Name   string
	SiteID string

	ClientID        string
	EncryptedSecret string // RSA, provisto out-of-band; puede traer CRLF incidental

	AuthInitURL string
	TokenURL    string
	RedirectURL string
	IdpHint     string // opcional, se propaga como kc_idp_hint
	Scope       string
	AuthMethod  string // client_secret_post (default) | client_secret_basic

	// Ruteo por email: allowlist explícita primero, después dominios.
	TestUsers    []string
	EmailDomains []string
}

// EffectiveScope retorna el scope configurado o el default OIDC.
func (f *Federation) EffectiveScope() string {
	if f.Scope == "" {
		return DefaultScope
	}
	return f.Scope
}

// EffectiveAuthMethod retorna el método configurado o client_secret_post.
func (f *Federation) EffectiveAuthMethod() string {
	if f.AuthMethod == "" {
		return AuthMethodClientSecretPost
	}
	return f.AuthMethod
}

// MatchesEmail decide si un email pertenece a esta federación: primero la
// allowlist de usuarios de prueba, después la lista de dominios.
func (f *Federation) MatchesEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, tu := range f.TestUsers {
		if strings.EqualFold(strings.TrimSpace(tu), email) {
			return true
		}
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	dom := email[at+1:]
	for _, d := range f.EmailDomains {
		if strings.EqualFold(strings.TrimSpace(d), dom) {
			return true
		}
	}
	return false
}
