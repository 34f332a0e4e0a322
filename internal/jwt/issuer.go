// Package jwt emite y decodifica los tres tipos de token del servicio
// (access, refresh, exchange) con HS256. El decode confía en dos pares
// issuer/audience: el propio del servicio y el secundario de exchange, cada
// uno con su clave simétrica.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/crossgate-id/crossgate/internal/domain"
	tokens "github.com/crossgate-id/crossgate/internal/security/token"
)

// Kind es el tipo de token a emitir.
type Kind string

const (
	KindAccess   Kind = "access"
	KindRefresh  Kind = "refresh"
	KindExchange Kind = "exchange"
)

// ErrTokenInvalid cubre toda falla de decode: firma, issuer, audience o
// expiración. Un solo error hacia afuera, sin confianza parcial.
var ErrTokenInvalid = errors.New("jwt: invalid token")

// TrustedPair es un par issuer/audience con su clave de firma.
type TrustedPair struct {
	Issuer   string
	Audience string
	Secret   []byte
}

// Config del emisor: el par propio, el par de exchange y los TTL por tipo.
type Config struct {
	Own      TrustedPair
	Exchange TrustedPair

	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	ExchangeTTL time.Duration
}

// Subject es la identidad resuelta que se vuelca en los claims.
type Subject struct {
	DisplayName string
	UniqueID    string
	UserType    domain.UserType
	Roles       []string
}

// Issuer firma y decodifica tokens.
type Issuer struct {
	cfg Config
	now func() time.Time
}

// NewIssuer crea un Issuer. now es inyectable para tests; nil usa time.Now.
func NewIssuer(cfg Config, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{cfg: cfg, now: now}
}

// TTL retorna la ventana de validez configurada para un tipo de token.
func (i *Issuer) TTL(kind Kind) time.Duration {
	switch kind {
	case KindRefresh:
		return i.cfg.RefreshTTL
	case KindExchange:
		return i.cfg.ExchangeTTL
	default:
		return i.cfg.AccessTTL
	}
}

// Issue firma un token del tipo pedido bajo el issuer propio. Si hay
// fingerprintSeed, su SHA-256 hex queda ligado en el claim fgp.
func (i *Issuer) Issue(sub Subject, kind Kind, fingerprintSeed string) (string, domain.TokenClaims, error) {
	now := i.now().UTC()
	exp := now.Add(i.TTL(kind))
	jti := uuid.NewString()

	claims := jwtv5.MapClaims{
		"iss":       i.cfg.Own.Issuer,
		"aud":       i.cfg.Own.Audience,
		"sub":       sub.DisplayName,
		"jti":       jti,
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
		"id":        sub.UniqueID,
		"user_type": int(sub.UserType),
		"rol":       sub.Roles,
	}

	tc := domain.TokenClaims{
		DisplayName: sub.DisplayName,
		UniqueID:    sub.UniqueID,
		UserType:    sub.UserType,
		Roles:       sub.Roles,
		JTI:         jti,
		IssuedAt:    now,
		ExpiresAt:   exp,
	}

	if fingerprintSeed != "" {
		fgp := tokens.SHA256Hex(fingerprintSeed)
		claims["fgp"] = fgp
		tc.FingerprintHash = fgp
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(i.cfg.Own.Secret)
	if err != nil {
		return "", domain.TokenClaims{}, fmt.Errorf("jwt: sign failed: %w", err)
	}
	return signed, tc, nil
}

// Decode valida firma, issuer, audience y expiración, y materializa el claim
// set tipado. Acepta tokens del par propio o del par de exchange.
func (i *Issuer) Decode(tokenString string) (domain.TokenClaims, error) {
	var pair *TrustedPair

	parsed, err := jwtv5.Parse(tokenString, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		iss, _ := t.Claims.GetIssuer()
		switch iss {
		case i.cfg.Own.Issuer:
			pair = &i.cfg.Own
		case i.cfg.Exchange.Issuer:
			pair = &i.cfg.Exchange
		default:
			return nil, fmt.Errorf("unknown issuer %q", iss)
		}
		return pair.Secret, nil
	}, jwtv5.WithExpirationRequired(), jwtv5.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid || pair == nil {
		return domain.TokenClaims{}, ErrTokenInvalid
	}

	mc, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return domain.TokenClaims{}, ErrTokenInvalid
	}

	// El audience debe ser el del par que firmó; sin mezclas.
	aud, _ := mc.GetAudience()
	if !containsAudience(aud, pair.Audience) {
		return domain.TokenClaims{}, ErrTokenInvalid
	}

	return claimsFromMap(mc)
}

// IsExchange indica si el claim set proviene del par de exchange (por su
// issuer el token habría fallado de no ser uno de los dos confiables).
func (i *Issuer) IsExchange(tokenString string) bool {
	parser := jwtv5.NewParser()
	tok, _, err := parser.ParseUnverified(tokenString, jwtv5.MapClaims{})
	if err != nil {
		return false
	}
	iss, _ := tok.Claims.GetIssuer()
	return iss == i.cfg.Exchange.Issuer
}

func containsAudience(aud jwtv5.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func claimsFromMap(mc jwtv5.MapClaims) (domain.TokenClaims, error) {
	tc := domain.TokenClaims{}

	if v, ok := mc["sub"].(string); ok {
		tc.DisplayName = v
	}
	if v, ok := mc["jti"].(string); ok {
		tc.JTI = v
	}
	if tc.JTI == "" {
		return domain.TokenClaims{}, ErrTokenInvalid
	}
	if v, ok := mc["id"].(string); ok {
		tc.UniqueID = v
	}
	if v, ok := mc["user_type"].(float64); ok {
		tc.UserType = domain.UserType(int(v))
	}
	if v, ok := mc["fgp"].(string); ok {
		tc.FingerprintHash = v
	}
	if v, ok := mc["username"].(string); ok {
		tc.Username = v
	}
	if v, ok := mc["site"].(string); ok {
		tc.Site = v
	}

	switch rol := mc["rol"].(type) {
	case []any:
		for _, r := range rol {
			if s, ok := r.(string); ok {
				tc.Roles = append(tc.Roles, s)
			}
		}
	case string:
		tc.Roles = []string{rol}
	}

	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		tc.IssuedAt = iat.Time
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.TokenClaims{}, ErrTokenInvalid
	}
	tc.ExpiresAt = exp.Time

	return tc, nil
}
