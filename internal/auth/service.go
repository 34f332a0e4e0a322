// Package auth orquesta los flujos de autenticación: login, refresh,
// exchange, authorize e invalidación. No contiene criptografía propia;
// coordina verificador, emisor de tokens y listas de revocación.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/crossgate-id/crossgate/internal/audit"
	"github.com/crossgate-id/crossgate/internal/domain"
	"github.com/crossgate-id/crossgate/internal/events"
	"github.com/crossgate-id/crossgate/internal/identity"
	"github.com/crossgate-id/crossgate/internal/jwt"
	"github.com/crossgate-id/crossgate/internal/metrics"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
	"github.com/crossgate-id/crossgate/internal/revocation"
	tokens "github.com/crossgate-id/crossgate/internal/security/token"
)

var (
	// ErrAuthenticationFailed cubre credenciales malas e identidad
	// irresoluble. Hacia afuera siempre es el mismo unauthorized genérico.
	ErrAuthenticationFailed = errors.New("auth: authentication failed")

	// ErrUnauthorized cubre firma válida con claims que no pasan: fingerprint
	// que no coincide, jti revocado, refresh ya consumido.
	ErrUnauthorized = errors.New("auth: unauthorized")
)

// Verifier es lo que el orquestador necesita del verificador de credenciales.
type Verifier interface {
	FindMatches(ctx context.Context, username, password string, userType domain.UserType, site domain.SiteType) (identity.Result, error)
	ResolveUniqueID(ctx context.Context, uid domain.UniqueID) (*domain.Identity, *domain.PlatformMapping, error)
}

// Deps son las dependencias del servicio.
type Deps struct {
	Verifier    Verifier
	Issuer      *jwt.Issuer
	Revocations *revocation.Store
	Events      events.Notifier
	Now         func() time.Time
}

// Service implementa el orquestador.
type Service struct {
	deps Deps
}

// NewService crea el servicio. Events nil no notifica; Now nil usa time.Now.
func NewService(deps Deps) *Service {
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// LoginRequest es la entrada del flujo de login.
type LoginRequest struct {
	Username string
	Password string
	UserType domain.UserType
	Site     domain.SiteType

	// FingerprintSeed liga el access token a un secreto de canal aparte.
	FingerprintSeed string

	// WithRefresh pide además un refresh token.
	WithRefresh bool
}

// TokenPair es el resultado de login y exchange.
type TokenPair struct {
	AccessToken   string
	AccessClaims  domain.TokenClaims
	RefreshToken  string
	RefreshClaims domain.TokenClaims
}

// Login verifica credenciales y emite tokens. El refresh jti queda registrado
// en la allowlist por su validez completa.
func (s *Service) Login(ctx context.Context, req LoginRequest) (TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Login"),
	)

	// Paso 1: verificar credenciales.
	res, err := s.deps.Verifier.FindMatches(ctx, req.Username, req.Password, req.UserType, req.Site)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.OutcomeError).Inc()
		return TokenPair{}, err
	}
	if len(res.Good) == 0 {
		// Internamente distinguimos "no existe" de "password malo" solo para
		// el log; el caller recibe siempre lo mismo.
		metrics.Logins.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		s.deps.Events.LoginFailed(ctx, req.Username)
		audit.Log(ctx, audit.EventLoginFailed,
			logger.Username(req.Username),
			logger.Count(len(res.Bad)),
		)
		return TokenPair{}, ErrAuthenticationFailed
	}

	// Paso 2: armar el subject con el primer match bueno.
	match := res.Good[0]
	sub := subjectFor(res.Identity, &match.Mapping)

	// Paso 3: emitir tokens.
	pair, err := s.issuePair(ctx, sub, req.FingerprintSeed, req.WithRefresh)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.OutcomeError).Inc()
		return TokenPair{}, err
	}

	metrics.Logins.WithLabelValues(metrics.OutcomeOK).Inc()
	s.deps.Events.LoginSucceeded(ctx, req.Username, sub.UniqueID)
	audit.Log(ctx, audit.EventLoginOK,
		logger.Username(req.Username),
		logger.UniqueID(sub.UniqueID),
		logger.JTI(pair.AccessClaims.JTI),
	)
	log.Info("login ok", logger.UniqueID(sub.UniqueID))
	return pair, nil
}

// ExchangeToken acepta un token del emisor de exchange y re-emite un par
// propio sin password, re-resolviendo la identidad por los claims.
func (s *Service) ExchangeToken(ctx context.Context, exchangeToken, fingerprintSeed string) (TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("ExchangeToken"),
	)

	// Paso 1: solo se aceptan tokens del par de exchange.
	if !s.deps.Issuer.IsExchange(exchangeToken) {
		return TokenPair{}, jwt.ErrTokenInvalid
	}
	claims, err := s.deps.Issuer.Decode(exchangeToken)
	if err != nil {
		return TokenPair{}, err
	}

	// Paso 2: re-resolver identidad con los claims, sin password.
	username := claims.Username
	if username == "" {
		username = claims.DisplayName
	}
	res, err := s.deps.Verifier.FindMatches(ctx, username, "", claims.UserType, domain.ParseSite(claims.Site))
	if err != nil {
		return TokenPair{}, err
	}
	if len(res.Good) == 0 {
		log.Warn("exchange token names an unresolvable identity", logger.Username(username))
		return TokenPair{}, ErrAuthenticationFailed
	}

	// Paso 3: emitir un par fresco igual que el login.
	match := res.Good[0]
	sub := subjectFor(res.Identity, &match.Mapping)
	pair, err := s.issuePair(ctx, sub, fingerprintSeed, true)
	if err != nil {
		return TokenPair{}, err
	}

	audit.Log(ctx, audit.EventSSOExchange,
		logger.Username(username),
		logger.UniqueID(sub.UniqueID),
	)
	return pair, nil
}

// LoginFromRefresh consume un refresh token (a lo sumo una vez) y emite un
// access token nuevo. No se re-emite refresh.
func (s *Service) LoginFromRefresh(ctx context.Context, refreshToken, fingerprintSeed string) (string, domain.TokenClaims, error) {
	// Paso 1: decode con validación completa.
	claims, err := s.deps.Issuer.Decode(refreshToken)
	if err != nil {
		metrics.Refreshes.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		return "", domain.TokenClaims{}, err
	}

	// Paso 2: consumo single-use del jti. Falla cerrado.
	ok, err := s.deps.Revocations.AllowlistConsume(ctx, claims.JTI)
	if err != nil {
		metrics.Refreshes.WithLabelValues(metrics.OutcomeError).Inc()
		return "", domain.TokenClaims{}, err
	}
	if !ok {
		metrics.Refreshes.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		return "", domain.TokenClaims{}, ErrUnauthorized
	}

	// Paso 3: re-resolver el mapping que nombra el unique id.
	uid, err := domain.ParseUniqueID(claims.UniqueID)
	if err != nil {
		metrics.Refreshes.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		return "", domain.TokenClaims{}, ErrUnauthorized
	}
	ident, mapping, err := s.deps.Verifier.ResolveUniqueID(ctx, uid)
	if err != nil {
		metrics.Refreshes.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		return "", domain.TokenClaims{}, ErrUnauthorized
	}

	// Paso 4: access nuevo; el refresh consumido no se reemplaza.
	sub := subjectFor(ident, mapping)
	access, accessClaims, err := s.deps.Issuer.Issue(sub, jwt.KindAccess, fingerprintSeed)
	if err != nil {
		metrics.Refreshes.WithLabelValues(metrics.OutcomeError).Inc()
		return "", domain.TokenClaims{}, err
	}

	metrics.Refreshes.WithLabelValues(metrics.OutcomeOK).Inc()
	audit.Log(ctx, audit.EventTokenRefresh,
		logger.UniqueID(sub.UniqueID),
		logger.JTI(accessClaims.JTI),
	)
	return access, accessClaims, nil
}

// Authorize valida un claim set ya decodificado contra el fingerprint de
// canal aparte y la denylist. Retorna unique id y roles.
func (s *Service) Authorize(ctx context.Context, claims domain.TokenClaims, fingerprintSeed string) (string, []string, error) {
	// Paso 1: comparación real del fingerprint. Si el token quedó ligado a
	// un seed, el valor del canal aparte tiene que hashear a lo mismo.
	if claims.FingerprintHash != "" {
		if fingerprintSeed == "" || tokens.SHA256Hex(fingerprintSeed) != claims.FingerprintHash {
			return "", nil, ErrUnauthorized
		}
	}

	// Paso 2: el jti no puede estar en la denylist.
	denied, err := s.deps.Revocations.IsDenylisted(ctx, claims.JTI)
	if err != nil {
		return "", nil, err
	}
	if denied {
		return "", nil, ErrUnauthorized
	}

	return claims.UniqueID, claims.Roles, nil
}

// Invalidate deja el access jti en la denylist por lo que le queda de vida y
// borra la entrada de allowlist del refresh si se entrega uno.
func (s *Service) Invalidate(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := s.deps.Issuer.Decode(accessToken)
	if err != nil {
		return err
	}

	remaining := claims.ExpiresAt.Sub(s.deps.Now().UTC())
	if err := s.deps.Revocations.Denylist(ctx, claims.JTI, remaining); err != nil {
		return err
	}
	audit.Log(ctx, audit.EventTokenRevoked, logger.JTI(claims.JTI))

	if refreshToken != "" {
		rc, err := s.deps.Issuer.Decode(refreshToken)
		if err != nil {
			// El refresh puede venir vencido en el logout; no hay nada que
			// borrar que el TTL no borre solo.
			return nil
		}
		return s.deps.Revocations.AllowlistDrop(ctx, rc.JTI)
	}
	return nil
}

// issuePair emite access (+ refresh opcional) y registra el refresh jti.
func (s *Service) issuePair(ctx context.Context, sub jwt.Subject, fingerprintSeed string, withRefresh bool) (TokenPair, error) {
	access, accessClaims, err := s.deps.Issuer.Issue(sub, jwt.KindAccess, fingerprintSeed)
	if err != nil {
		return TokenPair{}, err
	}
	pair := TokenPair{AccessToken: access, AccessClaims: accessClaims}

	if withRefresh {
		refresh, refreshClaims, err := s.deps.Issuer.Issue(sub, jwt.KindRefresh, "")
		if err != nil {
			return TokenPair{}, err
		}
		if err := s.deps.Revocations.AllowlistAdd(ctx, refreshClaims.JTI, s.deps.Issuer.TTL(jwt.KindRefresh)); err != nil {
			return TokenPair{}, err
		}
		pair.RefreshToken = refresh
		pair.RefreshClaims = refreshClaims
	}
	return pair, nil
}

func subjectFor(ident *domain.Identity, m *domain.PlatformMapping) jwt.Subject {
	return jwt.Subject{
		DisplayName: ident.DisplayName(),
		UniqueID:    m.UniqueID().String(),
		UserType:    m.UserType,
		Roles:       []string{m.Role},
	}
}
