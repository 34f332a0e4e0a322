// Package federation implementa el handshake OIDC con los partners: armado
// de la URL de autorización, estado de correlación y el exchange del
// authorization code por una identidad federada.
package federation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crossgate-id/crossgate/internal/domain"
	"github.com/crossgate-id/crossgate/internal/domain/repository"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
	"github.com/crossgate-id/crossgate/internal/security/rsacrypt"
	"github.com/crossgate-id/crossgate/internal/state"
)

var (
	// ErrProtocol cubre fallas del protocolo con el partner: respuesta no-200,
	// id_token ausente o sin claim de identidad utilizable.
	ErrProtocol = errors.New("federation: protocol error")
)

// Deps son las dependencias del servicio.
type Deps struct {
	Federations repository.FederationRepository
	States      *state.Store
	Secrets     *rsacrypt.Keyring
	HTTP        *http.Client
}

// Service implementa el broker de federación.
type Service struct {
	deps Deps
}

// NewService crea el servicio. HTTP nil usa un cliente con timeout de 15s.
func NewService(deps Deps) *Service {
	if deps.HTTP == nil {
		deps.HTTP = &http.Client{Timeout: 15 * time.Second}
	}
	return &Service{deps: deps}
}

// GetByName busca una federación por nombre.
func (s *Service) GetByName(ctx context.Context, name string) (*domain.Federation, error) {
	return s.deps.Federations.GetByName(ctx, name)
}

// GetByEmail rutea un email a su federación: primero la allowlist de
// usuarios de prueba de todas las federaciones, después los dominios.
func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.Federation, error) {
	feds, err := s.deps.Federations.List(ctx)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	for i := range feds {
		for _, tu := range feds[i].TestUsers {
			if strings.EqualFold(strings.TrimSpace(tu), email) {
				return &feds[i], nil
			}
		}
	}

	at := strings.LastIndex(email, "@")
	if at >= 0 {
		dom := email[at+1:]
		for i := range feds {
			for _, d := range feds[i].EmailDomains {
				if strings.EqualFold(strings.TrimSpace(d), dom) {
					return &feds[i], nil
				}
			}
		}
	}
	return nil, repository.ErrNotFound
}

// BuildAuthorizationURL arma la URL de redirección al partner con el estado
// de correlación ya almacenado.
func (s *Service) BuildAuthorizationURL(fed *domain.Federation, stateKey string) (string, error) {
	u, err := url.Parse(fed.AuthInitURL)
	if err != nil {
		return "", fmt.Errorf("federation: invalid auth init url: %w", err)
	}
	q := u.Query()
	q.Set("client_id", fed.ClientID)
	q.Set("response_type", "code")
	q.Set("state", stateKey)
	q.Set("scope", fed.EffectiveScope())
	q.Set("redirect_uri", fed.RedirectURL)
	if fed.IdpHint != "" {
		q.Set("kc_idp_hint", fed.IdpHint)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StoreCorrelation guarda el payload de correlación y retorna la key opaca.
func (s *Service) StoreCorrelation(ctx context.Context, payload string) (string, error) {
	return s.deps.States.StoreCorrelation(ctx, payload)
}

// ReadCorrelation lee (y consume) el estado de una key.
func (s *Service) ReadCorrelation(ctx context.Context, key string) (domain.SSOState, error) {
	st, err := s.deps.States.ReadCorrelation(ctx, key)
	if errors.Is(err, state.ErrNotFound) {
		logger.From(ctx).Warn("sso correlation state missing or stale",
			logger.Component("federation"),
			logger.Key(key),
		)
	}
	return st, err
}
