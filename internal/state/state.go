// Package state maneja el estado efímero del handshake SSO sobre el cache:
// estado de correlación (30 minutos, lectura destructiva) y function codes
// de un solo uso.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crossgate-id/crossgate/internal/cache"
	"github.com/crossgate-id/crossgate/internal/domain"
	tokens "github.com/crossgate-id/crossgate/internal/security/token"
)

const (
	ssoKeyFmt  = "ssoState_%s"
	codeKeyFmt = "functionCode_%s"

	// functionCodeTTL es la vida de un function code.
	functionCodeTTL = 5 * time.Minute
)

// ErrNotFound cubre estado inexistente, ya consumido o vencido.
var ErrNotFound = fmt.Errorf("state: not found or expired")

// Store opera el estado efímero. now es inyectable para tests.
type Store struct {
	Cache cache.Client
	Now   func() time.Time
}

// NewStore crea un Store sobre el cliente de cache dado.
func NewStore(c cache.Client) *Store {
	return &Store{Cache: c, Now: time.Now}
}

type ssoEnvelope struct {
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreCorrelation guarda un payload de correlación bajo una key opaca nueva
// y la retorna. La entrada vive domain.SSOStateTTL.
func (s *Store) StoreCorrelation(ctx context.Context, payload string) (string, error) {
	key, err := tokens.GenerateOpaqueToken(24)
	if err != nil {
		return "", fmt.Errorf("state: key generation failed: %w", err)
	}
	env := ssoEnvelope{Payload: payload, CreatedAt: s.Now().UTC()}
	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("state: marshal failed: %w", err)
	}
	if err := s.Cache.Set(ctx, fmt.Sprintf(ssoKeyFmt, key), string(raw), domain.SSOStateTTL); err != nil {
		return "", err
	}
	return key, nil
}

// ReadCorrelation lee y borra el estado de una key. Rechaza payloads con más
// de 30 minutos aunque el cache todavía los tenga. Una segunda lectura de la
// misma key retorna ErrNotFound.
func (s *Store) ReadCorrelation(ctx context.Context, key string) (domain.SSOState, error) {
	cacheKey := fmt.Sprintf(ssoKeyFmt, key)
	raw, err := s.Cache.Get(ctx, cacheKey)
	if cache.IsNotFound(err) {
		return domain.SSOState{}, ErrNotFound
	}
	if err != nil {
		return domain.SSOState{}, err
	}

	// Lectura destructiva: se borra antes de validar la edad.
	if err := s.Cache.Delete(ctx, cacheKey); err != nil {
		return domain.SSOState{}, err
	}

	var env ssoEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return domain.SSOState{}, ErrNotFound
	}
	if s.Now().UTC().Sub(env.CreatedAt) > domain.SSOStateTTL {
		return domain.SSOState{}, ErrNotFound
	}
	return domain.SSOState{Key: key, Payload: env.Payload, CreatedAt: env.CreatedAt}, nil
}

// IssueFunctionCode emite un código opaco de corta vida asociado a un valor.
func (s *Store) IssueFunctionCode(ctx context.Context, value string) (string, error) {
	code, err := tokens.GenerateOpaqueToken(16)
	if err != nil {
		return "", fmt.Errorf("state: code generation failed: %w", err)
	}
	if err := s.Cache.Set(ctx, fmt.Sprintf(codeKeyFmt, code), value, functionCodeTTL); err != nil {
		return "", err
	}
	return code, nil
}

// ConsumeFunctionCode lee y borra un function code. ErrNotFound si no existe.
func (s *Store) ConsumeFunctionCode(ctx context.Context, code string) (string, error) {
	key := fmt.Sprintf(codeKeyFmt, code)
	val, err := s.Cache.Get(ctx, key)
	if cache.IsNotFound(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if err := s.Cache.Delete(ctx, key); err != nil {
		return "", err
	}
	return val, nil
}
