// Package revocation implementa las listas de revocación de tokens sobre el
// cache compartido: denylist de access tokens invalidados y allowlist de
// refresh tokens de un solo uso.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/crossgate-id/crossgate/internal/cache"
)

// Formatos de key en el cache. Compartidos con los sistemas que ya escriben
// estas entradas: no cambiar.
const (
	denyKeyFmt  = "accessToken_invalidated_%s"
	allowKeyFmt = "refreshToken_%s"
)

// Store opera las dos listas. Sin estado propio; todo vive en el cache.
type Store struct {
	Cache cache.Client
}

// NewStore crea un Store sobre el cliente de cache dado.
func NewStore(c cache.Client) *Store {
	return &Store{Cache: c}
}

// Denylist marca un access jti como invalidado por lo que le queda de vida.
// Write-once: la entrada expira sola junto con el token.
func (s *Store) Denylist(ctx context.Context, jti string, remaining time.Duration) error {
	if remaining <= 0 {
		// El token ya expiró; no hay nada que bloquear.
		return nil
	}
	return s.Cache.Set(ctx, fmt.Sprintf(denyKeyFmt, jti), "1", remaining)
}

// IsDenylisted verifica si un access jti fue invalidado.
func (s *Store) IsDenylisted(ctx context.Context, jti string) (bool, error) {
	return s.Cache.Exists(ctx, fmt.Sprintf(denyKeyFmt, jti))
}

// AllowlistAdd registra un refresh jti emitido, con TTL igual a su validez.
func (s *Store) AllowlistAdd(ctx context.Context, jti string, ttl time.Duration) error {
	return s.Cache.Set(ctx, fmt.Sprintf(allowKeyFmt, jti), "1", ttl)
}

// AllowlistConsume verifica y borra la entrada de un refresh jti. Retorna
// true solo si existía: un refresh token se usa a lo sumo una vez. El cache
// no ofrece check-and-delete atómico; la ventana entre Exists y Delete es un
// riesgo aceptado y acotado por TTL.
func (s *Store) AllowlistConsume(ctx context.Context, jti string) (bool, error) {
	key := fmt.Sprintf(allowKeyFmt, jti)
	ok, err := s.Cache.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := s.Cache.Delete(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}

// AllowlistDrop borra la entrada sin exigir que exista (logout).
func (s *Store) AllowlistDrop(ctx context.Context, jti string) error {
	return s.Cache.Delete(ctx, fmt.Sprintf(allowKeyFmt, jti))
}
