// Package cache provee el cliente de cache compartido con soporte multi-backend.
//
// Soporta:
//   - Memory (in-process, para desarrollo/testing)
//   - Redis (distribuido, para producción)
//
// Sobre este cliente se montan las listas de revocación de tokens, el estado
// de correlación SSO y los function codes. No hay lógica de negocio acá.
package cache

import (
	"context"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor con TTL. Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key.
	Delete(ctx context.Context, key string) error

	// Exists verifica si una key existe.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close() error
}

// Config configuración para crear un cliente de cache.
type Config struct {
	// Addr es la dirección de Redis ("host:puerto"). Vacío selecciona memory.
	Addr     string
	Password string
	DB       int

	// Prefix se antepone a todas las keys.
	Prefix string
}

var (
	// ErrNotFound indica que la key no existe o expiró.
	ErrNotFound = errNotFound{}
)

type errNotFound struct{}

func (e errNotFound) Error() string { return "cache: key not found" }

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	_, ok := err.(errNotFound)
	return ok
}

// New crea un cliente según la configuración: Redis si hay Addr, memory si no.
func New(cfg Config) (Client, error) {
	if cfg.Addr != "" {
		return NewRedis(cfg)
	}
	return NewMemory(cfg.Prefix), nil
}
