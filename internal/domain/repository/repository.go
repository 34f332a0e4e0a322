package repository

import (
	"context"

	"github.com/crossgate-id/crossgate/internal/domain"
)

// IdentityRepository resuelve identidades y persiste la migración del hash
// canónico. Los mappings siempre vienen cargados junto con la identidad.
type IdentityRepository interface {
	// FindByUsername busca por username case-folded, con sus mappings.
	// Retorna ErrNotFound si no existe.
	FindByUsername(ctx context.Context, username string) (*domain.Identity, []domain.PlatformMapping, error)

	// FindByUniqueID resuelve el mapping puntual que nombra un unique id
	// canónico, junto con su identidad.
	FindByUniqueID(ctx context.Context, uid domain.UniqueID) (*domain.Identity, *domain.PlatformMapping, error)

	// FindByAccountID busca por account id de plataforma.
	FindByAccountID(ctx context.Context, platform string, accountID int64) (*domain.Identity, *domain.PlatformMapping, error)

	// SaveCanonicalHash persiste los campos del esquema canónico tras una
	// migración. Last-write-wins; seguro de reintentar.
	SaveCanonicalHash(ctx context.Context, identity *domain.Identity) error
}

// FederationRepository lee configuración de federaciones. Solo lectura.
type FederationRepository interface {
	// GetByName busca una federación por nombre. ErrNotFound si no existe.
	GetByName(ctx context.Context, name string) (*domain.Federation, error)

	// List retorna todas las federaciones activas.
	List(ctx context.Context) ([]domain.Federation, error)
}
