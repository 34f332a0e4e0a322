// Package repository define los contratos de acceso a datos del dominio.
// Las implementaciones viven en internal/store.
package repository

import "errors"

var (
	// ErrNotFound indica que la entidad no existe.
	ErrNotFound = errors.New("repository: not found")

	// ErrConflict indica violación de unicidad.
	ErrConflict = errors.New("repository: conflict")
)
