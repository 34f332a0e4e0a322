// identity.go — Implementación PostgreSQL de IdentityRepository.
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crossgate-id/crossgate/internal/domain"
	"github.com/crossgate-id/crossgate/internal/domain/repository"
	"github.com/crossgate-id/crossgate/internal/metrics"
)

type identityRepo struct {
	pool *pgxpool.Pool
}

// NewIdentityRepo crea el repositorio de identidades.
func NewIdentityRepo(pool *pgxpool.Pool) repository.IdentityRepository {
	return &identityRepo{pool: pool}
}

func observe(op string, start time.Time) {
	metrics.StoreOps.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

const identityCols = `
	id, username, first_name, last_name,
	strong_password_hash, strong_password_salt, password_set_at, password_good_until
`

const mappingCols = `
	id, identity_id, platform, instance, role, account_id, user_type,
	password_hash, password_salt, hash_method
`

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var i domain.Identity
	err := row.Scan(
		&i.ID, &i.Username, &i.FirstName, &i.LastName,
		&i.StrongPasswordHash, &i.StrongPasswordSalt, &i.PasswordSetAt, &i.PasswordGoodUntil,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *identityRepo) mappingsFor(ctx context.Context, identityID int64) ([]domain.PlatformMapping, error) {
	const query = `
		SELECT ` + mappingCols + `
		FROM platform_mappings WHERE identity_id = $1
		ORDER BY platform, instance, role
	`
	rows, err := r.pool.Query(ctx, query, identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PlatformMapping
	for rows.Next() {
		var m domain.PlatformMapping
		if err := rows.Scan(
			&m.ID, &m.IdentityID, &m.Platform, &m.Instance, &m.Role, &m.AccountID, &m.UserType,
			&m.PasswordHash, &m.PasswordSalt, &m.HashMethod,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *identityRepo) FindByUsername(ctx context.Context, username string) (*domain.Identity, []domain.PlatformMapping, error) {
	defer observe("identity.find_by_username", time.Now())

	const query = `SELECT ` + identityCols + ` FROM identities WHERE username = lower($1)`
	ident, err := scanIdentity(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, nil, err
	}
	mappings, err := r.mappingsFor(ctx, ident.ID)
	if err != nil {
		return nil, nil, err
	}
	return ident, mappings, nil
}

func (r *identityRepo) FindByUniqueID(ctx context.Context, uid domain.UniqueID) (*domain.Identity, *domain.PlatformMapping, error) {
	defer observe("identity.find_by_unique_id", time.Now())

	const query = `
		SELECT ` + mappingCols + `
		FROM platform_mappings
		WHERE platform = $1 AND instance = $2 AND role = $3 AND account_id = $4
	`
	var m domain.PlatformMapping
	err := r.pool.QueryRow(ctx, query, uid.Platform, uid.Instance, uid.Role, uid.AccountID).Scan(
		&m.ID, &m.IdentityID, &m.Platform, &m.Instance, &m.Role, &m.AccountID, &m.UserType,
		&m.PasswordHash, &m.PasswordSalt, &m.HashMethod,
	)
	if err == pgx.ErrNoRows {
		return nil, nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	const identQuery = `SELECT ` + identityCols + ` FROM identities WHERE id = $1`
	ident, err := scanIdentity(r.pool.QueryRow(ctx, identQuery, m.IdentityID))
	if err != nil {
		return nil, nil, err
	}
	return ident, &m, nil
}

func (r *identityRepo) FindByAccountID(ctx context.Context, platform string, accountID int64) (*domain.Identity, *domain.PlatformMapping, error) {
	defer observe("identity.find_by_account_id", time.Now())

	const query = `
		SELECT ` + mappingCols + `
		FROM platform_mappings
		WHERE platform = $1 AND account_id = $2
		LIMIT 1
	`
	var m domain.PlatformMapping
	err := r.pool.QueryRow(ctx, query, platform, accountID).Scan(
		&m.ID, &m.IdentityID, &m.Platform, &m.Instance, &m.Role, &m.AccountID, &m.UserType,
		&m.PasswordHash, &m.PasswordSalt, &m.HashMethod,
	)
	if err == pgx.ErrNoRows {
		return nil, nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	const identQuery = `SELECT ` + identityCols + ` FROM identities WHERE id = $1`
	ident, err := scanIdentity(r.pool.QueryRow(ctx, identQuery, m.IdentityID))
	if err != nil {
		return nil, nil, err
	}
	return ident, &m, nil
}

func (r *identityRepo) SaveCanonicalHash(ctx context.Context, identity *domain.Identity) error {
	defer observe("identity.save_canonical_hash", time.Now())

	// Last-write-wins: reintentar una migración es seguro.
	const query = `
		UPDATE identities
		SET strong_password_hash = $2,
		    strong_password_salt = $3,
		    password_set_at = $4,
		    password_good_until = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		identity.ID,
		identity.StrongPasswordHash,
		identity.StrongPasswordSalt,
		identity.PasswordSetAt,
		identity.PasswordGoodUntil,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	metrics.Migrations.Inc()
	return nil
}
