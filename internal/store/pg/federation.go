// federation.go — Implementación PostgreSQL de FederationRepository.
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crossgate-id/crossgate/internal/domain"
	"github.com/crossgate-id/crossgate/internal/domain/repository"
)

type federationRepo struct {
	pool *pgxpool.Pool
}

// NewFederationRepo crea el repositorio de federaciones.
func NewFederationRepo(pool *pgxpool.Pool) repository.FederationRepository {
	return &federationRepo{pool: pool}
}

const federationCols = `
	id, name, site_id, client_id, encrypted_secret,
	auth_init_url, token_url, redirect_url, idp_hint, scope, auth_method,
	test_users, email_domains
`

func scanFederation(row pgx.Row) (*domain.Federation, error) {
	var f domain.Federation
	err := row.Scan(
		&f.ID, &f.Name, &f.SiteID, &f.ClientID, &f.EncryptedSecret,
		&f.AuthInitURL, &f.TokenURL, &f.RedirectURL, &f.IdpHint, &f.Scope, &f.AuthMethod,
		&f.TestUsers, &f.EmailDomains,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *federationRepo) GetByName(ctx context.Context, name string) (*domain.Federation, error) {
	defer observe("federation.get_by_name", time.Now())

	const query = `SELECT ` + federationCols + ` FROM federations WHERE name = $1 AND enabled`
	return scanFederation(r.pool.QueryRow(ctx, query, name))
}

func (r *federationRepo) List(ctx context.Context) ([]domain.Federation, error) {
	defer observe("federation.list", time.Now())

	const query = `SELECT ` + federationCols + ` FROM federations WHERE enabled ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Federation
	for rows.Next() {
		f, err := scanFederation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}
