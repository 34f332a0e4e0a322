// Package identity resuelve usernames a identidades y verifica passwords
// contra el esquema histórico o canónico que corresponda, migrando hashes
// legacy de forma oportunista.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crossgate-id/crossgate/internal/domain"
	"github.com/crossgate-id/crossgate/internal/domain/repository"
	"github.com/crossgate-id/crossgate/internal/events"
	"github.com/crossgate-id/crossgate/internal/observability/logger"
	"github.com/crossgate-id/crossgate/internal/security/passwd"
)

// Match es un mapping candidato con el resultado de su verificación.
type Match struct {
	Mapping domain.PlatformMapping
}

// Result agrupa el resultado de FindMatches. Good y Bad distinguen
// internamente "password incorrecto" de "no existe" para auditoría; hacia
// afuera ambos terminan en el mismo unauthorized genérico.
type Result struct {
	Good     []Match
	Bad      []Match
	Identity *domain.Identity
}

// Deps son las dependencias del Verifier.
type Deps struct {
	Identities repository.IdentityRepository
	Events     events.Notifier
	Now        func() time.Time
}

// Verifier implementa la verificación de credenciales multi-esquema.
type Verifier struct {
	deps Deps
}

// NewVerifier crea un Verifier. Now nil usa time.Now; Events nil no notifica.
func NewVerifier(deps Deps) *Verifier {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}
	return &Verifier{deps: deps}
}

// FindMatches resuelve un username y verifica el password (si hay) contra
// cada mapping candidato. Password vacío es identificación pura: todos los
// candidatos son good sin tocar ningún hash.
func (v *Verifier) FindMatches(ctx context.Context, username, password string, userType domain.UserType, site domain.SiteType) (Result, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("identity"),
		logger.Op("FindMatches"),
	)

	// Paso 1: lookup por username case-folded.
	folded := strings.ToLower(strings.TrimSpace(username))
	ident, mappings, err := v.deps.Identities.FindByUsername(ctx, folded)
	if errors.Is(err, repository.ErrNotFound) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{Identity: ident}

	// Paso 2: seleccionar mappings candidatos según sitio y tipo de usuario.
	candidates := selectCandidates(mappings, userType, site)
	if len(candidates) == 0 {
		return res, nil
	}

	// Paso 3: sin password es identificación pura.
	if password == "" {
		for _, m := range candidates {
			res.Good = append(res.Good, Match{Mapping: m})
		}
		return res, nil
	}

	// Paso 4: verificar cada candidato por el esquema que le toque.
	migrated := false
	for _, m := range candidates {
		ok, viaLegacy := v.verifyOne(ident, &m, password)
		if !ok {
			res.Bad = append(res.Bad, Match{Mapping: m})
			continue
		}
		res.Good = append(res.Good, Match{Mapping: m})

		// Paso 5: primer éxito legacy sin hash canónico dispara la migración.
		if viaLegacy && !ident.HasCanonicalHash() {
			mig, err := passwd.NewMigration(password, v.deps.Now())
			if err != nil {
				log.Warn("canonical migration skipped", logger.Err(err))
				continue
			}
			ident.StrongPasswordHash = mig.Hash
			ident.StrongPasswordSalt = mig.Salt
			ident.PasswordSetAt = &mig.SetAt
			ident.PasswordGoodUntil = &mig.GoodUntil
			migrated = true
		}
	}

	// Paso 6: persistir la migración antes de retornar. Una falla acá no
	// voltea el login: el match legacy ya verificó.
	if migrated {
		if err := v.deps.Identities.SaveCanonicalHash(ctx, ident); err != nil {
			log.Warn("canonical migration persist failed", logger.Username(folded), logger.Err(err))
		} else {
			log.Info("identity migrated to canonical scheme", logger.Username(folded))
			v.deps.Events.IdentityMigrated(ctx, folded)
		}
	}

	return res, nil
}

// ResolveUniqueID re-resuelve el mapping puntual que nombra un unique id
// canónico. Usado por refresh: el token ya probó posesión, acá solo se
// confirma que la cuenta siga existiendo.
func (v *Verifier) ResolveUniqueID(ctx context.Context, uid domain.UniqueID) (*domain.Identity, *domain.PlatformMapping, error) {
	return v.deps.Identities.FindByUniqueID(ctx, uid)
}

// verifyOne verifica un password contra un mapping. Retorna (ok, viaLegacy).
func (v *Verifier) verifyOne(ident *domain.Identity, m *domain.PlatformMapping, password string) (bool, bool) {
	// lpi queda permanentemente fuera de la verificación canónica; sus
	// cuentas siguen en su esquema legacy indefinidamente.
	if ident.HasCanonicalHash() && m.Platform != domain.PlatformLPI {
		ok := passwd.VerifyCanonical(password, ident.StrongPasswordSalt, ident.StrongPasswordHash, ident.PasswordSetAt)
		return ok, false
	}
	scheme := passwd.Resolve(m)
	return passwd.VerifyLegacy(scheme, password, m), true
}

// selectCandidates aplica la tabla fija de resolución plataforma/rol.
func selectCandidates(mappings []domain.PlatformMapping, userType domain.UserType, site domain.SiteType) []domain.PlatformMapping {
	// Sitio Any + tipo Any: todos los mappings de la identidad.
	if site == domain.SiteAny && userType == domain.UserTypeAny {
		return mappings
	}

	var wantPlatform, wantRole string
	if site == domain.SiteAny {
		if userType == domain.UserTypeLpiFacilitator {
			wantPlatform, wantRole = domain.PlatformLPI, domain.RoleFacilitator
		} else {
			wantPlatform, wantRole = domain.PlatformEpic, domain.RoleLearner
		}
	} else {
		// Sitio específico: plataforma homónima, rol learner.
		wantPlatform, wantRole = string(site), domain.RoleLearner
	}

	var out []domain.PlatformMapping
	for _, m := range mappings {
		if m.Platform == wantPlatform && m.Role == wantRole {
			out = append(out, m)
		}
	}
	return out
}
