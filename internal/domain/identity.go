package domain

import "time"

// Identity es la cuenta global de una persona. El hash canónico es nullable
// hasta que la primera verificación legacy exitosa lo migra.
type Identity struct {
	ID        int64
	Username  string // almacenado case-folded
	FirstName string
	LastName  string

	// Campos del esquema canónico. Nil/vacíos hasta la migración.
	StrongPasswordHash []byte
	StrongPasswordSalt []byte
	PasswordSetAt      *time.Time
	PasswordGoodUntil  *time.Time
}

// HasCanonicalHash indica si la identidad ya migró al esquema canónico.
func (i *Identity) HasCanonicalHash() bool {
	return len(i.StrongPasswordSalt) > 0
}

// DisplayName arma el nombre visible para el claim de subject.
func (i *Identity) DisplayName() string {
	switch {
	case i.FirstName != "" && i.LastName != "":
		return i.FirstName + " " + i.LastName
	case i.FirstName != "":
		return i.FirstName
	default:
		return i.LastName
	}
}

// PlatformMapping es la cuenta de una Identity en una plataforma puntual.
// Unicidad compuesta por (identity, platform, instance, role).
type PlatformMapping struct {
	ID         int64
	IdentityID int64
	Platform   string
	Instance   string
	Role       string
	AccountID  int64
	UserType   UserType

	// Campos legacy, solo para cuentas aún no migradas.
	PasswordHash string
	PasswordSalt string
	HashMethod   string // "SHA1" | "SHA256" | ""
}

// UniqueID deriva el identificador canónico del mapping.
func (m *PlatformMapping) UniqueID() UniqueID {
	return UniqueID{
		Platform:  m.Platform,
		Instance:  m.Instance,
		Role:      m.Role,
		AccountID: m.AccountID,
	}
}
