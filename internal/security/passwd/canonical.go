package passwd

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"time"
)

// iterationAnchor es la fecha histórica desde la que se cuenta la iteración
// del esquema canónico. No puede cambiar sin invalidar todos los hashes
// migrados.
var iterationAnchor = time.Date(2006, time.May, 27, 0, 0, 0, 0, time.UTC)

// canonicalGoodUntil es la validez lejana que se asigna al migrar.
var canonicalGoodUntil = time.Date(2080, time.January, 31, 0, 0, 0, 0, time.UTC)

// IterationCount reproduce la cuenta de iteraciones del esquema canónico a
// partir de la fecha de seteo del password:
//
//	count = days/30 + (days%30)*40 + 1
//
// con days = días enteros desde el ancla hasta passwordSetAt. No es un KDF
// estándar y no debe "mejorarse": la compatibilidad exige la fórmula exacta.
func IterationCount(passwordSetAt time.Time) int {
	days := int(passwordSetAt.UTC().Truncate(24*time.Hour).Sub(iterationAnchor).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days/30 + (days%30)*40 + 1
}

// CanonicalHash computa el hash canónico: SHA-256 aplicado IterationCount
// veces en total, partiendo de UTF16LE(password) ∥ salt. La primera de las
// iteraciones es el hash salteado inicial; sin fecha de seteo queda esa única
// pasada.
func CanonicalHash(password string, salt []byte, passwordSetAt *time.Time) []byte {
	count := 1
	if passwordSetAt != nil {
		count = IterationCount(*passwordSetAt)
	}

	h := sha256.New()
	h.Write(utf16Bytes(password))
	h.Write(salt)
	digest := h.Sum(nil)

	for i := 1; i < count; i++ {
		sum := sha256.Sum256(digest)
		digest = sum[:]
	}
	return digest
}

// VerifyCanonical compara un password contra un hash canónico almacenado.
func VerifyCanonical(password string, salt, storedHash []byte, passwordSetAt *time.Time) bool {
	got := CanonicalHash(password, salt, passwordSetAt)
	return subtle.ConstantTimeCompare(got, storedHash) == 1
}

// Migration son los campos canónicos generados al migrar un hash legacy.
type Migration struct {
	Hash      []byte
	Salt      []byte
	SetAt     time.Time
	GoodUntil time.Time
}

// NewMigration genera salt fresco de 16 bytes y computa el hash canónico con
// "ahora" como fecha de seteo.
func NewMigration(password string, now time.Time) (Migration, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return Migration{}, fmt.Errorf("passwd: salt generation failed: %w", err)
	}
	setAt := now.UTC()
	return Migration{
		Hash:      CanonicalHash(password, salt, &setAt),
		Salt:      salt,
		SetAt:     setAt,
		GoodUntil: canonicalGoodUntil,
	}, nil
}
