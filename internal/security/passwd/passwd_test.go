package passwd

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/crossgate-id/crossgate/internal/domain"
)

// Vectores conocidos, generados con las construcciones de los sistemas de
// origen. Si alguno de estos tests rompe, se rompió la compatibilidad.

func TestVerifySHA1Hex_Vector(t *testing.T) {
	t.Parallel()

	// hex(SHA1("abc123" + "Secret123"))
	const stored = "89d3ebf5951599d9f9010cbc97751458be666f93"

	if !verifySHA1Hex("Secret123", "abc123", stored) {
		t.Fatal("vector SHA1 hex no verifica")
	}
	// Comparación case-insensitive del hex almacenado.
	if !verifySHA1Hex("Secret123", "abc123", "89D3EBF5951599D9F9010CBC97751458BE666F93") {
		t.Fatal("la comparación debe ser case-insensitive")
	}
	if verifySHA1Hex("secret123", "abc123", stored) {
		t.Fatal("password incorrecto verificó")
	}
	if verifySHA1Hex("Secret123", "abc124", stored) {
		t.Fatal("salt incorrecto verificó")
	}
}

func TestVerifySHA1UTF16_Vector(t *testing.T) {
	t.Parallel()

	// salt = bytes 0x01..0x08 en base64; hash = base64(SHA1(UTF16LE(pw) ∥ salt))
	const salt = "AQIDBAUGBwg="
	const stored = "X51EmskouvuzudN5sQW/0ptICbo="

	if !verifySHA1UTF16("Secret123", salt, stored) {
		t.Fatal("vector SHA1/UTF16 no verifica")
	}
	if verifySHA1UTF16("Secret124", salt, stored) {
		t.Fatal("password incorrecto verificó")
	}
	// Salt que no es base64 válido: falla, no hay fallback en este esquema.
	if verifySHA1UTF16("Secret123", "not-base64!", stored) {
		t.Fatal("salt inválido verificó")
	}
}

func TestVerifySHA256UTF16_Vectores(t *testing.T) {
	t.Parallel()

	// Salt base64 (bytes 0x01..0x08).
	if !verifySHA256UTF16("Secret123", "AQIDBAUGBwg=", "Y2qg3VZKAtOflcPIwZS6FEycT6PPt126jbLYB3qn19M=") {
		t.Fatal("vector con salt base64 no verifica")
	}
	if verifySHA256UTF16("otra", "AQIDBAUGBwg=", "Y2qg3VZKAtOflcPIwZS6FEycT6PPt126jbLYB3qn19M=") {
		t.Fatal("password incorrecto verificó")
	}
	// Salt que no es base64 válido: falla, igual que en los otros esquemas.
	if verifySHA256UTF16("Secret123", "pepper!", "Y2qg3VZKAtOflcPIwZS6FEycT6PPt126jbLYB3qn19M=") {
		t.Fatal("salt inválido verificó")
	}
}

func TestIterationCount_Formula(t *testing.T) {
	t.Parallel()

	cases := []struct {
		date  time.Time
		count int
	}{
		// days = 0 → 0/30 + 0*40 + 1
		{time.Date(2006, 5, 27, 0, 0, 0, 0, time.UTC), 1},
		// days = 29 → 0 + 29*40 + 1
		{time.Date(2006, 6, 25, 0, 0, 0, 0, time.UTC), 1161},
		// days = 30 → 1 + 0 + 1
		{time.Date(2006, 6, 26, 0, 0, 0, 0, time.UTC), 2},
		// days = 31 → 1 + 1*40 + 1
		{time.Date(2006, 6, 27, 0, 0, 0, 0, time.UTC), 42},
		// days = 6502 → 216 + 22*40 + 1
		{time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 1097},
	}
	for _, c := range cases {
		if got := IterationCount(c.date); got != c.count {
			t.Errorf("IterationCount(%s) = %d, want %d", c.date.Format("2006-01-02"), got, c.count)
		}
	}

	// La hora del día no altera la cuenta.
	noon := time.Date(2024, 3, 15, 12, 30, 45, 0, time.UTC)
	if IterationCount(noon) != 1097 {
		t.Error("la hora del día no debe alterar la cuenta de iteraciones")
	}
}

func TestCanonicalHash_Vector(t *testing.T) {
	t.Parallel()

	salt := make([]byte, 16)
	for i := range salt {
		salt[i] = 0x0f
	}
	setAt := time.Date(2006, 6, 26, 0, 0, 0, 0, time.UTC) // count = 2

	want, _ := hex.DecodeString("722988200e73f5f2497ada678a4faa645aaba89ebafd247fa5f66ea5debcea21")
	got := CanonicalHash("Secret123", salt, &setAt)
	if string(got) != string(want) {
		t.Fatalf("canonical hash = %x, want %x", got, want)
	}

	if !VerifyCanonical("Secret123", salt, want, &setAt) {
		t.Fatal("VerifyCanonical no verifica su propio vector")
	}
	if VerifyCanonical("Secret124", salt, want, &setAt) {
		t.Fatal("password incorrecto verificó")
	}
}

func TestCanonicalHash_CuentaDeAplicaciones(t *testing.T) {
	t.Parallel()

	salt := make([]byte, 16)
	for i := range salt {
		salt[i] = 0x0f
	}

	// Con count = 1 (fecha ancla) el hash es exactamente una aplicación de
	// SHA-256 sobre UTF16LE(password) ∥ salt: la primera iteración ES el hash
	// salteado inicial, no una re-pasada encima de él.
	anchor := time.Date(2006, 5, 27, 0, 0, 0, 0, time.UTC)
	single, _ := hex.DecodeString("4c3076006f433bdc8c1899f18f3a8b646b1b9f73e888b08e31b5c3e9181115a6")
	if got := CanonicalHash("Secret123", salt, &anchor); string(got) != string(single) {
		t.Fatalf("count=1: hash = %x, want %x", got, single)
	}

	// Sin fecha de seteo queda la misma pasada única.
	if got := CanonicalHash("Secret123", salt, nil); string(got) != string(single) {
		t.Fatalf("sin fecha: hash = %x, want %x", got, single)
	}
}

func TestNewMigration_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	mig, err := NewMigration("Secret123", now)
	if err != nil {
		t.Fatalf("NewMigration err: %v", err)
	}
	if len(mig.Salt) != 16 {
		t.Fatalf("salt de %d bytes, want 16", len(mig.Salt))
	}
	if !mig.GoodUntil.Equal(time.Date(2080, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("GoodUntil = %s", mig.GoodUntil)
	}
	if !VerifyCanonical("Secret123", mig.Salt, mig.Hash, &mig.SetAt) {
		t.Fatal("el hash migrado no verifica con el mismo password")
	}
}

func TestResolve_Esquemas(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mapping domain.PlatformMapping
		want    Scheme
	}{
		{"epic sha1", domain.PlatformMapping{Platform: "epic", Role: "learner", HashMethod: "SHA1", PasswordSalt: "s"}, SchemeSHA1Hex},
		{"catalyst sha1", domain.PlatformMapping{Platform: "catalyst", Role: "learner", HashMethod: "SHA1", PasswordSalt: "s"}, SchemeSHA1Hex},
		{"pac admin", domain.PlatformMapping{Platform: "pac", Role: "admin", HashMethod: "SHA256", PasswordSalt: "s"}, SchemeSHA1UTF16},
		{"pac learner", domain.PlatformMapping{Platform: "pac", Role: "learner", HashMethod: "SHA256", PasswordSalt: "s"}, SchemeSHA256UTF16},
		{"default con salt", domain.PlatformMapping{Platform: "lpi", Role: "facilitator", HashMethod: "MD5", PasswordSalt: "s"}, SchemeSHA256UTF16},
		{"sin salt", domain.PlatformMapping{Platform: "lpi", Role: "learner"}, SchemeNone},
		{"sha1 en plataforma no legacy", domain.PlatformMapping{Platform: "lpi", HashMethod: "SHA1"}, SchemeNone},
	}
	for _, c := range cases {
		if got := Resolve(&c.mapping); got != c.want {
			t.Errorf("%s: Resolve = %v, want %v", c.name, got, c.want)
		}
	}
}
