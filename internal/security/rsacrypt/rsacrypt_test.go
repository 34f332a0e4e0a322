package rsacrypt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
)

func testKeyring(t *testing.T) *Keyring {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey err: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})
	k, err := New(pemBytes)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	return k
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	k := testKeyring(t)

	ct, err := k.EncryptSecret("s3cr3t-cliente")
	if err != nil {
		t.Fatalf("EncryptSecret err: %v", err)
	}
	pt, err := k.DecryptSecret(ct)
	if err != nil {
		t.Fatalf("DecryptSecret err: %v", err)
	}
	if pt != "s3cr3t-cliente" {
		t.Fatalf("plaintext = %q", pt)
	}
}

func TestDecryptSecret_ToleraCRLFYEspacios(t *testing.T) {
	t.Parallel()
	k := testKeyring(t)

	ct, err := k.EncryptSecret("secreto")
	if err != nil {
		t.Fatalf("EncryptSecret err: %v", err)
	}

	// Simular el base64 partido en líneas como llega del provisioning manual.
	var sb strings.Builder
	for i, r := range ct {
		if i > 0 && i%40 == 0 {
			sb.WriteString("\r\n")
		}
		sb.WriteRune(r)
	}
	mangled := " " + sb.String() + "\n"

	pt, err := k.DecryptSecret(mangled)
	if err != nil {
		t.Fatalf("DecryptSecret err: %v", err)
	}
	if pt != "secreto" {
		t.Fatalf("plaintext = %q", pt)
	}
}

func TestDecryptSecret_TrimPlaintext(t *testing.T) {
	t.Parallel()
	k := testKeyring(t)

	ct, err := k.EncryptSecret("  con-espacios \r\n")
	if err != nil {
		t.Fatalf("EncryptSecret err: %v", err)
	}
	pt, err := k.DecryptSecret(ct)
	if err != nil {
		t.Fatalf("DecryptSecret err: %v", err)
	}
	if pt != "con-espacios" {
		t.Fatalf("plaintext = %q, esperaba sin espacios", pt)
	}
}

func TestDecryptSecret_Base64Invalido(t *testing.T) {
	t.Parallel()
	k := testKeyring(t)

	if _, err := k.DecryptSecret("!!no-base64!!"); err == nil {
		t.Fatal("esperaba error con base64 inválido")
	}
}

func TestNew_PEMInvalido(t *testing.T) {
	t.Parallel()

	if _, err := New([]byte("garbage")); err == nil {
		t.Fatal("esperaba error sin bloque PEM")
	}
}
