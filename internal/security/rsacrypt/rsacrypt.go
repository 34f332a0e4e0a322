// Package rsacrypt maneja el descifrado de los client secrets de federación.
// Los secrets se provisionan out-of-band cifrados con la clave pública del
// servicio (RSA PKCS#1 v1.5) y llegan en base64, a veces con CRLF o espacios
// incidentales del copy/paste.
package rsacrypt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
)

// Keyring envuelve la clave privada del servicio.
type Keyring struct {
	priv *rsa.PrivateKey
}

// New parsea una clave privada RSA en PEM (PKCS#1 o PKCS#8).
func New(pemBytes []byte) (*Keyring, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("rsacrypt: no PEM block found")
	}

	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return &Keyring{priv: k}, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("rsacrypt: parse private key: %w", err)
	}
	rk, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("rsacrypt: key is not RSA")
	}
	return &Keyring{priv: rk}, nil
}

// LoadFile lee la clave privada desde un archivo PEM.
func LoadFile(path string) (*Keyring, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rsacrypt: read key file: %w", err)
	}
	return New(b)
}

// DecryptSecret descifra un client secret. Limpia CRLF y espacios del base64
// antes de decodificar, y del plaintext resultante.
func (k *Keyring) DecryptSecret(encrypted string) (string, error) {
	clean := strings.NewReplacer("\r", "", "\n", "", " ", "").Replace(encrypted)
	ct, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return "", fmt.Errorf("rsacrypt: secret is not valid base64: %w", err)
	}
	pt, err := rsa.DecryptPKCS1v15(nil, k.priv, ct)
	if err != nil {
		return "", fmt.Errorf("rsacrypt: decrypt failed: %w", err)
	}
	return strings.TrimSpace(string(pt)), nil
}

// EncryptSecret cifra un secret con la clave pública del keyring. Usado por
// la CLI de operación para provisionar federaciones.
func (k *Keyring) EncryptSecret(plain string) (string, error) {
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, &k.priv.PublicKey, []byte(plain))
	if err != nil {
		return "", fmt.Errorf("rsacrypt: encrypt failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// PublicKeyPEM exporta la clave pública en PEM, para compartir con quien
// provisiona secrets.
func (k *Keyring) PublicKeyPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(&k.priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("rsacrypt: marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
