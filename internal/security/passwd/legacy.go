package passwd

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// verifySHA1Hex: hex(SHA1(salt+password)) sobre UTF-8. El hash almacenado es
// hex y la comparación es case-insensitive.
func verifySHA1Hex(password, salt, storedHash string) bool {
	sum := sha1.Sum([]byte(salt + password))
	return strings.EqualFold(hex.EncodeToString(sum[:]), strings.TrimSpace(storedHash))
}

// verifySHA1UTF16: base64(SHA1(UTF16LE(password) ∥ saltBytes)) donde el salt
// almacenado viene en base64. Solo sobrevive para los admin legacy de pac.
func verifySHA1UTF16(password, salt, storedHash string) bool {
	saltBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(salt))
	if err != nil {
		return false
	}
	h := sha1.New()
	h.Write(utf16Bytes(password))
	h.Write(saltBytes)
	got := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return got == strings.TrimSpace(storedHash)
}

// verifySHA256UTF16: base64(SHA256(UTF16LE(password) ∥ saltBytes)) donde el
// salt almacenado viene en base64; una sola pasada, sin la iteración por
// fecha del esquema canónico.
func verifySHA256UTF16(password, salt, storedHash string) bool {
	saltBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(salt))
	if err != nil {
		return false
	}
	h := sha256.New()
	h.Write(utf16Bytes(password))
	h.Write(saltBytes)
	got := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return got == strings.TrimSpace(storedHash)
}
