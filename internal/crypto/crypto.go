// Package crypto seals provider credentials at rest. Values are AES-GCM
// encrypted and HMAC signed, then base64 encoded as "cipher.signature" so a
// sealed credential survives env files and config stores as a single string.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gtank/cryptopasta"
)

// NewRandomKey generates a random key long enough for both encryption and
// signing.
func NewRandomKey() (string, error) {
	key := &[33]byte{}
	_, err := io.ReadFull(rand.Reader, key[:])
	return base64.RawURLEncoding.EncodeToString(key[:]), err
}

// Seal encrypts and signs plaintext, returning a single encoded string.
func Seal(plaintext []byte, key, sig string) (string, error) {
	rawkey, err := toKey(key)
	if err != nil {
		return "", fmt.Errorf("Seal: %w", err)
	}
	rawsig, err := toKey(sig)
	if err != nil {
		return "", fmt.Errorf("Seal: %w", err)
	}

	ciphertext, err := cryptopasta.Encrypt(plaintext, rawkey)
	if err != nil {
		return "", fmt.Errorf("Seal: %w", err)
	}
	signature := cryptopasta.GenerateHMAC(ciphertext, rawsig)

	return fmt.Sprintf(
		"%s.%s",
		base64.RawURLEncoding.EncodeToString(ciphertext),
		base64.RawURLEncoding.EncodeToString(signature),
	), nil
}

// Open verifies the HMAC and decrypts a string produced by Seal. A bad
// signature fails before any decryption is attempted.
func Open(encoded, key, sig string) ([]byte, error) {
	rawkey, err := toKey(key)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	rawsig, err := toKey(sig)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	bits := strings.SplitN(encoded, ".", 2)
	if len(bits) != 2 {
		return nil, fmt.Errorf("Open: encoded string is not cipher.signature")
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(bits[0])
	if err != nil {
		return nil, fmt.Errorf("Open: decode ciphertext: %w", err)
	}
	signature, err := base64.RawURLEncoding.DecodeString(bits[1])
	if err != nil {
		return nil, fmt.Errorf("Open: decode signature: %w", err)
	}

	if !cryptopasta.CheckHMAC(ciphertext, signature, rawsig) {
		return nil, fmt.Errorf("Open: signature validation failed")
	}

	plaintext, err := cryptopasta.Decrypt(ciphertext, rawkey)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	return plaintext, nil
}

// toKey turns a string of at least 32 chars into the fixed-size key the
// underlying library wants.
func toKey(s string) (*[32]byte, error) {
	if len(s) < 32 {
		return nil, fmt.Errorf("key too short, want at least 32 chars")
	}
	data := &[32]byte{}
	copy(data[:], s)
	return data, nil
}
