package crypto

import (
	"strings"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey: %v", err)
	}
	sig, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey: %v", err)
	}

	secret := []byte("client-id:client-secret")

	sealed, err := Seal(secret, key, sig)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if !strings.Contains(sealed, ".") {
		t.Errorf("sealed value %q missing cipher.signature separator", sealed)
	}

	opened, err := Open(sealed, key, sig)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(opened) != string(secret) {
		t.Errorf("round trip = %q, want %q", opened, secret)
	}
}

func TestOpen_RejectsTampering(t *testing.T) {
	key, _ := NewRandomKey()
	sig, _ := NewRandomKey()

	sealed, err := Seal([]byte("secret"), key, sig)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	// Flip a character in the ciphertext half.
	tampered := []byte(sealed)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}
	if _, err := Open(string(tampered), key, sig); err == nil {
		t.Error("tampered ciphertext accepted")
	}

	// Wrong signing key.
	otherSig, _ := NewRandomKey()
	if _, err := Open(sealed, key, otherSig); err == nil {
		t.Error("wrong signing key accepted")
	}

	// Not even the right shape.
	if _, err := Open("noseparator", key, sig); err == nil {
		t.Error("separator-less input accepted")
	}
}

func TestSeal_RejectsShortKeys(t *testing.T) {
	if _, err := Seal([]byte("x"), "short", "also-short"); err == nil {
		t.Error("short keys accepted")
	}
}
