package crypto

import (
	"errors"
	"strings"
	"testing"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundtrip(t *testing.T) {
	plaintext := "api-secret-with-$ymbols"
	enc, err := Encrypt(plaintext, testKey)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if strings.Contains(enc, plaintext) {
		t.Fatal("ciphertext contains plaintext")
	}

	dec, err := Decrypt(enc, testKey)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if dec != plaintext {
		t.Errorf("roundtrip mismatch: %q != %q", dec, plaintext)
	}
}

func TestEncryptNonDeterministic(t *testing.T) {
	a, _ := Encrypt("same", testKey)
	b, _ := Encrypt("same", testKey)
	if a == b {
		t.Error("two encryptions of the same plaintext must differ (random nonce)")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	enc, err := Encrypt("secret", testKey)
	if err != nil {
		t.Fatal(err)
	}
	otherKey := []byte("fedcba9876543210fedcba9876543210")
	if _, err := Decrypt(enc, otherKey); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("want ErrDecryptionFailed, got %v", err)
	}
}

func TestKeyLengthValidation(t *testing.T) {
	if err := ValidateKey([]byte("short")); !errors.Is(err, ErrInvalidKeyLength) {
		t.Errorf("want ErrInvalidKeyLength, got %v", err)
	}
	if _, err := Encrypt("x", []byte("short")); !errors.Is(err, ErrInvalidKeyLength) {
		t.Errorf("encrypt must reject bad keys, got %v", err)
	}
}

func TestDecryptGarbage(t *testing.T) {
	if _, err := Decrypt("not-base64!!!", testKey); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("want ErrInvalidCiphertext, got %v", err)
	}
	if _, err := Decrypt("YWJj", testKey); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("want ErrCiphertextTooShort, got %v", err)
	}
}
