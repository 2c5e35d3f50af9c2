package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
)

// Seal encrypts a JSON-serializable record into a full envelope: a fresh
// 32-byte AES key and 16-byte IV, AES-256-CBC/PKCS7 for the payload, and
// RSA-OAEP for the base64-encoded key. This mirrors the browser-side
// encryption path and backs the client binary and round-trip tests.
func Seal(record any, pub *rsa.PublicKey) (Envelope, error) {
	plaintext, err := json.Marshal(record)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal record: %w", err)
	}

	key := make([]byte, AESKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return Envelope{}, fmt.Errorf("failed to generate key: %w", err)
	}
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Envelope{}, fmt.Errorf("failed to generate IV: %w", err)
	}

	cipherBytes, err := EncryptCBC(plaintext, key, iv)
	if err != nil {
		return Envelope{}, err
	}

	wrappedKey, err := WrapKey(key, pub)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		WrappedKey: string(EncodeBase64(wrappedKey)),
		IV:         string(EncodeBase64(iv)),
		Ciphertext: string(EncodeBase64(cipherBytes)),
	}, nil
}

// SealLegacy encrypts a record in the legacy single-field shape: the JSON
// payload goes directly under RSA-OAEP with no AES layer. Payloads are
// limited by the RSA message size.
func SealLegacy(record any, pub *rsa.PublicKey) (Envelope, error) {
	plaintext, err := json.Marshal(record)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal record: %w", err)
	}

	cipherBytes, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, nil)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encrypt payload: %w", err)
	}

	return Envelope{Ciphertext: string(EncodeBase64(cipherBytes))}, nil
}
