package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// AESKeySize is the only supported symmetric key size (AES-256).
const AESKeySize = 32

// LoadPrivateKey parses an RSA private key from PEM text. Both PKCS#8 and
// PKCS#1 encodings are accepted. Failures are configuration errors, never
// attributable to a client.
func LoadPrivateKey(pemText string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, &ConfigurationError{Reason: "private key is not valid PEM"}
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, &ConfigurationError{Reason: "private key is not an RSA key"}
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, &ConfigurationError{Reason: "failed to parse private key", Err: err}
	}
	return rsaKey, nil
}

// LoadPublicKey parses an RSA public key from PEM text (PKIX or PKCS#1).
func LoadPublicKey(pemText string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, &ConfigurationError{Reason: "public key is not valid PEM"}
	}

	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, &ConfigurationError{Reason: "public key is not an RSA key"}
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, &ConfigurationError{Reason: "failed to parse public key", Err: err}
	}
	return rsaKey, nil
}

// PublicKeyPEM encodes the public half of an RSA key in PKIX PEM format,
// as served to clients that need to wrap a symmetric key.
func PublicKeyPEM(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// decryptRSA decrypts with OAEP (SHA-256 digest, MGF1/SHA-256 mask) and falls
// back to PKCS#1v1.5 for legacy clients. OAEP is always attempted first:
// PKCS#1v1.5 is malleable and exists here only for backward compatibility.
func decryptRSA(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	plain, oaepErr := rsa.DecryptOAEP(sha256.New(), nil, priv, ciphertext, nil)
	if oaepErr == nil {
		return plain, nil
	}

	plain, v15Err := rsa.DecryptPKCS1v15(nil, priv, ciphertext)
	if v15Err == nil {
		return plain, nil
	}

	return nil, fmt.Errorf("OAEP: %v; PKCS#1v1.5: %v", oaepErr, v15Err)
}

// Unwrap recovers the 32-byte AES key from RSA-encrypted wrapped key bytes.
//
// Wire contract: the RSA plaintext carries the AES key as base64 text, not
// raw bytes — clients export the key as base64 before wrapping it. Unwrap
// therefore runs the base64 codec on the decrypted output before enforcing
// the key length.
//
// The length check exists because RSA decryption can "succeed" against the
// wrong key while yielding garbage; only the fixed expected length catches
// that before the AES stage runs. Decrypted output that is not base64 text at
// all is conclusive wrong-key garbage and reported as a CryptoError.
func Unwrap(wrappedKey []byte, priv *rsa.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, &ConfigurationError{Reason: "private key is not configured"}
	}
	if len(wrappedKey) == 0 {
		return nil, &CryptoError{Stage: StageRSAUnwrap, Err: errors.New("wrapped key is empty")}
	}

	plain, err := decryptRSA(priv, wrappedKey)
	if err != nil {
		return nil, &CryptoError{Stage: StageRSAUnwrap, Err: err}
	}
	if len(plain) == 0 {
		return nil, &CryptoError{Stage: StageRSAUnwrap, Err: errors.New("decrypted key is empty")}
	}

	clean, err := ValidateBase64(string(plain), "unwrapped key")
	if err != nil {
		return nil, &CryptoError{Stage: StageRSAUnwrap, Err: errors.New("decrypted key is not base64 text")}
	}
	key, err := DecodeBase64(clean, "unwrapped key")
	if err != nil {
		return nil, &CryptoError{Stage: StageRSAUnwrap, Err: errors.New("decrypted key is not base64 text")}
	}

	if len(key) != AESKeySize {
		return nil, &LengthError{Field: "aesKey", Expected: AESKeySize, Actual: len(key)}
	}
	return key, nil
}

// WrapKey encrypts base64-encoded key material under pub with OAEP/SHA-256,
// the inverse of Unwrap. Used by the client binary and round-trip tests.
func WrapKey(key []byte, pub *rsa.PublicKey) ([]byte, error) {
	encoded := []byte(EncodeBase64(key))
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, encoded, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap key: %w", err)
	}
	return wrapped, nil
}
