// Package envelope implements the decryption validation pipeline for
// client-submitted encrypted envelopes.
//
// An envelope carries three base64 fields: an RSA-wrapped AES key, an
// initialization vector, and AES-256-CBC/PKCS7 ciphertext. The pipeline
// unwraps the symmetric key with RSA-OAEP (SHA-256, with a legacy
// PKCS#1v1.5 fallback), decrypts the payload, validates the plaintext as
// UTF-8, and parses it as JSON.
//
// Every stage either returns a fully validated value or fails atomically
// with a typed error; no partially decoded or decrypted buffer ever
// propagates downstream. Attacker-controlled input is validated at each
// boundary before the corresponding decoder or cipher runs:
//
//   - base64 alphabet and padding shape before decoding
//   - unwrapped key length before the AES stage
//   - key, IV, and ciphertext lengths before the block cipher
//   - PKCS7 padding after decryption, with no best-effort recovery
//   - UTF-8 validity and JSON well-formedness before the record is handed on
//
// The package also provides the inverse Seal path used by the operator
// client and round-trip tests, and PEM helpers for the RSA key material.
//
// The pipeline is pure: no I/O, no retries, no internal timeouts. Hosting
// concerns — concurrency, cancellation, rate limiting of failed attempts —
// belong to the caller.
package envelope
