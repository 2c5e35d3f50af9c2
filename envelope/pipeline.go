package envelope

import (
	"crypto/rsa"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// Envelope is the untrusted client-submitted structure: a wrapped symmetric
// key, an initialization vector, and ciphertext, all base64 text.
//
// Legacy clients send only the ciphertext field, with the whole JSON payload
// encrypted directly under the RSA key and no AES layer.
type Envelope struct {
	WrappedKey string `json:"key"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// Legacy reports whether the envelope is the single-field legacy variant.
func (e Envelope) Legacy() bool {
	return e.WrappedKey == "" && e.IV == ""
}

// Pipeline sequences the decryption validation stages: base64 validation,
// RSA unwrap, AES-CBC decrypt, UTF-8 decode, and JSON parse. It short-
// circuits on the first failure, wraps every stage error in a PipelineError
// carrying the stage name, and never lets a byte buffer from a failed stage
// propagate downstream.
//
// The pipeline is purely synchronous and stateless: it performs no I/O, holds
// no mutable state, and never retries — a cryptographic failure is terminal
// for the invocation and retry policy belongs to the caller.
type Pipeline struct {
	// DebugPreviews attaches bounded previews of decrypted bytes to UTF-8
	// decode failures. Off by default; enable only for operator debugging.
	DebugPreviews bool
}

// Process runs env through the full pipeline and returns the recovered
// record. priv is resolved by the caller, keeping the pipeline free of
// configuration lookups.
func (p *Pipeline) Process(env Envelope, priv *rsa.PrivateKey) (interfaces.PlaintextRecord, error) {
	var zero interfaces.PlaintextRecord

	if env.Ciphertext == "" {
		return zero, &PipelineError{Stage: StageInput, Err: &InputError{Reason: "missing ciphertext field"}}
	}

	if env.Legacy() {
		return p.processLegacy(env, priv)
	}

	// Full envelope: all three fields must be present.
	if env.WrappedKey == "" {
		return zero, &PipelineError{Stage: StageInput, Err: &InputError{Reason: "missing key field"}}
	}
	if env.IV == "" {
		return zero, &PipelineError{Stage: StageInput, Err: &InputError{Reason: "missing iv field"}}
	}

	wrappedKey, err := p.decodeField(env.WrappedKey, "key")
	if err != nil {
		return zero, err
	}
	iv, err := p.decodeField(env.IV, "iv")
	if err != nil {
		return zero, err
	}
	cipherBytes, err := p.decodeField(env.Ciphertext, "ciphertext")
	if err != nil {
		return zero, err
	}

	key, err := Unwrap(wrappedKey, priv)
	if err != nil {
		return zero, &PipelineError{Stage: StageRSAUnwrap, Err: err}
	}

	plaintext, err := DecryptCBC(cipherBytes, key, iv)
	if err != nil {
		return zero, &PipelineError{Stage: StageAESDecrypt, Err: err}
	}

	return p.decodeRecord(plaintext)
}

// processLegacy handles the single-field variant: the RSA plaintext is the
// JSON payload itself.
func (p *Pipeline) processLegacy(env Envelope, priv *rsa.PrivateKey) (interfaces.PlaintextRecord, error) {
	var zero interfaces.PlaintextRecord

	cipherBytes, err := p.decodeField(env.Ciphertext, "ciphertext")
	if err != nil {
		return zero, err
	}

	if priv == nil {
		return zero, &PipelineError{Stage: StageRSAUnwrap, Err: &ConfigurationError{Reason: "private key is not configured"}}
	}
	plaintext, err := decryptRSA(priv, cipherBytes)
	if err != nil {
		return zero, &PipelineError{Stage: StageRSAUnwrap, Err: &CryptoError{Stage: StageRSAUnwrap, Err: err}}
	}

	return p.decodeRecord(plaintext)
}

func (p *Pipeline) decodeField(text, label string) ([]byte, error) {
	clean, err := ValidateBase64(text, label)
	if err != nil {
		return nil, &PipelineError{Stage: StageBase64, Err: err}
	}
	data, err := DecodeBase64(clean, label)
	if err != nil {
		return nil, &PipelineError{Stage: StageBase64, Err: err}
	}
	return data, nil
}

func (p *Pipeline) decodeRecord(plaintext []byte) (interfaces.PlaintextRecord, error) {
	var zero interfaces.PlaintextRecord

	text, err := DecodeText(plaintext, p.DebugPreviews)
	if err != nil {
		return zero, &PipelineError{Stage: StageUTF8Decode, Err: err}
	}

	rec, err := ParseRecord(text)
	if err != nil {
		return zero, &PipelineError{Stage: StageJSONParse, Err: err}
	}
	return rec, nil
}
