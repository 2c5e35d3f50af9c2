package envelope

import (
	"errors"
	"fmt"
	"net/http"
)

// Stage names reported in PipelineError and CryptoError.
const (
	StageInput      = "input"
	StageBase64     = "base64"
	StageRSAUnwrap  = "rsa-unwrap"
	StageAESDecrypt = "aes-decrypt"
	StageUTF8Decode = "utf8-decode"
	StageJSONParse  = "json-parse"
)

// InputError reports a missing or unparseable request body or envelope field.
// Client-attributable.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// EncodingError reports base64 text that failed validation before any decode
// attempt: non-alphabet characters or a stripped length that is not a
// multiple of four. Client-attributable.
type EncodingError struct {
	Label  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid base64 in %s: %s", e.Label, e.Reason)
}

// LengthError reports key, IV, or ciphertext material of the wrong size,
// caught before the corresponding cipher runs. Client-attributable.
type LengthError struct {
	Field    string
	Expected int
	Actual   int

	// Multiple indicates the requirement is a positive multiple of Expected
	// rather than exactly Expected bytes.
	Multiple bool
}

func (e *LengthError) Error() string {
	if e.Multiple {
		return fmt.Sprintf("invalid %s length: %d is not a positive multiple of %d", e.Field, e.Actual, e.Expected)
	}
	return fmt.Sprintf("invalid %s length: expected %d bytes, got %d", e.Field, e.Expected, e.Actual)
}

// CryptoError reports a failed RSA or AES operation, or one that produced
// implausible output such as zero-length plaintext. Almost always means a
// wrong key, wrong IV, or corrupted transport; retrying without different key
// material will not help.
type CryptoError struct {
	Stage string
	Err   error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed", e.Stage)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// DecodeError reports decrypted bytes that are not valid UTF-8. The previews
// are bounded renderings of the decrypted bytes and are only populated when
// the pipeline runs with debug diagnostics enabled.
type DecodeError struct {
	ByteCount     int
	HexPreview    string
	Latin1Preview string
}

func (e *DecodeError) Error() string {
	if e.HexPreview != "" {
		return fmt.Sprintf("decrypted %d bytes are not valid UTF-8 (hex %s, latin1 %q)", e.ByteCount, e.HexPreview, e.Latin1Preview)
	}
	return fmt.Sprintf("decrypted %d bytes are not valid UTF-8", e.ByteCount)
}

// ParseError reports decrypted text that is not valid JSON. It carries the
// underlying parser message and is never retried or repaired.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigurationError reports missing or unparseable key material. Fatal and
// server-attributable, never caused by client input.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// PipelineError tags a stage failure with the name of the originating stage.
// The orchestrator wraps every stage error in one before returning it.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// HTTPStatus maps a pipeline error to the response status code. Encoding and
// length violations are client-attributable (400); cryptographic, decode,
// parse, and configuration failures are server- or key-attributable (500).
func HTTPStatus(err error) int {
	var (
		inputErr    *InputError
		encodingErr *EncodingError
		lengthErr   *LengthError
	)
	switch {
	case errors.As(err, &inputErr), errors.As(err, &encodingErr), errors.As(err, &lengthErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns a short classification label for metrics and logs.
func Kind(err error) string {
	var (
		inputErr    *InputError
		encodingErr *EncodingError
		lengthErr   *LengthError
		cryptoErr   *CryptoError
		decodeErr   *DecodeError
		parseErr    *ParseError
		configErr   *ConfigurationError
	)
	switch {
	case errors.As(err, &inputErr):
		return "input"
	case errors.As(err, &encodingErr):
		return "encoding"
	case errors.As(err, &lengthErr):
		return "length"
	case errors.As(err, &cryptoErr):
		return "crypto"
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &configErr):
		return "config"
	default:
		return "internal"
	}
}
