package envelope

import (
	"encoding/base64"
	"strings"
)

// CleanText is base64 text that passed Validate: standard alphabet only,
// whitespace stripped, length a multiple of four. Decode accepts only
// CleanText so decoder-specific leniencies can never be reached with raw
// client input.
type CleanText string

// ValidateBase64 strips whitespace from text and checks that the remainder is
// well-formed standard base64. Validating the alphabet and padding before
// invoking the decoder turns ambiguous decoder failures into one diagnosable
// error class. The label names the envelope field for diagnostics.
func ValidateBase64(text, label string) (CleanText, error) {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			continue
		}
		b.WriteRune(r)
	}
	stripped := b.String()

	if stripped == "" {
		return "", &EncodingError{Label: label, Reason: "empty"}
	}

	for i := 0; i < len(stripped); i++ {
		c := stripped[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '+' || c == '/' || c == '=':
		default:
			return "", &EncodingError{Label: label, Reason: "character outside base64 alphabet"}
		}
	}

	if len(stripped)%4 != 0 {
		return "", &EncodingError{Label: label, Reason: "length is not a multiple of 4"}
	}

	return CleanText(stripped), nil
}

// DecodeBase64 decodes validated base64 text. Strict decoding still rejects
// structurally invalid padding (for example "A===") that alphabet and length
// checks cannot catch.
func DecodeBase64(text CleanText, label string) ([]byte, error) {
	data, err := base64.StdEncoding.Strict().DecodeString(string(text))
	if err != nil {
		return nil, &EncodingError{Label: label, Reason: "malformed padding"}
	}
	return data, nil
}

// EncodeBase64 encodes bytes as standard base64. Encode and Decode round-trip
// for arbitrary byte sequences.
func EncodeBase64(data []byte) CleanText {
	return CleanText(base64.StdEncoding.EncodeToString(data))
}
