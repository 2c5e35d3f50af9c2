package envelope

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// previewLimit bounds the diagnostic previews attached to DecodeError so
// error paths never dump the full decrypted payload.
const previewLimit = 64

// DecodeText validates decrypted bytes as UTF-8 text. When debugPreviews is
// set, a failed validation carries bounded hex and Latin-1 renderings of the
// decrypted bytes for operator debugging; production deployments keep it off
// so error responses never include plaintext-derived bytes.
//
// Empty text after an otherwise-successful decode is almost certainly a
// wrong key or IV rather than a legitimate empty payload, and is reported as
// a CryptoError.
func DecodeText(plaintext []byte, debugPreviews bool) (string, error) {
	if !utf8.Valid(plaintext) {
		decErr := &DecodeError{ByteCount: len(plaintext)}
		if debugPreviews {
			decErr.HexPreview = hexPreview(plaintext)
			decErr.Latin1Preview = latin1Preview(plaintext)
		}
		return "", decErr
	}

	text := string(plaintext)
	if text == "" {
		return "", &CryptoError{Stage: StageUTF8Decode, Err: errors.New("decoded text is empty")}
	}
	return text, nil
}

// ParseRecord parses decoded text into a PlaintextRecord. Parse failures are
// never retried or repaired. A well-formed JSON object is never rejected for
// missing optional fields.
func ParseRecord(text string) (interfaces.PlaintextRecord, error) {
	var rec interfaces.PlaintextRecord
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return interfaces.PlaintextRecord{}, &ParseError{Err: err}
	}
	return rec, nil
}

func hexPreview(data []byte) string {
	if len(data) > previewLimit {
		data = data[:previewLimit]
	}
	return hex.EncodeToString(data)
}

func latin1Preview(data []byte) string {
	if len(data) > previewLimit {
		data = data[:previewLimit]
	}
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		// Latin-1: every byte maps to the rune of the same value.
		b.WriteRune(rune(c))
	}
	return b.String()
}
