package envelope

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeTextInvalidUTF8(t *testing.T) {
	garbage := []byte{0xff, 0xfe, 0x80, 0x81}

	_, err := DecodeText(garbage, false)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, 4, decErr.ByteCount)
	require.Empty(t, decErr.HexPreview, "previews must stay off by default")
	require.Empty(t, decErr.Latin1Preview)
}

func TestDecodeTextDebugPreviews(t *testing.T) {
	garbage := make([]byte, 200)
	for i := range garbage {
		garbage[i] = 0xff
	}

	_, err := DecodeText(garbage, true)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, 200, decErr.ByteCount)
	require.Len(t, decErr.HexPreview, 2*previewLimit, "hex preview must be bounded")
	require.Equal(t, previewLimit, len([]rune(decErr.Latin1Preview)), "latin1 preview must be bounded")
	require.Equal(t, strings.Repeat("ff", previewLimit), decErr.HexPreview)
}

func TestDecodeTextEmptyIsCryptoError(t *testing.T) {
	_, err := DecodeText([]byte{}, false)
	var cryptoErr *CryptoError
	require.ErrorAs(t, err, &cryptoErr)
}

func TestParseRecordOptionalFields(t *testing.T) {
	rec, err := ParseRecord(`{"clientId":"abc"}`)
	require.NoError(t, err)
	require.Equal(t, "abc", rec.ClientID)
	require.Empty(t, rec.Timestamp)
	require.Nil(t, rec.Meta)
	require.Zero(t, rec.Pointer)
	require.False(t, rec.TestPing)

	// Blank sink equivalents for absent fields.
	require.Equal(t, "", rec.MetaJSON())
	require.Equal(t, "", rec.AnswersJSON())
	require.Equal(t, "", rec.SequenceJSON())
	require.Equal(t, "", rec.TestPingMarker())
}

func TestParseRecordSequenceShapes(t *testing.T) {
	rec, err := ParseRecord(`{"sequence":[1,2,3]}`)
	require.NoError(t, err)
	require.Equal(t, "[1,2,3]", rec.SequenceJSON())

	rec, err = ParseRecord(`{"sequence":{"0":"q1"}}`)
	require.NoError(t, err)
	require.Equal(t, `{"0":"q1"}`, rec.SequenceJSON())
}

func TestParseRecordMalformed(t *testing.T) {
	_, err := ParseRecord(`{"pointer": }`)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.NotEmpty(t, parseErr.Error())
}

func TestParseRecordUnknownFieldsIgnored(t *testing.T) {
	rec, err := ParseRecord(`{"clientId":"x","unexpected":{"deep":true}}`)
	require.NoError(t, err)
	require.Equal(t, "x", rec.ClientID)
}
