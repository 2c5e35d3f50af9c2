package envelope

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateBase64Rejection(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", " \n\t "},
		{"non-alphabet character", "abc!"},
		{"url-safe alphabet", "ab-_"},
		{"length not multiple of 4", "abcde"},
		{"unicode", "año0"},
		{"embedded null", "ab\x00cd="},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateBase64(tc.text, "ciphertext")
			require.Error(t, err)

			var encErr *EncodingError
			require.ErrorAs(t, err, &encErr)
			require.Equal(t, "ciphertext", encErr.Label)
		})
	}
}

func TestValidateBase64StripsWhitespace(t *testing.T) {
	clean, err := ValidateBase64(" aG Vs\nbG8=\t", "payload")
	require.NoError(t, err)
	require.Equal(t, CleanText("aGVsbG8="), clean)

	data, err := DecodeBase64(clean, "payload")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)
}

func TestDecodeBase64RejectsMalformedPadding(t *testing.T) {
	// Passes alphabet and length checks but is structurally invalid.
	clean, err := ValidateBase64("A===", "payload")
	require.NoError(t, err)

	_, err = DecodeBase64(clean, "payload")
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
}

func TestBase64RoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 15, 16, 17, 256, 1024} {
		data := make([]byte, n)
		_, err := rand.Read(data)
		require.NoError(t, err)

		encoded := EncodeBase64(data)
		validated, err := ValidateBase64(string(encoded), "payload")
		require.NoError(t, err)

		decoded, err := DecodeBase64(validated, "payload")
		require.NoError(t, err)
		require.Equal(t, data, decoded)
	}
}
