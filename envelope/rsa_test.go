package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return priv
}

func TestUnwrapRoundTrip(t *testing.T) {
	priv := testRSAKey(t)

	key := make([]byte, AESKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	wrapped, err := WrapKey(key, &priv.PublicKey)
	require.NoError(t, err)

	unwrapped, err := Unwrap(wrapped, priv)
	require.NoError(t, err)
	require.Equal(t, key, unwrapped)
}

func TestUnwrapPKCS1v15Fallback(t *testing.T) {
	priv := testRSAKey(t)

	key := make([]byte, AESKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	// Legacy clients wrap with PKCS#1v1.5 instead of OAEP.
	wrapped, err := rsa.EncryptPKCS1v15(rand.Reader, &priv.PublicKey, []byte(EncodeBase64(key)))
	require.NoError(t, err)

	unwrapped, err := Unwrap(wrapped, priv)
	require.NoError(t, err)
	require.Equal(t, key, unwrapped)
}

func TestUnwrapWrongKeySize(t *testing.T) {
	priv := testRSAKey(t)

	short := make([]byte, 16)
	_, err := rand.Read(short)
	require.NoError(t, err)

	wrapped, err := WrapKey(short, &priv.PublicKey)
	require.NoError(t, err)

	_, err = Unwrap(wrapped, priv)
	var lenErr *LengthError
	require.ErrorAs(t, err, &lenErr)
	require.Equal(t, "aesKey", lenErr.Field)
	require.Equal(t, 32, lenErr.Expected)
	require.Equal(t, 16, lenErr.Actual)
}

func TestUnwrapNonBase64Plaintext(t *testing.T) {
	priv := testRSAKey(t)

	// Raw key bytes instead of base64 text violate the wire contract and
	// are indistinguishable from wrong-key garbage.
	raw := []byte{0x00, 0xff, 0x80, 0x01}
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &priv.PublicKey, raw, nil)
	require.NoError(t, err)

	_, err = Unwrap(wrapped, priv)
	var cryptoErr *CryptoError
	require.ErrorAs(t, err, &cryptoErr)
	require.Equal(t, StageRSAUnwrap, cryptoErr.Stage)
}

func TestUnwrapWrongKey(t *testing.T) {
	priv := testRSAKey(t)
	other := testRSAKey(t)

	key := make([]byte, AESKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	wrapped, err := WrapKey(key, &other.PublicKey)
	require.NoError(t, err)

	_, err = Unwrap(wrapped, priv)
	require.Error(t, err)

	var cryptoErr *CryptoError
	require.ErrorAs(t, err, &cryptoErr)
}

func TestUnwrapMissingPrivateKey(t *testing.T) {
	_, err := Unwrap([]byte{1, 2, 3}, nil)
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestLoadPrivateKeyFormats(t *testing.T) {
	priv := testRSAKey(t)

	pkcs8, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pkcs8PEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8})

	loaded, err := LoadPrivateKey(string(pkcs8PEM))
	require.NoError(t, err)
	require.True(t, priv.Equal(loaded))

	pkcs1PEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})
	loaded, err = LoadPrivateKey(string(pkcs1PEM))
	require.NoError(t, err)
	require.True(t, priv.Equal(loaded))
}

func TestLoadPrivateKeyInvalid(t *testing.T) {
	_, err := LoadPrivateKey("not a pem block")
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestPublicKeyPEMRoundTrip(t *testing.T) {
	priv := testRSAKey(t)

	pemText, err := PublicKeyPEM(&priv.PublicKey)
	require.NoError(t, err)

	pub, err := LoadPublicKey(pemText)
	require.NoError(t, err)
	require.True(t, priv.PublicKey.Equal(pub))
}
