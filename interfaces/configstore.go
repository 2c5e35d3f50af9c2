package interfaces

import "context"

// Configuration value names resolved through a ConfigStore.
const (
	// PrivateKeyPEMName holds the RSA private key used to unwrap envelope
	// keys. Its absence is a fatal configuration error, never attributable
	// to a client.
	PrivateKeyPEMName = "PRIVATE_KEY_PEM"

	// PublicKeyPEMName holds the public half served to clients. Optional:
	// when absent the public key is derived from the private key.
	PublicKeyPEMName = "PUBLIC_KEY_PEM"
)

// ConfigStore provides read access to named configuration values such as key
// material. Implementations back onto environment variables, directories of
// files, or Vault.
type ConfigStore interface {
	// Get returns the value for name. The boolean reports whether the name
	// is present; the error reports store-level failures (unreachable
	// backend), not absence.
	Get(ctx context.Context, name string) (string, bool, error)
}
