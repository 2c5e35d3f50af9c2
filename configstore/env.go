// Package configstore implements the ConfigStore interface over environment
// variables, directories of files, and HashiCorp Vault. Stores are created
// from location URIs, mirroring how record sinks are configured.
package configstore

import (
	"context"
	"os"
	"strings"
)

// EnvStore resolves configuration values from process environment variables,
// optionally under a name prefix.
type EnvStore struct {
	prefix string
}

// NewEnvStore creates an environment-backed store. A non-empty prefix is
// prepended to every lookup (e.g. prefix "INGEST_" resolves PRIVATE_KEY_PEM
// from INGEST_PRIVATE_KEY_PEM).
func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{prefix: prefix}
}

// Get returns the environment value for name. Environment lookups cannot fail
// at the store level, so the error is always nil.
func (s *EnvStore) Get(_ context.Context, name string) (string, bool, error) {
	value, ok := os.LookupEnv(s.prefix + name)
	if !ok {
		return "", false, nil
	}
	// Deployment tooling often stores PEM blocks with escaped newlines.
	return strings.ReplaceAll(value, `\n`, "\n"), true, nil
}
