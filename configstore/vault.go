package configstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
)

// VaultStore resolves configuration values from a HashiCorp Vault KV v2
// secret. All values live under a single secret path; each configuration
// name maps to a field of that secret.
type VaultStore struct {
	client     *api.Client
	mountPath  string
	secretPath string
	log        *slog.Logger
}

// NewVaultStore creates a Vault-backed store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - token: Vault token used for authentication
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - secretPath: path of the secret within the mount (e.g. "ingest/keys")
//   - log: structured logger for operational insights
func NewVaultStore(address, token, mountPath, secretPath string, log *slog.Logger) (*VaultStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(token)

	mountPath = strings.TrimSuffix(mountPath, "/")
	secretPath = strings.Trim(secretPath, "/")

	return &VaultStore{
		client:     client,
		mountPath:  mountPath,
		secretPath: secretPath,
		log:        log,
	}, nil
}

// Get reads the named field of the configured secret using the KV v2 API.
func (s *VaultStore) Get(ctx context.Context, name string) (string, bool, error) {
	path := fmt.Sprintf("%s/data/%s", s.mountPath, s.secretPath)

	secret, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		s.log.Error("Failed to read from Vault", slog.String("path", path), "err", err)
		return "", false, fmt.Errorf("vault read failed: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", false, nil
	}

	// KV v2 nests the fields under a "data" key.
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", false, fmt.Errorf("unexpected Vault response format at %s", path)
	}

	value, ok := data[name]
	if !ok {
		return "", false, nil
	}
	text, ok := value.(string)
	if !ok {
		return "", false, fmt.Errorf("vault field %s is not a string", name)
	}
	return text, true, nil
}
