package configstore

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// FromURI creates a config store from a location URI.
//
// Supported schemes:
//   - env:// - Process environment variables; ?prefix=X_ prepends a prefix.
//   - file:///path/to/dir - Directory of files, one per value.
//   - vault://host:port/mount/secret-path?token=... - Vault KV v2 secret.
//     ?scheme=http selects plain HTTP for local development; TLS otherwise.
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func FromURI(uri string, log *slog.Logger) (interfaces.ConfigStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid config store URI: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "env":
		return NewEnvStore(u.Query().Get("prefix")), nil

	case "file":
		path := u.Path
		if u.Host != "" {
			path = u.Host + "/" + strings.TrimPrefix(path, "/")
		}
		if path == "" {
			return nil, fmt.Errorf("empty path in config store URI: %s", uri)
		}
		return NewDirStore(path)

	case "vault":
		parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("vault config store URI must be vault://host:port/mount/secret-path")
		}

		scheme := u.Query().Get("scheme")
		if scheme == "" {
			scheme = "https"
		}
		address := fmt.Sprintf("%s://%s", scheme, u.Host)

		return NewVaultStore(address, u.Query().Get("token"), parts[0], parts[1], log)

	default:
		return nil, fmt.Errorf("unsupported config store scheme: %s", u.Scheme)
	}
}
