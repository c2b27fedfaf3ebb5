package keybackend

import (
	"context"
	"errors"
	"time"

	"github.com/sagarc03/filetrail"
)

// Config holds configuration for locating token verification keys.
type Config struct {
	URL             string        `mapstructure:"url" yaml:"url" validate:"required_without=File"`   // JWKS endpoint of the identity provider
	File            string        `mapstructure:"file" yaml:"file" validate:"required_without=URL"`  // Path to a JWKS document
	CacheTTL        time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`
}

// NewKeySet creates a KeySet from the given configuration.
// A remote URL takes precedence over a file. A remote key set refreshes in the
// background until ctx is done.
func NewKeySet(ctx context.Context, cfg Config) (filetrail.KeySet, error) {
	switch {
	case cfg.URL != "":
		keys, err := NewRemoteKeySet(ctx, cfg.URL, RemoteOptions{
			CacheTTL:        cfg.CacheTTL,
			RefreshInterval: cfg.RefreshInterval,
		})
		if err != nil {
			return nil, err
		}
		return keys, nil
	case cfg.File != "":
		keys, err := LoadKeySetFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		return keys, nil
	default:
		return nil, errors.New("new key set: either url or file must be set")
	}
}
