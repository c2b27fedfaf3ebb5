package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sagarc03/filetrail"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-2"

// ErrInvalidIntent is returned when a signer is asked for an intent other
// than read or write.
var ErrInvalidIntent = errors.New("invalid intent")

// Config holds configuration for the object store that receives uploads.
type Config struct {
	// Type selects the client: "s3" or "minio"
	Type   string `mapstructure:"type" yaml:"type" validate:"required,oneof=s3 minio"`
	Bucket string `mapstructure:"bucket" yaml:"bucket" validate:"required"`
	Region string `mapstructure:"region" yaml:"region"`
	// Endpoint overrides the AWS endpoint, required for minio.
	// Accepts "host:port" or a URL with an http or https scheme; a bare
	// host:port uses https only when Secure is set.
	Endpoint     string `mapstructure:"endpoint" yaml:"endpoint" validate:"required_if=Type minio"`
	AccessKey    string `mapstructure:"access_key" yaml:"access_key" validate:"required_with=SecretKey"`
	SecretKey    string `mapstructure:"secret_key" yaml:"secret_key" validate:"required_with=AccessKey"`
	UsePathStyle bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
	// Secure selects https for an endpoint given without a scheme
	Secure bool `mapstructure:"secure" yaml:"secure"`
}

func (c Config) region() string {
	if c.Region == "" {
		return DefaultRegion
	}
	return c.Region
}

// New creates the signer selected by cfg.Type.
func New(ctx context.Context, cfg Config) (filetrail.URLSigner, error) {
	switch cfg.Type {
	case "s3":
		signer, err := NewS3Signer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return signer, nil
	case "minio":
		client, err := ConnectMinio(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewMinioSigner(client, cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %q", cfg.Type)
	}
}

// splitEndpoint accepts "host:port" or "scheme://host:port" and reports
// whether TLS should be used. Without a scheme, secure is returned as given.
func splitEndpoint(raw string, secure bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("empty endpoint")
	}

	if !strings.Contains(raw, "://") {
		return raw, secure, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("endpoint %q has no host", raw)
	}
	if u.Path != "" && u.Path != "/" {
		return "", false, fmt.Errorf("endpoint %q must not contain a path", raw)
	}

	return u.Host, u.Scheme == "https", nil
}
