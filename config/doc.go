// Package config provides configuration loading and validation for filetrail.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (FILETRAIL_ prefix, plus a few conventional names)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with FILETRAIL_ prefix:
//   - server.port → FILETRAIL_SERVER_PORT
//   - database.dsn → FILETRAIL_DATABASE_DSN
//   - auth.oidc.issuer → FILETRAIL_AUTH_OIDC_ISSUER
//
// Some keys also accept the names commonly used by hosting platforms:
// DATABASE_URL, S3_BUCKET, PORT, OIDC_JWKS_URL, OIDC_ISSUER and OIDC_AUDIENCE.
//
// # Validation
//
// Load fails unless a database DSN, a storage bucket, an OIDC issuer and
// audience, and a JWKS url or file are configured.
package config
