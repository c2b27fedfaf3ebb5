package filetrail

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeySet resolves token verification keys by key id.
// Implementations must be safe for concurrent use.
type KeySet interface {
	// Key returns the public key for kid. An empty kid is only resolvable
	// when the set holds exactly one key.
	Key(ctx context.Context, kid string) (crypto.PublicKey, error)
}

// SigningMethods lists the asymmetric JWS algorithms accepted for bearer tokens.
var SigningMethods = []string{
	"RS256", "RS384", "RS512",
	"PS256", "PS384", "PS512",
	"ES256", "ES384", "ES512",
	"EdDSA",
}

// TokenVerifier verifies bearer tokens issued by an OpenID Connect provider.
type TokenVerifier struct {
	keys   KeySet
	parser *jwt.Parser
}

// NewTokenVerifier creates a verifier that checks signatures against keys and
// requires the issuer and audience from cfg. leeway tolerates clock skew on
// the time based claims.
func NewTokenVerifier(cfg OIDCConfig, keys KeySet, leeway time.Duration) *TokenVerifier {
	return &TokenVerifier{
		keys: keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods(SigningMethods),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(leeway),
		),
	}
}

// Verify checks the token signature, issuer, audience and expiry, and returns
// the subject claim. Every failure wraps ErrUnauthorized.
func (v *TokenVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("verify token: empty token: %w", ErrUnauthorized)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		return "", fmt.Errorf("verify token: %w: %w", ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("verify token: %w: %w", ErrUnauthorized, errors.New("missing subject"))
	}

	return claims.Subject, nil
}
