package keybackend

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/jwkset"
)

// DecodeJWKS decodes a JWKS document into a map of key id to public key.
// Encryption keys and keys that cannot verify a signature are skipped; a
// document with no usable key is an error.
func DecodeJWKS(data []byte) (map[string]crypto.PublicKey, error) {
	var set jwkset.JWKSMarshal
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]crypto.PublicKey, len(set.Keys))
	for _, m := range set.Keys {
		jwk, err := jwkset.NewJWKFromMarshal(m, jwkset.JWKMarshalOptions{}, jwkset.JWKValidateOptions{})
		if err != nil {
			slog.Debug("skipping jwk", "kid", m.KID, "kty", m.KTY, "err", err)
			continue
		}
		if !isSigningKey(jwk) {
			continue
		}
		keys[m.KID] = jwk.Key()
	}

	if len(keys) == 0 {
		return nil, errors.New("decode jwks: no usable signing keys")
	}

	return keys, nil
}

// isSigningKey reports whether jwk is an asymmetric public key meant for
// signatures.
func isSigningKey(jwk jwkset.JWK) bool {
	if use := string(jwk.Marshal().USE); use != "" && use != "sig" {
		return false
	}
	switch jwk.Key().(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey, ed25519.PublicKey:
		return true
	default:
		return false
	}
}

// storageKey resolves kid against a jwkset storage. A token without a kid
// matches only when the storage holds a single signing key.
func storageKey(ctx context.Context, store jwkset.Storage, kid string) (crypto.PublicKey, error) {
	if kid != "" {
		jwk, err := store.KeyRead(ctx, kid)
		switch {
		case errors.Is(err, jwkset.ErrKeyNotFound):
			return nil, fmt.Errorf("key %q: %w", kid, ErrKeyNotFound)
		case err != nil:
			return nil, fmt.Errorf("key %q: %w", kid, err)
		case !isSigningKey(jwk):
			return nil, fmt.Errorf("key %q is not a signing key: %w", kid, ErrKeyNotFound)
		}
		return jwk.Key(), nil
	}

	all, err := store.KeyReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}

	var found []crypto.PublicKey
	for _, jwk := range all {
		if isSigningKey(jwk) {
			found = append(found, jwk.Key())
		}
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("token without kid and %d signing keys: %w", len(found), ErrKeyNotFound)
	}
	return found[0], nil
}
