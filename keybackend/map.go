// Package keybackend provides KeySet implementations for token verification keys.
package keybackend

import (
	"context"
	"crypto"
	"fmt"
)

// MapKeySet resolves keys from an in-memory map of key id to public key.
// Suitable for a JWKS file shipped with the configuration.
type MapKeySet struct {
	keys map[string]crypto.PublicKey
}

// NewMapKeySet creates a new map-based key set.
func NewMapKeySet(keys map[string]crypto.PublicKey) *MapKeySet {
	return &MapKeySet{keys: keys}
}

// Key retrieves the key for kid from the map.
func (s *MapKeySet) Key(_ context.Context, kid string) (crypto.PublicKey, error) {
	key, found := lookup(s.keys, kid)
	if !found {
		return nil, fmt.Errorf("key %q: %w", kid, ErrKeyNotFound)
	}
	return key, nil
}

// lookup finds kid in keys. A token without a kid matches only when the set
// holds a single key.
func lookup(keys map[string]crypto.PublicKey, kid string) (crypto.PublicKey, bool) {
	if key, ok := keys[kid]; ok {
		return key, true
	}
	if kid == "" && len(keys) == 1 {
		for _, key := range keys {
			return key, true
		}
	}
	return nil, false
}
