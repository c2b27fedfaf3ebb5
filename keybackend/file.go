package keybackend

import (
	"fmt"
	"os"
)

// LoadKeySetFromFile loads a JWKS document from a JSON file:
//
//	{
//	  "keys": [
//	    {"kty": "RSA", "kid": "2024-01", "use": "sig", "n": "...", "e": "AQAB"}
//	  ]
//	}
func LoadKeySetFromFile(path string) (*MapKeySet, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read jwks file: %w", err)
	}

	keys, err := DecodeJWKS(data)
	if err != nil {
		return nil, fmt.Errorf("parse jwks file: %w", err)
	}

	return NewMapKeySet(keys), nil
}
