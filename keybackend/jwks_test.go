package keybackend_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"testing"

	"github.com/MicahParks/jwkset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filetrail/keybackend"
)

func TestDecodeJWKS_SupportedKeyTypes(t *testing.T) {
	rsaPriv, rsaKey := rsaJWK(t, "rsa-1")
	ecPriv, ecKey := ecJWK(t, "ec-1")
	edPriv, edKey := edJWK(t, "ed-1")

	keys, err := keybackend.DecodeJWKS(marshalJWKS(t, rsaKey, ecKey, edKey))
	require.NoError(t, err)
	require.Len(t, keys, 3)

	rsaPub, ok := keys["rsa-1"].(*rsa.PublicKey)
	require.True(t, ok)
	assert.True(t, rsaPriv.PublicKey.Equal(rsaPub))

	ecPub, ok := keys["ec-1"].(*ecdsa.PublicKey)
	require.True(t, ok)
	assert.True(t, ecPriv.PublicKey.Equal(ecPub))

	edPub, ok := keys["ed-1"].(ed25519.PublicKey)
	require.True(t, ok)
	assert.True(t, edPriv.Public().(ed25519.PublicKey).Equal(edPub))
}

func TestDecodeJWKS_SkipsUnusableKeys(t *testing.T) {
	_, good := rsaJWK(t, "good")
	_, enc := rsaJWK(t, "enc")
	enc.USE = "enc"
	enc.ALG = ""

	keys, err := keybackend.DecodeJWKS(marshalJWKS(t,
		good,
		enc,
		jwkset.JWKMarshal{KTY: "oct", KID: "hmac", K: b64([]byte("shared-secret"))},
		jwkset.JWKMarshal{KTY: "EC", KID: "bad-curve", CRV: "P-192", X: "AA", Y: "AA"},
	))
	require.NoError(t, err)

	assert.Len(t, keys, 1)
	assert.Contains(t, keys, "good")
}

func TestDecodeJWKS_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "this is not json"},
		{name: "empty set", content: `{"keys": []}`},
		{name: "only symmetric keys", content: `{"keys": [{"kty": "oct", "kid": "s", "k": "c2VjcmV0"}]}`},
		{name: "malformed modulus", content: `{"keys": [{"kty": "RSA", "kid": "r", "n": "!!!", "e": "AQAB"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keybackend.DecodeJWKS([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}
