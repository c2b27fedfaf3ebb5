package keybackend_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/stretchr/testify/require"
)

func b64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func rsaJWK(t *testing.T, kid string) (*rsa.PrivateKey, jwkset.JWKMarshal) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return priv, jwkset.JWKMarshal{
		KTY: "RSA",
		KID: kid,
		USE: "sig",
		ALG: "RS256",
		N:   b64(priv.N.Bytes()),
		E:   b64(big.NewInt(int64(priv.E)).Bytes()),
	}
}

func ecJWK(t *testing.T, kid string) (*ecdsa.PrivateKey, jwkset.JWKMarshal) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	x := make([]byte, 32)
	y := make([]byte, 32)
	priv.X.FillBytes(x)
	priv.Y.FillBytes(y)

	return priv, jwkset.JWKMarshal{KTY: "EC", KID: kid, CRV: "P-256", X: b64(x), Y: b64(y)}
}

func edJWK(t *testing.T, kid string) (ed25519.PrivateKey, jwkset.JWKMarshal) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	return priv, jwkset.JWKMarshal{KTY: "OKP", KID: kid, CRV: "Ed25519", X: b64(pub)}
}

func marshalJWKS(t *testing.T, keys ...jwkset.JWKMarshal) []byte {
	t.Helper()
	if keys == nil {
		keys = []jwkset.JWKMarshal{}
	}
	data, err := json.Marshal(jwkset.JWKSMarshal{Keys: keys})
	require.NoError(t, err)
	return data
}

// jwksServer serves a swappable JWKS document and counts fetches.
type jwksServer struct {
	*httptest.Server
	mu     sync.Mutex
	body   []byte
	status int
	delay  time.Duration
	hits   atomic.Int32
}

func newJWKSServer(t *testing.T, keys ...jwkset.JWKMarshal) *jwksServer {
	t.Helper()
	s := &jwksServer{body: marshalJWKS(t, keys...), status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.mu.Lock()
		status, body, delay := s.status, s.body, s.delay
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) set(t *testing.T, status int, keys ...jwkset.JWKMarshal) {
	t.Helper()
	body := marshalJWKS(t, keys...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

func (s *jwksServer) slow(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

func writeTestFile(t *testing.T, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "jwks.json")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}
