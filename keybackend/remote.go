package keybackend

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultCacheTTL        = time.Hour
	DefaultRefreshInterval = time.Minute

	defaultFetchTimeout = 10 * time.Second
)

// RemoteOptions tunes a RemoteKeySet. Zero values select the defaults.
type RemoteOptions struct {
	// Client is the HTTP client used to fetch the key set (default: 10s timeout)
	Client *http.Client
	// CacheTTL is the interval of the background refresh
	CacheTTL time.Duration
	// RefreshInterval is the minimum spacing between refetches triggered by
	// an unknown key id
	RefreshInterval time.Duration
}

// RemoteKeySet serves the JWKS document published by an identity provider
// from a jwkset storage.
//
// The document is fetched at construction and then every CacheTTL in the
// background until the construction context is done. A failed refresh keeps
// the cached keys, so requests never wait on the provider for a key they
// already have. When a token names a key id the cache does not know (the
// provider may have rotated its keys) one refetch is attempted; these are rate
// limited so that garbage tokens cannot hammer the provider, and concurrent
// refetches are coalesced into one request.
type RemoteKeySet struct {
	url     string
	client  *http.Client
	timeout time.Duration
	keys    jwkset.Storage
	limiter *rate.Limiter
	group   singleflight.Group
}

// NewRemoteKeySet creates a key set for the JWKS document at url. The first
// fetch may fail without error; keys are fetched again on demand.
func NewRemoteKeySet(ctx context.Context, url string, opts RemoteOptions) (*RemoteKeySet, error) {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	timeout := client.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	s := &RemoteKeySet{
		url:     url,
		client:  client,
		timeout: timeout,
		keys:    jwkset.NewMemoryStorage(),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}

	_, err := jwkset.NewStorageFromHTTP(url, jwkset.HTTPClientStorageOptions{
		Client:                    client,
		Ctx:                       ctx,
		HTTPTimeout:               timeout,
		NoErrorReturnFirstHTTPReq: true,
		RefreshErrorHandler: func(_ context.Context, err error) {
			slog.Warn("jwks refresh failed, keeping cached keys", "url", url, "err", err)
		},
		RefreshInterval: cacheTTL,
		Storage:         s.keys,
	})
	if err != nil {
		return nil, fmt.Errorf("remote key set: %w", err)
	}

	return s, nil
}

// Key returns the key for kid from the cache, refetching the key set once when
// kid is unknown and the rate limit allows.
func (s *RemoteKeySet) Key(ctx context.Context, kid string) (crypto.PublicKey, error) {
	key, err := storageKey(ctx, s.keys, kid)
	if !errors.Is(err, ErrKeyNotFound) {
		return key, err
	}

	if !s.limiter.Allow() {
		return nil, err
	}

	if rerr := s.Refresh(ctx); rerr != nil {
		return nil, fmt.Errorf("key %q: %w", kid, rerr)
	}

	return storageKey(ctx, s.keys, kid)
}

// Refresh fetches the key set now. Concurrent callers share one request, which
// is not cancelled when a caller gives up.
func (s *RemoteKeySet) Refresh(ctx context.Context) error {
	ch := s.group.DoChan(s.url, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		// without a refresh interval the storage fetches once into s.keys
		_, err := jwkset.NewStorageFromHTTP(s.url, jwkset.HTTPClientStorageOptions{
			Client:      s.client,
			Ctx:         fetchCtx,
			HTTPTimeout: s.timeout,
			Storage:     s.keys,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch jwks: %w", err)
		}

		slog.Debug("jwks refreshed", "url", s.url)
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("fetch jwks: %w", ctx.Err())
	}
}
