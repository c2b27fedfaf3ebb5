package keybackend_test

import (
	"context"
	"crypto/rsa"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sagarc03/filetrail/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteKeySet_CachesAfterFirstFetch(t *testing.T) {
	priv, k := rsaJWK(t, "k1")
	srv := newJWKSServer(t, k)
	ks, err := keybackend.NewRemoteKeySet(t.Context(), srv.URL, keybackend.RemoteOptions{})
	require.NoError(t, err)
	ctx := context.Background()

	for range 3 {
		key, err := ks.Key(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, priv.PublicKey.Equal(key.(*rsa.PublicKey)))
	}

	assert.Equal(t, int32(1), srv.hits.Load(), "keys should be served from cache")
}

func TestRemoteKeySet_UnknownKidTriggersRefetch(t *testing.T) {
	_, oldKey := rsaJWK(t, "old")
	newPriv, newKey := rsaJWK(t, "new")
	srv := newJWKSServer(t, oldKey)
	ks, err := keybackend.NewRemoteKeySet(t.Context(), srv.URL, keybackend.RemoteOptions{RefreshInterval: time.Hour})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ks.Key(ctx, "old")
	require.NoError(t, err)

	// provider rotates its keys
	srv.set(t, http.StatusOK, oldKey, newKey)

	key, err := ks.Key(ctx, "new")
	require.NoError(t, err)
	assert.True(t, newPriv.PublicKey.Equal(key.(*rsa.PublicKey)))
	assert.GreaterOrEqual(t, srv.hits.Load(), int32(2))
}

func TestRemoteKeySet_UnknownKidRefetchIsRateLimited(t *testing.T) {
	_, k := rsaJWK(t, "k1")
	srv := newJWKSServer(t, k)
	ks, err := keybackend.NewRemoteKeySet(t.Context(), srv.URL, keybackend.RemoteOptions{RefreshInterval: time.Hour})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ks.Key(ctx, "k1")
	require.NoError(t, err)
	before := srv.hits.Load()

	// first unknown kid is allowed one refetch, the rest are rejected locally
	for range 5 {
		_, err = ks.Key(ctx, "missing")
		assert.ErrorIs(t, err, keybackend.ErrKeyNotFound)
	}

	assert.LessOrEqual(t, srv.hits.Load(), before+1)
}

func TestRemoteKeySet_RefreshesInBackground(t *testing.T) {
	_, k := rsaJWK(t, "k1")
	srv := newJWKSServer(t, k)
	_, err := keybackend.NewRemoteKeySet(t.Context(), srv.URL, keybackend.RemoteOptions{CacheTTL: 20 * time.Millisecond})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return srv.hits.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRemoteKeySet_ProviderOutageServesCachedKey(t *testing.T) {
	priv, k := rsaJWK(t, "k1")
	srv := newJWKSServer(t, k)
	ks, err := keybackend.NewRemoteKeySet(t.Context(), srv.URL, keybackend.RemoteOptions{
		CacheTTL:        10 * time.Millisecond,
		RefreshInterval: time.Hour,
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ks.Key(ctx, "k1")
	require.NoError(t, err)

	srv.set(t, http.StatusInternalServerError)
	srv.slow(300 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	start := time.Now()
	for range 10 {
		key, err := ks.Key(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, priv.PublicKey.Equal(key.(*rsa.PublicKey)))
	}

	assert.Less(t, time.Since(start), 300*time.Millisecond, "known keys must not wait on the provider")
}

func TestRemoteKeySet_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	_, oldKey := rsaJWK(t, "old")
	newPriv, newKey := rsaJWK(t, "new")
	srv := newJWKSServer(t, oldKey)
	ks, err := keybackend.NewRemoteKeySet(t.Context(), srv.URL, keybackend.RemoteOptions{RefreshInterval: time.Hour})
	require.NoError(t, err)
	before := srv.hits.Load()

	srv.set(t, http.StatusOK, oldKey, newKey)
	srv.slow(200 * time.Millisecond)

	cancelled, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- ks.Refresh(cancelled) }()

	require.Eventually(t, func() bool {
		return srv.hits.Load() > before
	}, time.Second, 5*time.Millisecond)

	secondErr := make(chan error, 1)
	go func() { secondErr <- ks.Refresh(context.Background()) }()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	require.NoError(t, <-secondErr)

	key, err := ks.Key(context.Background(), "new")
	require.NoError(t, err)
	assert.True(t, newPriv.PublicKey.Equal(key.(*rsa.PublicKey)))
}

func TestRemoteKeySet_FetchErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := newJWKSServer(t)
		srv.set(t, http.StatusNotFound)
		ks, err := keybackend.NewRemoteKeySet(t.Context(), srv.URL, keybackend.RemoteOptions{})
		require.NoError(t, err)

		_, err = ks.Key(context.Background(), "k1")
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := newJWKSServer(t)
		url := srv.URL
		srv.Close()
		ks, err := keybackend.NewRemoteKeySet(t.Context(), url, keybackend.RemoteOptions{})
		require.NoError(t, err)

		_, err = ks.Key(context.Background(), "k1")
		assert.Error(t, err)
	})
}

func TestRemoteKeySet_ConcurrentFirstUse(t *testing.T) {
	_, k := rsaJWK(t, "k1")
	srv := newJWKSServer(t, k)
	ks, err := keybackend.NewRemoteKeySet(t.Context(), srv.URL, keybackend.RemoteOptions{})
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ks.Key(ctx, "k1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, srv.hits.Load(), int32(2))
}
