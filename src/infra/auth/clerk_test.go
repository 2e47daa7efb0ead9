package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malayalees/src/core/domain"
	"malayalees/src/infra/config"
	"malayalees/src/infra/logger"
)

type keyServer struct {
	srv     *httptest.Server
	fetches atomic.Int32
	down    atomic.Bool
	set     atomic.Value // []byte
}

func newKey(t *testing.T, kid string) jwk.Key {
	t.Helper()
	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	key, err := jwk.Import(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, kid))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256()))
	return key
}

func newKeyServer(t *testing.T, keys ...jwk.Key) *keyServer {
	t.Helper()
	ks := &keyServer{}
	ks.publish(t, keys...)
	ks.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ks.fetches.Add(1)
		if ks.down.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(ks.set.Load().([]byte))
	}))
	t.Cleanup(ks.srv.Close)
	return ks
}

func (ks *keyServer) publish(t *testing.T, keys ...jwk.Key) {
	t.Helper()
	set := jwk.NewSet()
	for _, k := range keys {
		pub, err := jwk.PublicKeyOf(k)
		require.NoError(t, err)
		require.NoError(t, set.AddKey(pub))
	}
	data, err := json.Marshal(set)
	require.NoError(t, err)
	ks.set.Store(data)
}

func sign(t *testing.T, key jwk.Key, claims map[string]any) string {
	t.Helper()
	b := jwt.NewBuilder().
		Subject("user_123").
		Issuer("https://clerk.example.com").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour))
	for k, v := range claims {
		b = b.Claim(k, v)
	}
	tok, err := b.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), key))
	require.NoError(t, err)
	return string(signed)
}

func newVerifier(url string) *Verifier {
	return NewVerifier(config.AuthConfig{
		JWKSURL:         url,
		Issuer:          "https://clerk.example.com",
		RoleClaim:       "role",
		AdminRoles:      []string{"admin", "org:admin"},
		RefreshInterval: time.Minute,
	}, logger.Discard())
}

func TestVerify_Member(t *testing.T) {
	key := newKey(t, "k1")
	ks := newKeyServer(t, key)

	p, err := newVerifier(ks.srv.URL).Verify(context.Background(), sign(t, key, map[string]any{
		"email": "anu@example.com",
		"name":  "Anu Nair",
	}))
	require.NoError(t, err)
	assert.Equal(t, "user_123", p.UserID)
	assert.Equal(t, "anu@example.com", p.Email)
	assert.Equal(t, "Anu Nair", p.Name)
	assert.Equal(t, domain.RoleMember, p.Role)
}

func TestVerify_AdminRole(t *testing.T) {
	key := newKey(t, "k1")
	ks := newKeyServer(t, key)
	v := newVerifier(ks.srv.URL)

	p, err := v.Verify(context.Background(), sign(t, key, map[string]any{"role": "org:admin"}))
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())

	p, err = v.Verify(context.Background(), sign(t, key, map[string]any{"role": []string{"member", "admin"}}))
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())

	assert.Equal(t, int32(1), ks.fetches.Load(), "key set should be cached")
}

func TestVerify_WrongKey(t *testing.T) {
	key := newKey(t, "k1")
	ks := newKeyServer(t, key)

	_, err := newVerifier(ks.srv.URL).Verify(context.Background(), sign(t, newKey(t, "k1"), nil))
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestVerify_Garbage(t *testing.T) {
	ks := newKeyServer(t, newKey(t, "k1"))

	_, err := newVerifier(ks.srv.URL).Verify(context.Background(), "not-a-token")
	assert.True(t, domain.IsUnauthorized(err))
}

func TestVerify_RotatedKeyRefetches(t *testing.T) {
	oldKey := newKey(t, "k1")
	ks := newKeyServer(t, oldKey)
	v := newVerifier(ks.srv.URL)
	clock := time.Now()
	v.now = func() time.Time { return clock }

	_, err := v.Verify(context.Background(), sign(t, oldKey, nil))
	require.NoError(t, err)

	newKey := newKey(t, "k2")
	ks.publish(t, oldKey, newKey)

	// Within the refresh interval the cached set is used.
	_, err = v.Verify(context.Background(), sign(t, newKey, nil))
	require.Error(t, err)

	clock = clock.Add(2 * time.Minute)
	_, err = v.Verify(context.Background(), sign(t, newKey, nil))
	require.NoError(t, err)
	assert.Equal(t, int32(2), ks.fetches.Load())
}

func TestVerify_FailedRefetchIsThrottled(t *testing.T) {
	key := newKey(t, "k1")
	ks := newKeyServer(t, key)
	v := newVerifier(ks.srv.URL)
	clock := time.Now()
	v.now = func() time.Time { return clock }

	_, err := v.Verify(context.Background(), sign(t, key, nil))
	require.NoError(t, err)

	ks.down.Store(true)
	clock = clock.Add(2 * time.Minute)
	stranger := newKey(t, "k9")
	for range 5 {
		_, err = v.Verify(context.Background(), sign(t, stranger, nil))
		assert.True(t, domain.IsUnauthorized(err))
	}
	assert.Equal(t, int32(2), ks.fetches.Load(), "one refetch per interval while the provider is down")

	// Cached keys keep working during the outage.
	_, err = v.Verify(context.Background(), sign(t, key, nil))
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	_, err = v.Verify(context.Background(), sign(t, stranger, nil))
	require.Error(t, err)
	assert.Equal(t, int32(3), ks.fetches.Load())
}

func TestVerify_NotConfigured(t *testing.T) {
	_, err := newVerifier("").Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
