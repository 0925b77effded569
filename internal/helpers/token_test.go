package helpers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testKID = "campsum-test-key"

type introspectSpy struct {
	user  *types.User
	err   error
	calls int
}

func (s *introspectSpy) lookup(string) (*types.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

// jwksServer publishes key under testKID the way the auth server does.
func jwksServer(t *testing.T, key *rsa.PublicKey) *httptest.Server {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKID,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/.well-known/jwks.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sessionClaims(sub uuid.UUID, expiresIn time.Duration) *SessionClaims {
	claims := &SessionClaims{
		Role:  "authenticated",
		Email: "student@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	claims.AppMetadata.Provider = "google"
	return claims
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims *SessionClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKID
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func newVerifier(t *testing.T, supabaseURL string, spy *introspectSpy) *TokenVerifier {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	v := NewTokenVerifier(ctx, supabaseURL, spy.lookup, testLogger)
	t.Cleanup(func() {
		v.Close()
		cancel()
	})
	return v
}

func TestVerifyAcceptsTokenSignedByPublishedKey(t *testing.T) {
	key := newRSAKey(t)
	srv := jwksServer(t, &key.PublicKey)
	spy := &introspectSpy{}
	v := newVerifier(t, srv.URL, spy)

	sub := uuid.New()
	token := signRS256(t, key, sessionClaims(sub, time.Hour))

	user, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, sub, user.ID)
	assert.Equal(t, "student@example.com", user.Email)
	assert.Equal(t, []string{"google"}, user.Providers)
	assert.Equal(t, token, user.AccessToken)
	assert.Zero(t, spy.calls)
}

func TestVerifyRejectsWithoutAskingAuthServer(t *testing.T) {
	key := newRSAKey(t)
	srv := jwksServer(t, &key.PublicKey)
	spy := &introspectSpy{user: &types.User{ID: uuid.New()}}
	v := newVerifier(t, srv.URL, spy)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", signRS256(t, key, sessionClaims(uuid.New(), -time.Minute))},
		{"signed by another key", signRS256(t, newRSAKey(t), sessionClaims(uuid.New(), time.Hour))},
		{"malformed", "not.a.jwt"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
	assert.Zero(t, spy.calls)
}

func TestVerifyFallsBackToAuthServerForSharedSecretTokens(t *testing.T) {
	key := newRSAKey(t)
	srv := jwksServer(t, &key.PublicKey)
	id := uuid.New()
	spy := &introspectSpy{user: &types.User{
		ID:          id,
		Email:       "legacy@example.com",
		AppMetadata: map[string]interface{}{"provider": "email", "providers": []interface{}{"email"}},
	}}
	v := newVerifier(t, srv.URL, spy)

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims(id, time.Hour))
	token, err := hs.SignedString([]byte("project-jwt-secret"))
	require.NoError(t, err)

	user, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "legacy@example.com", user.Email)
	assert.Equal(t, 1, spy.calls)

	spy.err = errors.New("response status code 401")
	_, err = v.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
	assert.Equal(t, 2, spy.calls)
}

func TestVerifyWithoutJWKSUsesAuthServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	id := uuid.New()
	spy := &introspectSpy{user: &types.User{ID: id}}
	v := newVerifier(t, srv.URL, spy)
	assert.Nil(t, v.jwks)

	user, err := v.Verify(signRS256(t, newRSAKey(t), sessionClaims(id, time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, 1, spy.calls)
}

func TestJWKSURL(t *testing.T) {
	assert.Equal(t, "https://proj.supabase.co/auth/v1/.well-known/jwks.json", JWKSURL("https://proj.supabase.co/"))
}
