package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"malayalees/src/core/domain"
)

// TokenSource logs in to the backend with a service account and caches the
// resulting JWT until shortly before it expires.
type TokenSource struct {
	loginURL string
	username string
	password string
	http     *http.Client
	now      func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewTokenSource creates a token source for the given /api base URL.
func NewTokenSource(apiBase, username, password string, httpClient *http.Client) *TokenSource {
	return &TokenSource{
		loginURL: apiBase + "/authenticate",
		username: username,
		password: password,
		http:     httpClient,
		now:      time.Now,
	}
}

// Token returns a cached token or logs in again.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expires) {
		return s.token, nil
	}

	token, err := s.login(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	s.expires = s.expiryOf(token)
	return token, nil
}

// Invalidate drops the cached token so the next call logs in again.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expires = time.Time{}
	s.mu.Unlock()
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type loginResponse struct {
	IDToken string `json:"id_token"`
}

func (s *TokenSource) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{Username: s.username, Password: s.password, RememberMe: true})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.loginURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", domain.NewUnavailableError("backend login failed: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewUpstreamError(fmt.Sprintf("backend login returned status %d", resp.StatusCode))
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if out.IDToken == "" {
		return "", domain.NewUpstreamError("backend login returned no token")
	}
	return out.IDToken, nil
}

// expiryOf reads exp without verifying the signature; the backend owns the key.
// Tokens without a readable exp are reused for five minutes.
func (s *TokenSource) expiryOf(token string) time.Time {
	fallback := s.now().Add(5 * time.Minute)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Add(-domain.TokenExpiryLeeway)
}
