// Package auth verifies browser session tokens issued by the identity provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"malayalees/src/core/domain"
	"malayalees/src/infra/config"
)

// ErrNotConfigured is returned when no key set URL was configured.
var ErrNotConfigured = errors.New("session verification is not configured")

// Verifier checks RS256 session tokens against a remote JWKS.
// The key set is fetched lazily and refetched when a token is signed by an
// unknown key, at most once per refresh interval.
type Verifier struct {
	jwksURL    string
	issuer     string
	roleClaim  string
	adminRoles []string
	refresh    time.Duration
	log        *slog.Logger
	now        func() time.Time

	mu        sync.Mutex
	keys      jwk.Set
	fetchedAt time.Time
}

// NewVerifier creates a verifier from auth configuration.
func NewVerifier(cfg config.AuthConfig, log *slog.Logger) *Verifier {
	return &Verifier{
		jwksURL:    cfg.JWKSURL,
		issuer:     cfg.Issuer,
		roleClaim:  cfg.RoleClaim,
		adminRoles: cfg.AdminRoles,
		refresh:    cfg.RefreshInterval,
		log:        log,
		now:        time.Now,
	}
}

// Verify validates the token and returns the caller it identifies.
func (v *Verifier) Verify(ctx context.Context, raw string) (*domain.Principal, error) {
	if v.jwksURL == "" {
		return nil, ErrNotConfigured
	}

	keys, err := v.keySet(ctx, false)
	if err != nil {
		return nil, err
	}

	token, err := v.parse(raw, keys)
	if err != nil && v.stale() {
		// The signing key may have rotated since the last fetch.
		if keys, ferr := v.keySet(ctx, true); ferr == nil {
			token, err = v.parse(raw, keys)
		}
	}
	if err != nil {
		v.log.Debug("session token rejected", "error", err)
		return nil, domain.NewUnauthorizedError("invalid session token")
	}

	return v.principal(token)
}

func (v *Verifier) parse(raw string, keys jwk.Set) (jwt.Token, error) {
	opts := []jwt.ParseOption{
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(5 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	return jwt.Parse([]byte(raw), opts...)
}

func (v *Verifier) principal(token jwt.Token) (*domain.Principal, error) {
	sub, ok := token.Subject()
	if !ok || sub == "" {
		return nil, domain.NewUnauthorizedError("session token has no subject")
	}

	p := &domain.Principal{
		UserID: sub,
		Email:  stringClaim(token, "email"),
		Name:   stringClaim(token, "name"),
		Role:   domain.RoleMember,
	}
	if p.Name == "" {
		p.Name = strings.TrimSpace(stringClaim(token, "first_name") + " " + stringClaim(token, "last_name"))
	}
	if v.isAdmin(token) {
		p.Role = domain.RoleAdmin
	}
	return p, nil
}

// isAdmin accepts the role claim either as a string or as a list of strings.
func (v *Verifier) isAdmin(token jwt.Token) bool {
	var claim any
	if err := token.Get(v.roleClaim, &claim); err != nil {
		return false
	}
	switch role := claim.(type) {
	case string:
		return slices.Contains(v.adminRoles, role)
	case []any:
		for _, r := range role {
			if s, ok := r.(string); ok && slices.Contains(v.adminRoles, s) {
				return true
			}
		}
	case []string:
		for _, s := range role {
			if slices.Contains(v.adminRoles, s) {
				return true
			}
		}
	}
	return false
}

func stringClaim(token jwt.Token, name string) string {
	var s string
	if err := token.Get(name, &s); err != nil {
		return ""
	}
	return s
}

func (v *Verifier) stale() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now().Sub(v.fetchedAt) >= v.refresh
}

func (v *Verifier) keySet(ctx context.Context, force bool) (jwk.Set, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys != nil && !force {
		return v.keys, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set, err := jwk.Fetch(fetchCtx, v.jwksURL)
	if err != nil {
		v.log.Error("failed to fetch key set", "error", err, "url", v.jwksURL)
		if v.keys != nil {
			// Hold off the next refetch for a full interval.
			v.fetchedAt = v.now()
			return v.keys, nil
		}
		return nil, domain.NewUnavailableError(fmt.Sprintf("identity provider unreachable: %v", err))
	}

	v.keys = set
	v.fetchedAt = v.now()
	return set, nil
}
