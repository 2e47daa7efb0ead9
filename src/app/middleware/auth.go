package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/response"
	"malayalees/src/core/domain"
	"malayalees/src/core/requestinfo"
)

// SessionCookie is the cookie the identity provider stores the session token in.
const SessionCookie = "__session"

// ContextKeyPrincipal is the gin context key for the authenticated caller.
const ContextKeyPrincipal = "principal"

// Authenticator turns a session token into a caller.
type Authenticator interface {
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}

// Authenticate attaches the caller when a session token is presented, either
// as a Bearer token or in the session cookie. Requests without a token pass
// through anonymously; a token that fails verification is rejected.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := sessionToken(c)
		if err != nil {
			response.Unauthorized(c, err.Error(), GetRequestID(c))
			c.Abort()
			return
		}
		if token == "" || auth == nil {
			c.Next()
			return
		}

		p, err := auth.Verify(c.Request.Context(), token)
		if err != nil {
			if !domain.IsUnavailable(err) && !domain.IsUnauthorized(err) {
				err = domain.NewUnavailableError("authentication is not available")
			}
			c.Error(err)
			response.FromDomainError(c, err, GetRequestID(c))
			c.Abort()
			return
		}

		c.Set(ContextKeyPrincipal, p)
		c.Request = c.Request.WithContext(requestinfo.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func sessionToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		const bearerPrefix = "Bearer "
		if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return "", errors.New("invalid authorization header format")
		}
		token := strings.TrimSpace(header[len(bearerPrefix):])
		if token == "" {
			return "", errors.New("token is empty")
		}
		return token, nil
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie, nil
	}
	return "", nil
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPrincipal(c) == nil {
			response.Unauthorized(c, "sign in required", GetRequestID(c))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.Unauthorized(c, "sign in required", GetRequestID(c))
			c.Abort()
			return
		}
		if !p.IsAdmin() {
			response.Forbidden(c, "admin role required", GetRequestID(c))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller or nil.
func GetPrincipal(c *gin.Context) *domain.Principal {
	if v, ok := c.Get(ContextKeyPrincipal); ok {
		if p, ok := v.(*domain.Principal); ok {
			return p
		}
	}
	return nil
}

// IsAdmin reports whether the caller is an admin.
func IsAdmin(c *gin.Context) bool {
	return GetPrincipal(c).IsAdmin()
}
