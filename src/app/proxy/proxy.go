// Package proxy forwards whitelisted /api/proxy/* calls to the backend API
// under the service account, scoped to the request's tenant.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/response"
	"malayalees/src/app/middleware"
	"malayalees/src/core/ports"
)

type forwardKey struct{}

// forward carries per-request values from the handler into Rewrite.
type forward struct {
	token     string
	tenantID  string
	requestID string
}

// blockedPrefixes hold secrets and are never forwarded, whatever the config says.
var blockedPrefixes = map[string]bool{
	"tenant-settings": true,
}

// Access decides who may use a proxied resource.
type Access int

const (
	// AccessPublic resources can be read by anyone; writes need an admin.
	AccessPublic Access = iota + 1
	// AccessAdmin resources need an admin for every method.
	AccessAdmin
)

// Prefixes lists the first path segments the proxy forwards.
type Prefixes struct {
	Public []string
	Admin  []string
}

// ReverseProxy relays requests to the backend /api root.
type ReverseProxy struct {
	target   *url.URL
	prefixes map[string]Access
	tokens   ports.TokenProvider
	proxy    *httputil.ReverseProxy
	log      *slog.Logger
}

// NewReverseProxy creates a proxy to apiBase (the backend URL ending in /api).
// Only paths whose first segment is listed in prefixes are forwarded.
// transport may be nil to use http.DefaultTransport.
func NewReverseProxy(apiBase string, prefixes Prefixes, tokens ports.TokenProvider, transport http.RoundTripper, log *slog.Logger) (*ReverseProxy, error) {
	target, err := url.Parse(strings.TrimRight(apiBase, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", apiBase)
	}

	rp := &ReverseProxy{
		target:   target,
		prefixes: make(map[string]Access, len(prefixes.Public)+len(prefixes.Admin)),
		tokens:   tokens,
		log:      log,
	}
	rp.add(prefixes.Public, AccessPublic)
	// Admin wins when a prefix is listed twice.
	rp.add(prefixes.Admin, AccessAdmin)

	rp.proxy = &httputil.ReverseProxy{
		Rewrite:        rp.rewrite,
		Transport:      transport,
		ModifyResponse: rp.modifyResponse,
		ErrorHandler:   rp.errorHandler,
	}
	return rp, nil
}

func (p *ReverseProxy) add(prefixes []string, access Access) {
	for _, prefix := range prefixes {
		prefix = strings.Trim(strings.TrimSpace(prefix), "/")
		if prefix == "" {
			continue
		}
		if blockedPrefixes[prefix] {
			p.log.Warn("refusing to proxy sensitive resource", "prefix", prefix)
			continue
		}
		p.prefixes[prefix] = access
	}
}

// Allowed reports whether a proxied sub-path may be forwarded and returns it
// cleaned together with the access level of its resource.
func (p *ReverseProxy) Allowed(subPath string) (string, Access, bool) {
	if subPath == "" || strings.Contains(subPath, "..") {
		return "", 0, false
	}
	cleaned := path.Clean("/" + strings.TrimLeft(subPath, "/"))
	first, _, _ := strings.Cut(strings.TrimPrefix(cleaned, "/"), "/")
	access, ok := p.prefixes[first]
	if !ok {
		return "", 0, false
	}
	return cleaned, access, true
}

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// Handler returns the gin handler for ANY /api/proxy/*path. Reads of public
// resources are open; everything else needs an admin caller.
func (p *ReverseProxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := middleware.GetRequestID(c)

		subPath, access, ok := p.Allowed(c.Param("path"))
		if !ok {
			response.NotFound(c, "The requested resource was not found", requestID)
			return
		}
		if access == AccessAdmin || !isRead(c.Request.Method) {
			caller := middleware.GetPrincipal(c)
			if caller == nil {
				response.Unauthorized(c, "sign in required", requestID)
				return
			}
			if !caller.IsAdmin() {
				response.Forbidden(c, "admin role required", requestID)
				return
			}
		}

		token, err := p.tokens.Token(c.Request.Context())
		if err != nil {
			c.Error(err)
			response.FromDomainError(c, err, requestID)
			return
		}

		fw := forward{token: token, tenantID: middleware.GetTenantID(c), requestID: requestID}
		req := c.Request.Clone(context.WithValue(c.Request.Context(), forwardKey{}, fw))
		req.URL.Path = subPath
		req.URL.RawPath = ""

		p.proxy.ServeHTTP(c.Writer, req)
	}
}

func (p *ReverseProxy) rewrite(pr *httputil.ProxyRequest) {
	fw, _ := pr.In.Context().Value(forwardKey{}).(forward)

	pr.SetURL(p.target)
	pr.SetXForwarded()

	pr.Out.Header.Del("Cookie")
	pr.Out.Header.Del(middleware.TenantHeader)
	pr.Out.Header.Set("Authorization", "Bearer "+fw.token)
	if fw.tenantID != "" {
		pr.Out.Header.Set(middleware.TenantHeader, fw.tenantID)
		if isRead(pr.Out.Method) {
			q := pr.Out.URL.Query()
			q.Set("tenantId.equals", fw.tenantID)
			pr.Out.URL.RawQuery = q.Encode()
		}
	}
	if fw.requestID != "" {
		pr.Out.Header.Set("X-Request-ID", fw.requestID)
	}
}

func (p *ReverseProxy) modifyResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		// The service token was rejected; log in again on the next call.
		p.tokens.Invalidate()
	}
	resp.Header.Del("Set-Cookie")
	return nil
}

func (p *ReverseProxy) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	fw, _ := r.Context().Value(forwardKey{}).(forward)
	if errors.Is(err, context.Canceled) {
		p.log.Debug("proxy request canceled", "path", r.URL.Path, "request_id", fw.requestID)
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	status, code := http.StatusBadGateway, "UPSTREAM_ERROR"
	if isTimeoutError(err) {
		status, code = http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
	}
	p.log.Error("proxy request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"error", err,
		"request_id", fw.requestID,
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response.Error{Error: response.ErrorDetail{
		Code:      code,
		Message:   "backend is unreachable",
		RequestID: fw.requestID,
	}})
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
