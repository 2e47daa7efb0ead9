// Package backend is the HTTP adapter for the external CRUD API.
//
// Every call is authenticated with a service token from TokenSource, scoped to
// a tenant with the X-Tenant-ID header and tenantId criteria, and tagged with
// the caller's request id. Non-2xx answers are mapped to domain errors so the
// HTTP layer can render them like any other failure.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
	"malayalees/src/core/requestinfo"
	"malayalees/src/infra/config"
)

const (
	contentTypeJSON       = "application/json"
	contentTypeMergePatch = "application/merge-patch+json"
	maxErrorBody          = 64 << 10
)

var _ ports.Backend = (*Client)(nil)

// Client implements ports.Backend over HTTP.
type Client struct {
	apiBase string
	http    *http.Client
	tokens  *TokenSource
	log     *slog.Logger
}

// New creates a backend client from configuration.
func New(cfg config.BackendConfig, log *slog.Logger) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return NewWithHTTPClient(cfg.APIBase(), NewTokenSource(cfg.APIBase(), cfg.Username, cfg.Password, httpClient), httpClient, log)
}

// NewWithHTTPClient creates a client with explicit collaborators. Used by tests.
func NewWithHTTPClient(apiBase string, tokens *TokenSource, httpClient *http.Client, log *slog.Logger) *Client {
	return &Client{
		apiBase: apiBase,
		http:    httpClient,
		tokens:  tokens,
		log:     log,
	}
}

// Tokens exposes the token source so the generic proxy can share it.
func (c *Client) Tokens() *TokenSource {
	return c.tokens
}

// Health checks that the backend answers its management health endpoint.
func (c *Client) Health(ctx context.Context) error {
	u, err := url.Parse(c.apiBase)
	if err != nil {
		return err
	}
	u.Path = "/management/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewUnavailableError(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return domain.NewUpstreamError(fmt.Sprintf("backend health returned status %d", resp.StatusCode))
	}
	return nil
}

// request describes one backend call. Body is kept as bytes so the call can
// be replayed after a token refresh.
type request struct {
	method      string
	path        string
	query       url.Values
	tenantID    string
	body        []byte
	contentType string
}

func jsonRequest(method, path, tenantID string, payload any) (request, error) {
	r := request{method: method, path: path, tenantID: tenantID, contentType: contentTypeJSON}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("failed to encode request: %w", err)
		}
		r.body = b
	}
	return r, nil
}

// do performs the request and decodes a JSON answer into out (when non-nil).
// A 401 invalidates the cached token and the call is retried once.
func (c *Client) do(ctx context.Context, r request, out any) (http.Header, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.tokens.Invalidate()
		resp, err = c.send(ctx, r)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			// A fresh token was refused too; the caller's session is not at fault.
			c.log.Error("backend rejected service credentials", "method", r.method, "path", r.path)
			return resp.Header, domain.NewUpstreamError("backend rejected service credentials")
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, c.statusError(r, resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.Header, fmt.Errorf("failed to decode %s %s response: %w", r.method, r.path, err)
		}
	}
	return resp.Header, nil
}

func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	target := c.apiBase + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", contentTypeJSON)
	if r.contentType != "" && r.body != nil {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.tenantID != "" {
		req.Header.Set("X-Tenant-ID", r.tenantID)
	}
	if id := requestinfo.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("backend call failed", "method", r.method, "path", r.path, "error", err)
		return nil, domain.NewUnavailableError("backend unreachable")
	}
	c.log.Debug("backend call", "method", r.method, "path", r.path, "status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

// problem is the error body the backend returns (RFC 7807 with extras).
type problem struct {
	Title       string `json:"title"`
	Detail      string `json:"detail"`
	Message     string `json:"message"`
	EntityName  string `json:"entityName"`
	ErrorKey    string `json:"errorKey"`
	FieldErrors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"fieldErrors"`
}

func (p problem) text() string {
	switch {
	case p.Detail != "":
		return p.Detail
	case p.Title != "":
		return p.Title
	default:
		return p.Message
	}
}

func (c *Client) statusError(r request, resp *http.Response) error {
	var p problem
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &p)

	msg := p.text()
	if msg == "" {
		msg = fmt.Sprintf("%s %s returned status %d", r.method, r.path, resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if len(p.FieldErrors) > 0 {
			return domain.NewValidationError(p.FieldErrors[0].Field, p.FieldErrors[0].Message)
		}
		return domain.NewValidationError("", msg)
	case http.StatusForbidden:
		return domain.NewForbiddenError(msg)
	case http.StatusNotFound:
		return domain.NewNotFoundError(msg)
	case http.StatusConflict:
		return domain.NewConflictError(msg)
	default:
		c.log.Warn("backend error", "method", r.method, "path", r.path, "status", resp.StatusCode, "body", string(raw))
		return domain.NewUpstreamError(msg)
	}
}

// Generic resource helpers. Each resource file wires its paths through these.

func list[T any](ctx context.Context, c *Client, path, tenantID string, q ports.ListQuery) (*ports.PageResult[T], error) {
	r := request{method: http.MethodGet, path: path, query: listValues(tenantID, q), tenantID: tenantID}
	var items []T
	h, err := c.do(ctx, r, &items)
	if err != nil {
		return nil, err
	}
	return pageResult(items, h, q), nil
}

func get[T any](ctx context.Context, c *Client, path, tenantID string, id int64) (*T, error) {
	r := request{method: http.MethodGet, path: path + "/" + strconv.FormatInt(id, 10), tenantID: tenantID}
	var out T
	if _, err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func count(ctx context.Context, c *Client, path, tenantID string, criteria []ports.Criterion) (int64, error) {
	r := request{method: http.MethodGet, path: path + "/count", query: criteriaValues(tenantID, criteria), tenantID: tenantID}
	var n int64
	if _, err := c.do(ctx, r, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func create[T any](ctx context.Context, c *Client, path, tenantID string, payload *T) (*T, error) {
	r, err := jsonRequest(http.MethodPost, path, tenantID, payload)
	if err != nil {
		return nil, err
	}
	var out T
	if _, err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func update[T any](ctx context.Context, c *Client, path, tenantID string, id int64, payload *T) (*T, error) {
	r, err := jsonRequest(http.MethodPut, path+"/"+strconv.FormatInt(id, 10), tenantID, payload)
	if err != nil {
		return nil, err
	}
	var out T
	if _, err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func patch[T any](ctx context.Context, c *Client, path, tenantID string, id int64, fields map[string]any) (*T, error) {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["id"] = id
	r, err := jsonRequest(http.MethodPatch, path+"/"+strconv.FormatInt(id, 10), tenantID, payload)
	if err != nil {
		return nil, err
	}
	r.contentType = contentTypeMergePatch
	var out T
	if _, err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func remove(ctx context.Context, c *Client, path, tenantID string, id int64) error {
	r := request{method: http.MethodDelete, path: path + "/" + strconv.FormatInt(id, 10), tenantID: tenantID}
	_, err := c.do(ctx, r, nil)
	return err
}
