// Package response defines consistent HTTP response structures.
// All API responses should use these types for consistency.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// Success represents a successful response with data.
type Success struct {
	Data any `json:"data"`
}

// Error represents an error response.
type Error struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Field is the field that caused the error (for validation errors)
	Field string `json:"field,omitempty"`

	// RequestID is the request ID for debugging
	RequestID string `json:"request_id,omitempty"`
}

// Paginated represents a paginated list response.
type Paginated struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// Page sends a 200 response with one page of a list.
func Page[T any](c *gin.Context, p *ports.PageResult[T]) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Paginated{
		Data:       items,
		Total:      p.Total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: p.TotalPages(),
	})
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success{Data: data})
}

// Created sends a 201 response with the created resource.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Success{Data: data})
}

// NoContent sends a 204 response with no body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// writeError sends an error envelope with the given status.
func writeError(c *gin.Context, status int, detail ErrorDetail) {
	c.JSON(status, Error{Error: detail})
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, message string, requestID string) {
	writeError(c, http.StatusBadRequest, ErrorDetail{Code: "BAD_REQUEST", Message: message, RequestID: requestID})
}

// ValidationError sends a 400 response for validation failures.
func ValidationError(c *gin.Context, field, message, requestID string) {
	writeError(c, http.StatusBadRequest, ErrorDetail{Code: "VALIDATION_ERROR", Message: message, Field: field, RequestID: requestID})
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message, requestID string) {
	writeError(c, http.StatusNotFound, ErrorDetail{Code: "NOT_FOUND", Message: message, RequestID: requestID})
}

// Forbidden sends a 403 response.
func Forbidden(c *gin.Context, message, requestID string) {
	writeError(c, http.StatusForbidden, ErrorDetail{Code: "FORBIDDEN", Message: message, RequestID: requestID})
}

// Unauthorized sends a 401 response.
func Unauthorized(c *gin.Context, message, requestID string) {
	writeError(c, http.StatusUnauthorized, ErrorDetail{Code: "UNAUTHORIZED", Message: message, RequestID: requestID})
}

// errorStatuses maps domain error kinds to HTTP statuses and API codes.
// Order matters only for errors that wrap more than one kind.
var errorStatuses = []struct {
	is     func(error) bool
	status int
	code   string
}{
	{domain.IsNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.IsValidationError, http.StatusBadRequest, "VALIDATION_ERROR"},
	{domain.IsConflict, http.StatusConflict, "CONFLICT"},
	{domain.IsForbidden, http.StatusForbidden, "FORBIDDEN"},
	{domain.IsUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.IsUpstream, http.StatusBadGateway, "UPSTREAM_ERROR"},
	{domain.IsUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
}

// FromDomainError converts a domain error to an HTTP response. Anything that
// is not a domain error becomes a 500 without leaking its text.
func FromDomainError(c *gin.Context, err error, requestID string) {
	for _, e := range errorStatuses {
		if !e.is(err) {
			continue
		}
		detail := ErrorDetail{Code: e.code, Message: err.Error(), RequestID: requestID}
		var domainErr *domain.DomainError
		if e.status == http.StatusBadRequest && errors.As(err, &domainErr) {
			detail.Field = domainErr.Field
			detail.Message = domainErr.Message
		}
		writeError(c, e.status, detail)
		return
	}
	writeError(c, http.StatusInternalServerError, ErrorDetail{
		Code:      "INTERNAL_ERROR",
		Message:   "An unexpected error occurred",
		RequestID: requestID,
	})
}
