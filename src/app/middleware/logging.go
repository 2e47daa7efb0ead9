package middleware

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// maxLoggedBody caps how much of each body ends up in the log line.
const maxLoggedBody = 2048

// Logging emits one line per request with the request and response bodies.
// Multipart uploads and raw webhook payloads are not captured.
func Logging(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		var reqBodyBytes []byte
		if c.Request.Body != nil && loggableBody(c) {
			reqBodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBodyBytes))
		}

		rec := &responseCapture{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		api := c.Request.Method + " " + path
		if query != "" {
			api = api + "?" + query
		}

		status := c.Writer.Status()
		logLine := fmt.Sprintf("%s | %s | %s | %s | %s | %d | %s | request: %s | response: %s |",
			time.Now().Format(time.RFC3339Nano),
			levelString(status),
			GetRequestID(c),
			GetTenantID(c),
			api,
			status,
			time.Since(start).Round(time.Microsecond),
			truncate(reqBodyBytes),
			truncate(rec.body.Bytes()),
		)
		if errs := c.Errors.String(); errs != "" {
			logLine += " errors: " + strings.TrimSpace(errs) + " |"
		}

		switch {
		case status >= 500:
			log.Error(logLine)
		case status >= 400:
			log.Warn(logLine)
		default:
			log.Info(logLine)
		}
	}
}

func loggableBody(c *gin.Context) bool {
	ct := c.ContentType()
	return !strings.HasPrefix(ct, "multipart/") && !strings.HasPrefix(c.Request.URL.Path, "/v1/webhooks/")
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}

// responseCapture captures response body while delegating to original writer.
type responseCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.body.Len() < maxLoggedBody+1 {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) WriteString(s string) (int, error) {
	if r.body.Len() < maxLoggedBody+1 {
		r.body.WriteString(s)
	}
	return r.ResponseWriter.WriteString(s)
}

func levelString(status int) string {
	switch {
	case status >= 500:
		return "ERROR"
	case status >= 400:
		return "WARN"
	default:
		return "INFO"
	}
}
