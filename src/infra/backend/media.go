package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

const mediaPath = "/event-medias"

func (c *Client) ListMedia(ctx context.Context, tenantID string, q ports.ListQuery) (*ports.PageResult[domain.EventMedia], error) {
	return list[domain.EventMedia](ctx, c, mediaPath, tenantID, q)
}

func (c *Client) CountMedia(ctx context.Context, tenantID string, criteria []ports.Criterion) (int64, error) {
	return count(ctx, c, mediaPath, tenantID, criteria)
}

func (c *Client) PatchMedia(ctx context.Context, tenantID string, id int64, fields map[string]any) (*domain.EventMedia, error) {
	return patch[domain.EventMedia](ctx, c, mediaPath, tenantID, id, fields)
}

func (c *Client) DeleteMedia(ctx context.Context, tenantID string, id int64) error {
	return remove(ctx, c, mediaPath, tenantID, id)
}

// UploadMedia forwards a file to the backend upload endpoint as multipart form data.
// The body is buffered so that the call can be replayed after a token refresh.
func (c *Client) UploadMedia(ctx context.Context, tenantID string, upload ports.MediaUpload) (*domain.EventMedia, error) {
	body, contentType, err := encodeUpload(tenantID, upload)
	if err != nil {
		return nil, err
	}
	r := request{
		method:      http.MethodPost,
		path:        mediaPath + "/upload",
		tenantID:    tenantID,
		body:        body,
		contentType: contentType,
	}
	var out domain.EventMedia
	if _, err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func encodeUpload(tenantID string, u ports.MediaUpload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ k, v string }{
		{"eventId", strconv.FormatInt(u.EventID, 10)},
		{"tenantId", tenantID},
		{"title", u.Title},
		{"description", u.Description},
		{"isPublic", strconv.FormatBool(u.IsPublic)},
		{"eventFlyer", strconv.FormatBool(u.EventFlyer)},
		{"isFeaturedImage", strconv.FormatBool(u.Featured)},
		{"isHeroImage", strconv.FormatBool(u.Hero)},
		{"upLoadedById", u.UploadedBy},
	}
	for _, f := range fields {
		if err := w.WriteField(f.k, f.v); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, u.FileName))
	h.Set("Content-Type", u.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, u.Content); err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
