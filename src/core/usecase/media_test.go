package usecase

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 4000)...)

func newMediaService(b *fakeBackend) *MediaService {
	return NewMediaService(b, newEventService(b, nil), discard())
}

func TestMediaUpload_SniffsType(t *testing.T) {
	b := newFakeBackend()
	seedEvent(b, 1, true)
	s := newMediaService(b)

	media, err := s.Upload(context.Background(), tenant, &domain.Principal{UserID: "user_1"}, MediaUploadInput{
		EventID:  1,
		FileName: "../../flyer.jpeg",
		Size:     int64(len(pngBytes)),
		IsPublic: true,
		Content:  bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", media.ContentType)

	require.Len(t, b.uploads, 1)
	up := b.uploads[0]
	assert.Equal(t, "flyer.png", up.FileName)
	assert.Equal(t, "flyer", up.Title)
	assert.Equal(t, "user_1", up.UploadedBy)
	assert.Equal(t, pngBytes, b.uploadBodies[0], "sniffed bytes are replayed")
}

func TestMediaUpload_Rejects(t *testing.T) {
	b := newFakeBackend()
	seedEvent(b, 1, true)
	s := newMediaService(b)
	ctx := context.Background()

	_, err := s.Upload(ctx, tenant, nil, MediaUploadInput{EventID: 1, FileName: "notes.txt", Size: 5, Content: strings.NewReader("hello")})
	assert.True(t, domain.IsValidationError(err))

	_, err = s.Upload(ctx, tenant, nil, MediaUploadInput{EventID: 1, FileName: "big.png", Size: domain.MaxUploadSize + 1, Content: bytes.NewReader(pngBytes)})
	assert.True(t, domain.IsValidationError(err))

	_, err = s.Upload(ctx, tenant, nil, MediaUploadInput{EventID: 2, FileName: "a.png", Size: 10, Content: bytes.NewReader(pngBytes)})
	assert.True(t, domain.IsNotFound(err))

	assert.Empty(t, b.uploads)
}

func TestMediaList_PublicFilters(t *testing.T) {
	b := newFakeBackend()
	seedEvent(b, 1, true)
	s := newMediaService(b)
	featured := true

	_, err := s.List(context.Background(), tenant, 1, MediaFilter{MediaType: "gallery", Featured: &featured}, false)
	require.NoError(t, err)

	q := b.listQueries[len(b.listQueries)-1]
	assert.Equal(t, []string{"displayOrder,asc", "createdAt,desc"}, q.Sort)
	assert.Equal(t, []ports.Criterion{
		{Field: "eventId", Op: ports.OpEquals, Value: "1"},
		{Field: "isPublic", Op: ports.OpEquals, Value: "true"},
		{Field: "eventMediaType", Op: ports.OpEquals, Value: "gallery"},
		{Field: "isFeaturedImage", Op: ports.OpEquals, Value: "true"},
	}, q.Criteria)
}

func TestMediaPatch_Whitelist(t *testing.T) {
	b := newFakeBackend()
	b.media[5] = domain.EventMedia{ID: 5, Title: "old"}
	s := newMediaService(b)

	_, err := s.Patch(context.Background(), tenant, 5, map[string]any{"fileUrl": "http://evil"})
	assert.True(t, domain.IsValidationError(err))

	m, err := s.Patch(context.Background(), tenant, 5, map[string]any{"title": "new", "isHeroImage": true})
	require.NoError(t, err)
	assert.Equal(t, "new", m.Title)
	assert.True(t, m.IsHeroImage)
}
