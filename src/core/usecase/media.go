package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

// allowedMediaTypes are the upload types accepted, by detected MIME type.
var allowedMediaTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
	"video/mp4",
	"video/quicktime",
	"video/webm",
	"application/pdf",
}

// patchableMediaFields are the media fields an admin may change after upload.
var patchableMediaFields = map[string]bool{
	"title":                             true,
	"description":                       true,
	"isPublic":                          true,
	"eventFlyer":                        true,
	"isEventManagementOfficialDocument": true,
	"isFeaturedImage":                   true,
	"isHeroImage":                       true,
	"isActiveHeroImage":                 true,
	"displayOrder":                      true,
}

// MediaFilter narrows a media listing.
type MediaFilter struct {
	Page      int
	PerPage   int
	MediaType string
	Featured  *bool
	Hero      *bool
}

// MediaUploadInput is an upload received from an admin.
type MediaUploadInput struct {
	EventID     int64
	Title       string
	Description string
	FileName    string
	Size        int64
	IsPublic    bool
	EventFlyer  bool
	Featured    bool
	Hero        bool
	Content     io.Reader
}

// MediaService handles event media.
type MediaService struct {
	media  ports.MediaRepository
	events *EventService
	log    *slog.Logger
}

func NewMediaService(media ports.MediaRepository, events *EventService, log *slog.Logger) *MediaService {
	return &MediaService{media: media, events: events, log: log}
}

// List returns media of an event ordered by display order then newest first.
// Non-admin callers only see public media.
func (s *MediaService) List(ctx context.Context, tenantID string, eventID int64, f MediaFilter, admin bool) (*ports.PageResult[domain.EventMedia], error) {
	if _, err := s.events.Get(ctx, tenantID, eventID, admin); err != nil {
		return nil, err
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	q := ports.ListQuery{
		Page:    page,
		PerPage: perPage,
		Sort:    []string{"displayOrder,asc", "createdAt,desc"},
	}.Where("eventId", ports.OpEquals, strconv.FormatInt(eventID, 10))

	if !admin {
		q = q.Where("isPublic", ports.OpEquals, "true")
	}
	if f.MediaType != "" {
		q = q.Where("eventMediaType", ports.OpEquals, f.MediaType)
	}
	if f.Featured != nil {
		q = q.Where("isFeaturedImage", ports.OpEquals, strconv.FormatBool(*f.Featured))
	}
	if f.Hero != nil {
		q = q.Where("isHeroImage", ports.OpEquals, strconv.FormatBool(*f.Hero))
	}
	return s.media.ListMedia(ctx, tenantID, q)
}

// Upload checks the file and forwards it to the backend.
func (s *MediaService) Upload(ctx context.Context, tenantID string, caller *domain.Principal, in MediaUploadInput) (*domain.EventMedia, error) {
	if in.Content == nil || in.Size == 0 {
		return nil, domain.NewValidationError("file", "file is required")
	}
	if in.Size > domain.MaxUploadSize {
		return nil, domain.NewValidationError("file", fmt.Sprintf("file exceeds the %d MiB limit", domain.MaxUploadSize>>20))
	}
	if _, err := s.events.Get(ctx, tenantID, in.EventID, true); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !allowedMediaType(mtype) {
		return nil, domain.NewValidationError("file", fmt.Sprintf("file type %s is not allowed", mtype.String()))
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(in.FileName), filepath.Ext(in.FileName))
	}

	upload := ports.MediaUpload{
		EventID:     in.EventID,
		Title:       title,
		Description: in.Description,
		FileName:    safeFileName(in.FileName, mtype.Extension()),
		ContentType: mtype.String(),
		Size:        in.Size,
		IsPublic:    in.IsPublic,
		EventFlyer:  in.EventFlyer,
		Featured:    in.Featured,
		Hero:        in.Hero,
		Content:     io.MultiReader(bytes.NewReader(head), in.Content),
	}
	if caller != nil {
		upload.UploadedBy = caller.UserID
	}

	media, err := s.media.UploadMedia(ctx, tenantID, upload)
	if err != nil {
		return nil, err
	}
	s.log.Info("media uploaded",
		"tenant_id", tenantID,
		"event_id", in.EventID,
		"media_id", media.ID,
		"content_type", upload.ContentType,
		"size", in.Size,
	)
	return media, nil
}

func allowedMediaType(m *mimetype.MIME) bool {
	for _, t := range allowedMediaTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}

// safeFileName strips directories and makes the extension match the detected type.
func safeFileName(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	if ext != "" && !strings.EqualFold(filepath.Ext(base), ext) {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	}
	return base
}

// Patch updates media flags and metadata.
func (s *MediaService) Patch(ctx context.Context, tenantID string, id int64, fields map[string]any) (*domain.EventMedia, error) {
	if len(fields) == 0 {
		return nil, domain.NewValidationError("", "no fields to update")
	}
	for k := range fields {
		if !patchableMediaFields[k] {
			return nil, domain.NewValidationError(k, k+" cannot be changed")
		}
	}
	media, err := s.media.PatchMedia(ctx, tenantID, id, fields)
	if err != nil {
		return nil, err
	}
	s.log.Info("media updated", "tenant_id", tenantID, "media_id", id)
	return media, nil
}

// Delete removes a media item.
func (s *MediaService) Delete(ctx context.Context, tenantID string, id int64) error {
	if err := s.media.DeleteMedia(ctx, tenantID, id); err != nil {
		return err
	}
	s.log.Info("media deleted", "tenant_id", tenantID, "media_id", id)
	return nil
}
