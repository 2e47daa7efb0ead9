package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/dto"
	"malayalees/src/app/http/response"
	"malayalees/src/app/middleware"
	"malayalees/src/core/domain"
	"malayalees/src/core/usecase"
)

// multipartOverhead is allowed on top of the file size for form fields and boundaries.
const multipartOverhead = 1 << 20

// MediaHandler handles event media endpoints.
type MediaHandler struct {
	mediaService *usecase.MediaService
}

func NewMediaHandler(mediaService *usecase.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// List returns a page of an event's media.
// GET /v1/events/:id/media
func (h *MediaHandler) List(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q dto.MediaListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}

	page, err := h.mediaService.List(c.Request.Context(), middleware.GetTenantID(c), eventID, q.ToFilter(), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Page(c, page)
}

// Upload accepts a multipart file for an event.
// POST /v1/admin/events/:id/media
func (h *MediaHandler) Upload(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, domain.MaxUploadSize+multipartOverhead)

	var form dto.MediaUploadForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, domain.NewValidationError("file", "file is too large"))
			return
		}
		badPayload(c, err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.ValidationError(c, "file", "file is required", middleware.GetRequestID(c))
		return
	}
	file, err := header.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer file.Close()

	media, err := h.mediaService.Upload(c.Request.Context(), middleware.GetTenantID(c), middleware.GetPrincipal(c), usecase.MediaUploadInput{
		EventID:     eventID,
		Title:       form.Title,
		Description: form.Description,
		FileName:    header.Filename,
		Size:        header.Size,
		IsPublic:    form.IsPublic,
		EventFlyer:  form.EventFlyer,
		Featured:    form.Featured,
		Hero:        form.Hero,
		Content:     file,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, media)
}

// Patch updates media metadata.
// PATCH /v1/admin/media/:id
func (h *MediaHandler) Patch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		badPayload(c, err)
		return
	}
	media, err := h.mediaService.Patch(c.Request.Context(), middleware.GetTenantID(c), id, fields)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, media)
}

// Delete removes a media item.
// DELETE /v1/admin/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.mediaService.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}
