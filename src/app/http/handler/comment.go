package handler

import (
	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/dto"
	"malayalees/src/app/http/response"
	"malayalees/src/app/middleware"
	"malayalees/src/core/usecase"
)

// CommentHandler handles event comment endpoints.
type CommentHandler struct {
	commentService *usecase.CommentService
}

func NewCommentHandler(commentService *usecase.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List returns recent comments, newest first. The UI polls it with since.
// GET /v1/events/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q dto.CommentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}

	comments, err := h.commentService.List(c.Request.Context(), middleware.GetTenantID(c), eventID, q.Since, q.Limit, middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, comments)
}

// Create posts a comment as the signed-in caller.
// POST /v1/events/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), middleware.GetTenantID(c), eventID, middleware.GetPrincipal(c), req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, comment)
}

// Delete removes a comment.
// DELETE /v1/admin/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}
