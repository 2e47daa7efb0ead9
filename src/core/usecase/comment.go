package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// CommentService handles the comment thread on event pages.
type CommentService struct {
	comments ports.CommentRepository
	events   *EventService
	log      *slog.Logger
}

func NewCommentService(comments ports.CommentRepository, events *EventService, log *slog.Logger) *CommentService {
	return &CommentService{comments: comments, events: events, log: log}
}

// List returns comments newer than since (when set), newest first. Comments
// on inactive events are visible to admins only.
func (s *CommentService) List(ctx context.Context, tenantID string, eventID int64, since *time.Time, limit int, admin bool) ([]domain.Comment, error) {
	if _, err := s.events.Get(ctx, tenantID, eventID, admin); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultCommentLimit
	}
	if limit > domain.MaxPerPage {
		limit = domain.MaxPerPage
	}

	comments, err := s.comments.ListComments(ctx, tenantID, eventID, since, limit)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(comments)
	return comments, nil
}

func sortNewestFirst(comments []domain.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
}

// Create posts a comment on an active event.
func (s *CommentService) Create(ctx context.Context, tenantID string, eventID int64, caller *domain.Principal, body string) (*domain.Comment, error) {
	if caller == nil {
		return nil, domain.NewUnauthorizedError("sign in to comment")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.NewValidationError("body", "body is required")
	}
	if utf8.RuneCountInString(body) > domain.MaxCommentLength {
		return nil, domain.NewValidationError("body", "body must be at most 2000 characters")
	}
	if _, err := s.events.Get(ctx, tenantID, eventID, false); err != nil {
		return nil, err
	}

	author := caller.Name
	if author == "" {
		author, _, _ = strings.Cut(caller.Email, "@")
	}
	if author == "" {
		author = "Member"
	}

	comment, err := s.comments.CreateComment(ctx, &domain.Comment{
		TenantID:   tenantID,
		EventID:    eventID,
		AuthorID:   caller.UserID,
		AuthorName: author,
		Body:       body,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("comment posted", "tenant_id", tenantID, "event_id", eventID, "comment_id", comment.ID)
	return comment, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, tenantID string, id int64) error {
	if err := s.comments.DeleteComment(ctx, tenantID, id); err != nil {
		return err
	}
	s.log.Info("comment deleted", "tenant_id", tenantID, "comment_id", id)
	return nil
}
