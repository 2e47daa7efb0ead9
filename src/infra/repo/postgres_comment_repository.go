package repo

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
	"malayalees/src/infra/db"
)

var _ ports.CommentRepository = (*PostgresCommentRepository)(nil)

// PostgresCommentRepository implements CommentRepository using pgx.
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresCommentRepository constructs a comment repository backed by Postgres.
func NewPostgresCommentRepository(pg *db.Postgres, log *slog.Logger) *PostgresCommentRepository {
	return &PostgresCommentRepository{
		pool: pg.Pool,
		log:  log,
	}
}

func (r *PostgresCommentRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresCommentRepository) ListComments(ctx context.Context, tenantID string, eventID int64, since *time.Time, limit int) ([]domain.Comment, error) {
	const q = `
		SELECT comment_id, tenant_id, event_id, author_id, author_name, body, created_at
		FROM event_comments
		WHERE tenant_id = $1 AND event_id = $2 AND ($3::timestamptz IS NULL OR created_at > $3)
		ORDER BY created_at DESC, comment_id DESC
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, q, tenantID, eventID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TenantID, &c.EventID, &c.AuthorID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	const q = `
		INSERT INTO event_comments (tenant_id, event_id, author_id, author_name, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING comment_id, created_at
	`
	out := *comment
	err := r.pool.QueryRow(ctx, q, comment.TenantID, comment.EventID, comment.AuthorID, comment.AuthorName, comment.Body).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, tenantID string, id int64) error {
	const q = `DELETE FROM event_comments WHERE tenant_id = $1 AND comment_id = $2`
	res, err := r.pool.Exec(ctx, q, tenantID, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFoundError("comment")
	}
	return nil
}
