package repo

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
	"malayalees/src/infra/db"
)

var _ ports.MessageLogRepository = (*PostgresMessageLogRepository)(nil)

// PostgresMessageLogRepository implements MessageLogRepository using pgx.
type PostgresMessageLogRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresMessageLogRepository constructs a message log repository backed by Postgres.
func NewPostgresMessageLogRepository(pg *db.Postgres, log *slog.Logger) *PostgresMessageLogRepository {
	return &PostgresMessageLogRepository{
		pool: pg.Pool,
		log:  log,
	}
}

func (r *PostgresMessageLogRepository) LogMessage(ctx context.Context, msg *domain.WhatsAppMessageLog) (*domain.WhatsAppMessageLog, error) {
	const q = `
		INSERT INTO whatsapp_message_log (tenant_id, recipient, body, status, provider_sid, error, sent_by)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		RETURNING message_id, created_at
	`
	out := *msg
	if err := r.pool.QueryRow(ctx, q,
		msg.TenantID, msg.Recipient, msg.Body, msg.Status, msg.ProviderSID, msg.Error, msg.SentBy,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PostgresMessageLogRepository) ListMessages(ctx context.Context, tenantID string, page, perPage int) (*ports.PageResult[domain.WhatsAppMessageLog], error) {
	const countQ = `SELECT count(*) FROM whatsapp_message_log WHERE tenant_id = $1`
	var total int64
	if err := r.pool.QueryRow(ctx, countQ, tenantID).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT message_id, tenant_id, recipient, body, status,
		       COALESCE(provider_sid, ''), COALESCE(error, ''), sent_by, created_at
		FROM whatsapp_message_log
		WHERE tenant_id = $1
		ORDER BY created_at DESC, message_id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, q, tenantID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.WhatsAppMessageLog, 0, perPage)
	for rows.Next() {
		var m domain.WhatsAppMessageLog
		if err := rows.Scan(&m.ID, &m.TenantID, &m.Recipient, &m.Body, &m.Status,
			&m.ProviderSID, &m.Error, &m.SentBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ports.PageResult[domain.WhatsAppMessageLog]{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}
