package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"sprint-tracker/pkg/metrics"
)

// AuditEntry is one write attempt.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Role      string    `json:"role"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Key       string    `json:"key"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS write_audit (
	id BIGSERIAL PRIMARY KEY,
	actor TEXT NOT NULL,
	role TEXT NOT NULL,
	entity TEXT NOT NULL,
	action TEXT NOT NULL,
	record_key TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_write_audit_created_at ON write_audit (created_at DESC);
`

type AuditRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAuditRepository(db *pgxpool.Pool, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("failed to create write_audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) Record(ctx context.Context, e AuditEntry) error {
	start := time.Now()
	query := `
        INSERT INTO write_audit (actor, role, entity, action, record_key, outcome, detail)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.Exec(ctx, query, e.Actor, e.Role, e.Entity, e.Action, e.Key, e.Outcome, e.Detail)
	status := "success"
	if err != nil {
		status = "failed"
	}
	metrics.RecordAuditWrite(status, time.Since(start))
	if err != nil {
		r.logger.Error("audit insert failed",
			zap.String("entity", e.Entity),
			zap.String("action", e.Action),
			zap.Error(err),
		)
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Latest returns the newest entries first.
func (r *AuditRepository) Latest(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
        SELECT id, actor, role, entity, action, record_key, outcome, detail, created_at
        FROM write_audit
        ORDER BY created_at DESC, id DESC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0, limit)
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Role, &e.Entity, &e.Action, &e.Key, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// NopAuditRepository is used when no audit database is configured.
type NopAuditRepository struct{}

func (NopAuditRepository) Record(context.Context, AuditEntry) error { return nil }

func (NopAuditRepository) Latest(context.Context, int) ([]AuditEntry, error) {
	return []AuditEntry{}, nil
}
