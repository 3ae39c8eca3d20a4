package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"photovault/internal/model"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_entries
		 (action, occurred_at, actor_user_id, actor_email, actor_ip, file_id, storage_key, error_text)
		 VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, NULLIF($6, '')::uuid, $7, $8)`,
		entry.Action, entry.OccurredAt,
		entry.Actor.UserID, entry.Actor.Email, entry.Actor.IP,
		entry.FileID, entry.StorageKey, entry.Error)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByActor(ctx context.Context, userID string, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT action, occurred_at, COALESCE(actor_user_id::text, ''), actor_email, actor_ip,
		        COALESCE(file_id::text, ''), storage_key, error_text
		 FROM audit_entries
		 WHERE actor_user_id = $1
		 ORDER BY occurred_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.Action, &e.OccurredAt, &e.Actor.UserID, &e.Actor.Email,
			&e.Actor.IP, &e.FileID, &e.StorageKey, &e.Error); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
