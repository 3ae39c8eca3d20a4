package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"photovault/internal/model"
)

type PermissionRepository struct {
	pool *pgxpool.Pool
}

func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

func (r *PermissionRepository) Grant(ctx context.Context, fileID string, userID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO file_permissions (file_id, user_id, created_at)
		 VALUES ($1, $2, $3)`,
		fileID, userID, time.Now().UTC())

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		// Granting twice is harmless.
		return nil
	}
	if err != nil {
		return fmt.Errorf("grant permission: %w", err)
	}
	return nil
}

func (r *PermissionRepository) Revoke(ctx context.Context, fileID string, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM file_permissions WHERE file_id = $1 AND user_id = $2`,
		fileID, userID)
	if err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}
	return nil
}

func (r *PermissionRepository) Exists(ctx context.Context, fileID string, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM file_permissions WHERE file_id = $1 AND user_id = $2)`,
		fileID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check permission exists: %w", err)
	}
	return exists, nil
}

func (r *PermissionRepository) ListForFile(ctx context.Context, fileID string) ([]model.PermissionGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT file_id, user_id, created_at
		 FROM file_permissions
		 WHERE file_id = $1
		 ORDER BY created_at`, fileID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	grants := make([]model.PermissionGrant, 0)
	for rows.Next() {
		var g model.PermissionGrant
		if err := rows.Scan(&g.FileID, &g.UserID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
