package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"photovault/internal/model"
)

const uniqueViolation = "23505"

const fileColumns = `id, owner_id, storage_key, original_filename, mime_type,
	        file_size, original_created_at, effective_date, created_at, deleted_at`

type FileRepository struct {
	pool *pgxpool.Pool
}

func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

// Insert registers a confirmed upload. A duplicate id or storage key
// fails on the uniqueness constraint; that is the accepted error path
// for double confirmation, not something to retry.
func (r *FileRepository) Insert(ctx context.Context, rec model.FileRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO files
		 (id, owner_id, storage_key, original_filename, mime_type,
		  file_size, original_created_at, effective_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.OwnerID, rec.StorageKey, rec.OriginalFilename, rec.MimeType,
		rec.FileSize, rec.OriginalCreatedAt, rec.EffectiveDate, rec.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}
	return nil
}

// FindByID returns the record regardless of lifecycle state; callers
// decide what the current state means for them.
func (r *FileRepository) FindByID(ctx context.Context, id string) (model.FileRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, id)

	rec, err := scanFileRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.FileRecord{}, model.ErrFileNotFound
	}
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("find file by id: %w", err)
	}
	return rec, nil
}

// MarkTrashed sets deleted_at iff the record is still active. The WHERE
// guard is the serialization point for concurrent soft deletes: the
// loser of the race sees zero rows affected.
func (r *FileRepository) MarkTrashed(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE files SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, at)
	if err != nil {
		return false, fmt.Errorf("mark file trashed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ClearTrashed nulls deleted_at iff the record is currently trashed.
func (r *FileRepository) ClearTrashed(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE files SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`,
		id)
	if err != nil {
		return false, fmt.Errorf("clear file trashed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteTrashed removes the row iff it is trashed, cascading permission
// grants. The guard enforces that purge is unreachable from Active even
// under races.
func (r *FileRepository) DeleteTrashed(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM files WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return false, fmt.Errorf("delete file record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FileRepository) ListActive(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fileColumns+`
		 FROM files
		 WHERE owner_id = $1 AND deleted_at IS NULL
		 ORDER BY effective_date DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list active files: %w", err)
	}
	return collectFileRecords(rows)
}

func (r *FileRepository) ListTrashed(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fileColumns+`
		 FROM files
		 WHERE owner_id = $1 AND deleted_at IS NOT NULL
		 ORDER BY deleted_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list trashed files: %w", err)
	}
	return collectFileRecords(rows)
}

// ListExpired returns trashed records whose retention window closed on
// or before the cutoff, oldest first. Used by the retention sweeper.
func (r *FileRepository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]model.FileRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fileColumns+`
		 FROM files
		 WHERE deleted_at IS NOT NULL AND deleted_at <= $1
		 ORDER BY deleted_at ASC
		 LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired files: %w", err)
	}
	return collectFileRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFileRecord(row rowScanner) (model.FileRecord, error) {
	var rec model.FileRecord
	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.StorageKey, &rec.OriginalFilename, &rec.MimeType,
		&rec.FileSize, &rec.OriginalCreatedAt, &rec.EffectiveDate, &rec.CreatedAt, &rec.DeletedAt)
	return rec, err
}

func collectFileRecords(rows pgx.Rows) ([]model.FileRecord, error) {
	defer rows.Close()

	records := make([]model.FileRecord, 0)
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
