package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Repository provides access to file metadata storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new file repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts metadata for a new file.
func (r *Repository) Create(ctx context.Context, meta StoredFile) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO files (id, name, path, original_name, size_bytes, owner_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, path, original_name, size_bytes, owner_id, uploaded_at;`

	row := r.pool.QueryRow(ctx, query,
		meta.ID,
		meta.Name,
		meta.Path,
		meta.OriginalName,
		meta.Size,
		meta.OwnerID,
	)

	var stored StoredFile
	if err := row.Scan(&stored.ID, &stored.Name, &stored.Path, &stored.OriginalName, &stored.Size, &stored.OwnerID, &stored.UploadedAt); err != nil {
		return StoredFile{}, fmt.Errorf("create file metadata: %w", err)
	}
	return stored, nil
}

// List returns all file records, most recent upload first.
func (r *Repository) List(ctx context.Context) ([]StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, name, path, original_name, size_bytes, owner_id, uploaded_at
FROM files
ORDER BY uploaded_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []StoredFile
	for rows.Next() {
		var meta StoredFile
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Path, &meta.OriginalName, &meta.Size, &meta.OwnerID, &meta.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan file metadata: %w", err)
		}
		files = append(files, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// Get fetches metadata for a single file.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (StoredFile, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT id, name, path, original_name, size_bytes, owner_id, uploaded_at
FROM files
WHERE id = $1;`

	var meta StoredFile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&meta.ID,
		&meta.Name,
		&meta.Path,
		&meta.OriginalName,
		&meta.Size,
		&meta.OwnerID,
		&meta.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredFile{}, ErrFileNotFound
		}
		return StoredFile{}, fmt.Errorf("get file metadata: %w", err)
	}
	return meta, nil
}

// Delete removes a metadata record by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete file metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}
	return nil
}

// Count returns the number of stored file records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM files;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return count, nil
}
