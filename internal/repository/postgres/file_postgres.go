package postgres

import (
	"context"
	"database/sql"

	"catbox/internal/model"
	"catbox/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, owner_id, original_name, stored_name, storage_ref, size, content_type, uploaded_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*model.FileRecord, error) {
	var f model.FileRecord
	if err := s.Scan(
		&f.ID,
		&f.OwnerID,
		&f.OriginalName,
		&f.StoredName,
		&f.StorageRef,
		&f.Size,
		&f.ContentType,
		&f.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.FileRecord) (*model.FileRecord, error) {
	const q = `
		INSERT INTO files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.OwnerID,
		f.OriginalName,
		f.StoredName,
		f.StorageRef,
		f.Size,
		f.ContentType,
		f.UploadedAt,
	)
	out, err := scanFile(row)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// FindByID fetches a single file record by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.FileRecord, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	out, err := scanFile(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// FindByStoredName fetches a single file record by its public stored name.
func (r *FilePostgres) FindByStoredName(ctx context.Context, storedName string) (*model.FileRecord, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE stored_name = $1`
	out, err := scanFile(r.db.QueryRowContext(ctx, q, storedName))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// ListByOwner returns every record of the owner, oldest first.
func (r *FilePostgres) ListByOwner(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = $1
		ORDER BY uploaded_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileRecord, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes the record if it belongs to ownerID.
func (r *FilePostgres) Delete(ctx context.Context, id, ownerID string) error {
	const q = `DELETE FROM files WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
