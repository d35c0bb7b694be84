// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"
	"errors"

	"catbox/internal/model"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("record already exists")
)

// UserRepository persists credentials. No business logic here, strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicate if the username is taken.
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// FindByUsername returns the user with the exact (case-sensitive) username.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// FileRepository persists file metadata.
type FileRepository interface {
	// Create inserts a new file record. Returns ErrDuplicate if the stored name is taken.
	Create(ctx context.Context, file *model.FileRecord) (*model.FileRecord, error)

	// FindByID returns a file record by its ID regardless of owner.
	FindByID(ctx context.Context, id string) (*model.FileRecord, error)

	// FindByStoredName returns a file record by its public stored name.
	FindByStoredName(ctx context.Context, storedName string) (*model.FileRecord, error)

	// ListByOwner returns the owner's records in upload order.
	ListByOwner(ctx context.Context, ownerID string) ([]model.FileRecord, error)

	// Delete removes the record only if it belongs to ownerID.
	// Returns ErrNotFound when nothing was removed.
	Delete(ctx context.Context, id, ownerID string) error
}
