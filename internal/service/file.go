package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"catbox/internal/logging"
	"catbox/internal/model"
	"catbox/internal/repository"
	"catbox/internal/storage"
)

const (
	maxNameAttempts    = 5
	defaultContentType = "application/octet-stream"
)

var tracer = otel.Tracer("catbox/internal/service")

// Blob is a readable file body together with what a client needs to save it.
// The caller must close Content.
type Blob struct {
	Content     io.ReadCloser
	Size        int64
	ContentType string
	Filename    string
}

// FileService defines the use cases for handling uploaded files.
type FileService interface {
	// Upload stores the content under a fresh stored name and records it for owner.
	// The blob is removed again if the record cannot be saved.
	Upload(ctx context.Context, ownerID, originalName string, r io.Reader, size int64, contentType string) (*model.FileRecord, error)

	// List returns the owner's files in upload order.
	List(ctx context.Context, ownerID string) ([]model.FileRecord, error)

	// Download opens a file the owner uploaded.
	Download(ctx context.Context, ownerID, id string) (*Blob, error)

	// Delete removes a file the owner uploaded from both storage and records.
	Delete(ctx context.Context, ownerID, id string) error

	// ResolvePublic opens a file by stored name without any session.
	ResolvePublic(ctx context.Context, storedName string) (*Blob, error)

	// PublicURL is the link that ResolvePublic serves storedName under.
	PublicURL(storedName string) string
}

// FileConfig carries the tunables of the file service.
type FileConfig struct {
	BaseURL string
	Logger  logging.Logger
}

type fileService struct {
	store    storage.Storage
	repo     repository.FileRepository
	baseURL  string
	log      logging.Logger
	newToken func() (string, error)
	now      func() time.Time
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository, cfg FileConfig) FileService {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &fileService{
		store:    store,
		repo:     repo,
		baseURL:  cfg.BaseURL,
		log:      log,
		newToken: newToken,
		now:      time.Now,
	}
}

func (s *fileService) Upload(ctx context.Context, ownerID, originalName string, r io.Reader, size int64, contentType string) (rec *model.FileRecord, err error) {
	ctx, span := tracer.Start(ctx, "FileService.Upload")
	defer func() { endSpan(span, err) }()

	if r == nil {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	name := baseName(originalName)
	if contentType == "" {
		contentType = defaultContentType
	}

	storedName, err := s.allocateName(ctx, extension(name))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("catbox.stored_name", storedName))

	info, err := s.store.Put(ctx, storedName, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": name},
	})
	if err != nil {
		s.log.Error(ctx, "blob_write_failed", "stored_name", storedName, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	rec, err = s.repo.Create(ctx, &model.FileRecord{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		OriginalName: name,
		StoredName:   storedName,
		StorageRef:   info.Key,
		Size:         info.Size,
		ContentType:  contentType,
		UploadedAt:   s.now().UTC(),
	})
	if err != nil {
		s.log.Error(ctx, "file_record_failed", "stored_name", storedName, "error", err.Error())
		if delErr := s.store.Delete(ctx, info.Key); delErr != nil {
			s.log.Error(ctx, "blob_rollback_failed", "storage_ref", info.Key, "error", delErr.Error())
			return nil, fmt.Errorf("%w: save record: %v; rollback: %v", ErrStorageWrite, err, delErr)
		}
		return nil, fmt.Errorf("%w: save record: %v", ErrStorageWrite, err)
	}

	s.log.Info(ctx, "file_uploaded", "file_id", rec.ID, "stored_name", storedName, "size", rec.Size)
	return rec, nil
}

// allocateName draws stored names until one is not yet recorded.
func (s *fileService) allocateName(ctx context.Context, ext string) (string, error) {
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return "", fmt.Errorf("%w: generate name: %v", ErrStorageWrite, err)
		}
		name := token + "." + ext

		_, err = s.repo.FindByStoredName(ctx, name)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return name, nil
		case err != nil:
			return "", fmt.Errorf("%w: check name: %v", ErrStorageWrite, err)
		}
		s.log.Warn(ctx, "stored_name_collision", "stored_name", name, "attempt", attempt)
	}
	return "", fmt.Errorf("%w: no free stored name after %d attempts", ErrStorageWrite, maxNameAttempts)
}

func (s *fileService) List(ctx context.Context, ownerID string) (items []model.FileRecord, err error) {
	ctx, span := tracer.Start(ctx, "FileService.List")
	defer func() { endSpan(span, err) }()

	items, err = s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	if items == nil {
		items = []model.FileRecord{}
	}
	return items, nil
}

func (s *fileService) Download(ctx context.Context, ownerID, id string) (b *Blob, err error) {
	ctx, span := tracer.Start(ctx, "FileService.Download")
	defer func() { endSpan(span, err) }()

	rec, err := s.ownedRecord(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, rec)
}

func (s *fileService) Delete(ctx context.Context, ownerID, id string) (err error) {
	ctx, span := tracer.Start(ctx, "FileService.Delete")
	defer func() { endSpan(span, err) }()

	rec, err := s.ownedRecord(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, rec.StorageRef); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.log.Error(ctx, "blob_delete_failed", "file_id", rec.ID, "error", err.Error())
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if err := s.repo.Delete(ctx, rec.ID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete record: %w", err)
	}
	s.log.Info(ctx, "file_deleted", "file_id", rec.ID)
	return nil
}

func (s *fileService) ResolvePublic(ctx context.Context, storedName string) (b *Blob, err error) {
	ctx, span := tracer.Start(ctx, "FileService.ResolvePublic")
	defer func() { endSpan(span, err) }()

	if !isStoredName(storedName) {
		return nil, ErrNotFound
	}
	rec, err := s.repo.FindByStoredName(ctx, storedName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return s.open(ctx, rec)
}

func (s *fileService) PublicURL(storedName string) string {
	return s.baseURL + "/f/" + storedName
}

// ownedRecord hides records of other owners behind ErrNotFound.
func (s *fileService) ownedRecord(ctx context.Context, ownerID, id string) (*model.FileRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	if rec.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *fileService) open(ctx context.Context, rec *model.FileRecord) (*Blob, error) {
	rc, info, err := s.store.Get(ctx, rec.StorageRef)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.log.Warn(ctx, "blob_missing", "file_id", rec.ID, "stored_name", rec.StoredName)
			return nil, ErrNotFound
		}
		s.log.Error(ctx, "blob_read_failed", "file_id", rec.ID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	size := rec.Size
	if info.Size > 0 {
		size = info.Size
	}
	return &Blob{
		Content:     rc,
		Size:        size,
		ContentType: rec.ContentType,
		Filename:    rec.OriginalName,
	}, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
