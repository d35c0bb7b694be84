package storage

import (
	"context"
	"fmt"

	"catbox/internal/config"
)

// New builds the backend selected by cfg.Storage.Backend.
func New(ctx context.Context, cfg *config.AppConfig) (Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendDisk, "":
		return NewDisk(cfg.Storage.Dir)
	case config.BackendMinIO:
		return NewMinIO(ctx, cfg.MinIO)
	case config.BackendS3:
		return NewS3(ctx, cfg.S3)
	case config.BackendRelay:
		return NewRelay(cfg.Relay)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
