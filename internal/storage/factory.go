package storage

import (
	types "MuseLink/pkg"
	"fmt"
)

// NewStorage builds the configured backend. An empty type means the host
// engine keeps all binaries inline and no backend is needed.
func NewStorage(cfg types.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "s3":
		return NewS3Storage(cfg.S3)
	case "local":
		return NewLocalStorage(cfg.Local)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Type)
	}
}
