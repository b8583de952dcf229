package engine

import (
	"MuseLink/internal/storage"
	types "MuseLink/pkg"
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Store resolves an item's named binary payloads to raw bytes and wraps raw
// bytes back into attachable binaries. Inline payloads need no backend;
// storage-referenced payloads are fetched through the configured backend.
type Store struct {
	backend storage.Storage
	retry   types.RetryConfig
	logger  *zap.Logger
}

// NewStore creates a binary store. backend may be nil, in which case only
// inline payloads can be resolved.
func NewStore(backend storage.Storage, retryCfg types.RetryConfig, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		retry:   retryCfg,
		logger:  logger,
	}
}

// Fetch returns the raw bytes of the named binary property on an item.
func (s *Store) Fetch(ctx context.Context, item *Item, property string) ([]byte, error) {
	bin, ok := item.Binary[property]
	if !ok || bin == nil {
		return nil, fmt.Errorf("item has no binary property %q", property)
	}

	if len(bin.Data) > 0 {
		return bin.Data, nil
	}

	if bin.Key != "" {
		if s.backend == nil {
			return nil, fmt.Errorf("binary property %q references storage %s/%s but no storage backend is configured", property, bin.Bucket, bin.Key)
		}
		var data []byte
		err := storage.Retry(ctx, s.logger, s.retry, fmt.Sprintf("download %s/%s", bin.Bucket, bin.Key), func() error {
			var err error
			data, err = s.backend.Download(ctx, bin.Bucket, bin.Key)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("download binary property %q: %w", property, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("binary property %q is empty", property)
}

// Attach wraps raw bytes into an inline attachable binary.
func (s *Store) Attach(data []byte, fileName, mimeType string) *Binary {
	return &Binary{
		Data:     data,
		FileName: fileName,
		MimeType: mimeType,
	}
}

// Offload uploads bytes to the storage backend and returns a referencing
// binary. Used by hosts that keep large attachments out of item payloads.
func (s *Store) Offload(ctx context.Context, data []byte, bucket, key, fileName, mimeType string) (*Binary, error) {
	if s.backend == nil {
		return nil, fmt.Errorf("no storage backend configured")
	}

	err := storage.Retry(ctx, s.logger, s.retry, fmt.Sprintf("upload %s/%s", bucket, key), func() error {
		return s.backend.Upload(ctx, bucket, key, bytes.NewReader(data))
	})
	if err != nil {
		return nil, fmt.Errorf("upload binary %s/%s: %w", bucket, key, err)
	}

	s.logger.Info("Binary offloaded to storage",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return &Binary{
		Bucket:   bucket,
		Key:      key,
		FileName: fileName,
		MimeType: mimeType,
	}, nil
}
