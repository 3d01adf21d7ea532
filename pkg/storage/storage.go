package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/codariq/sentidoc/pkg/logger"
	"github.com/codariq/sentidoc/pkg/storage/local"
	"github.com/codariq/sentidoc/pkg/storage/minio"
	"github.com/codariq/sentidoc/pkg/storage/s3"
)

// Type selects a storage backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeMinio Type = "minio"
	TypeS3    Type = "s3"
)

// Storage persists uploaded files between the HTTP boundary and the worker
// that processes them. Store is called once by the producer before enqueue;
// Get once by the consuming worker.
type Storage interface {
	// Store writes the file and returns the key it can be fetched under.
	Store(ctx context.Context, reader io.Reader, filename string) (string, error)
	// Get opens the stored file.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a stored file.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes files stored before threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// New creates a storage backend. dir is only used by the local backend.
func New(storageType Type, dir string, log logger.Logger) (Storage, error) {
	switch storageType {
	case TypeLocal:
		return local.New(dir, log)
	case TypeMinio:
		return minio.GetClient(log)
	case TypeS3:
		return s3.GetClient(log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
