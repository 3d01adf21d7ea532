package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/codariq/sentidoc/pkg/logger"
)

// Storage keeps uploads in a directory on the local filesystem. Each key is
// written once by the producer and read once by a worker; nothing writes the
// same path concurrently.
type Storage struct {
	dir    string
	logger logger.Logger
}

// New creates the upload directory if needed.
func New(dir string, log logger.Logger) (*Storage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Storage{dir: dir, logger: log}, nil
}

// Store implements Storage.Store
func (s *Storage) Store(ctx context.Context, reader io.Reader, filename string) (string, error) {
	// Keys never escape the upload directory regardless of the declared name.
	key := filepath.Base(filepath.Clean(filename))
	path := filepath.Join(s.dir, key)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return key, nil
}

// Get implements Storage.Get
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path := filepath.Join(s.dir, filepath.Base(key))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete implements Storage.Delete
func (s *Storage) Delete(ctx context.Context, key string) error {
	path := filepath.Join(s.dir, filepath.Base(key))
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// CleanupBefore implements Storage.CleanupBefore
func (s *Storage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to list upload directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(threshold) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				s.logger.Error("Failed to delete expired file",
					logger.String("key", entry.Name()),
					logger.Error(err),
				)
				continue
			}
			s.logger.Info("Deleted expired file",
				logger.String("key", entry.Name()),
				logger.Time("lastModified", info.ModTime()),
			)
		}
	}

	return nil
}
