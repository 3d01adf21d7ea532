// Package status records the lifecycle of ingestion tasks so callers can
// poll the fate of an asynchronous upload, including tasks that failed and
// were discarded by the worker pool.
package status

import (
	"context"
	"errors"
	"sync"

	"github.com/codariq/sentidoc/internal/models"
)

// ErrNotFound is returned when no status has been recorded for a task ID.
var ErrNotFound = errors.New("status: task not found")

// Tracker records and retrieves task statuses.
type Tracker interface {
	Set(ctx context.Context, st *models.TaskStatus) error
	Get(ctx context.Context, taskID string) (*models.TaskStatus, error)
}

// MemoryTracker keeps statuses in process memory. It is the default when no
// Redis address is configured.
type MemoryTracker struct {
	mu    sync.RWMutex
	tasks map[string]models.TaskStatus
}

// NewMemoryTracker creates an empty in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{tasks: make(map[string]models.TaskStatus)}
}

// Set stores a copy of the status.
func (m *MemoryTracker) Set(_ context.Context, st *models.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[st.TaskID] = *st
	return nil
}

// Get returns a copy of the recorded status, or ErrNotFound.
func (m *MemoryTracker) Get(_ context.Context, taskID string) (*models.TaskStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.tasks[taskID]
	if !ok {
		return nil, ErrNotFound
	}
	return &st, nil
}
