package models

import "time"

// ProcessingState is the lifecycle state of an ingestion task.
type ProcessingState string

const (
	StatePending   ProcessingState = "pending"
	StateRunning   ProcessingState = "running"
	StateCompleted ProcessingState = "completed"
	StateFailed    ProcessingState = "failed"
)

// TaskStatus is the externally visible record of one ingestion task. The
// upload response only confirms queuing; this record is how a caller later
// learns that a queued task completed or failed.
type TaskStatus struct {
	TaskID     string          `json:"taskId"`
	State      ProcessingState `json:"state"`
	Filename   string          `json:"filename"`
	OwnerID    string          `json:"ownerId"`
	Error      string          `json:"error,omitempty"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	FinishedAt time.Time       `json:"finishedAt,omitempty"`
}
