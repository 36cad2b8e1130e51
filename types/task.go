package types

import "time"

// TaskStatus represents the current status of a download task
type TaskStatus string

const (
	StatusQueued      TaskStatus = "queued"
	StatusDownloading TaskStatus = "downloading"
	StatusProcessing  TaskStatus = "processing"
	StatusCompleted   TaskStatus = "completed"
	StatusError       TaskStatus = "error"
)

// IsTerminal reports whether no further transitions are allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Task represents one tracked download and its mutable status record.
// Speed and ETA are only meaningful while downloading; Error is only
// set when the task ended in error.
type Task struct {
	ID         string     `json:"task_id"`
	URL        string     `json:"url,omitempty"`
	Status     TaskStatus `json:"status"`
	Progress   float64    `json:"progress"`
	Filename   string     `json:"filename,omitempty"`
	Speed      string     `json:"speed,omitempty"`
	ETA        string     `json:"eta,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
