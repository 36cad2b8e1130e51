package types

import "time"

// ProgressMessage is a WebSocket progress update for one task.
type ProgressMessage struct {
	TaskID    string     `json:"task_id"`
	Type      string     `json:"type"` // "progress", "status", "complete", "error"
	Status    TaskStatus `json:"status"`
	Progress  float64    `json:"progress"`
	Filename  string     `json:"filename,omitempty"`
	Speed     string     `json:"speed,omitempty"`
	Message   string     `json:"message,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
