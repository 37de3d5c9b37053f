package jobscheduler

import "time"

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is the persisted record of one job execution.
type Run struct {
	RunID        string
	JobName      string
	Trigger      string
	Status       RunStatus
	Metrics      map[string]any
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
	TraceID      string
	SpanID       string
}
