package jobscheduler

import (
	"context"
	"time"
)

type Repository interface {
	UpsertRun(ctx context.Context, run Run) error
	ListRecent(ctx context.Context, jobName string, limit int) ([]Run, error)
	DeleteStartedBefore(ctx context.Context, before time.Time) (int, error)
}
