package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/jobscheduler"
)

type JobRunRepository struct {
	store *Store
}

func NewJobRunRepository(store *Store) *JobRunRepository {
	return &JobRunRepository{store: store}
}

func (r *JobRunRepository) UpsertRun(_ context.Context, run jobscheduler.Run) error {
	if strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("job run id is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	run.Metrics = maps.Clone(run.Metrics)
	r.store.jobRuns[run.RunID] = run
	return nil
}

// ListRecent returns the newest runs first. An empty jobName lists every job.
func (r *JobRunRepository) ListRecent(_ context.Context, jobName string, limit int) ([]jobscheduler.Run, error) {
	jobName = strings.TrimSpace(jobName)

	r.store.mu.RLock()
	out := make([]jobscheduler.Run, 0)
	for _, run := range r.store.jobRuns {
		if jobName == "" || run.JobName == jobName {
			out = append(out, run)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *JobRunRepository) DeleteStartedBefore(_ context.Context, before time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for id, run := range r.store.jobRuns {
		if run.StartedAt.Before(before) && run.Status != jobscheduler.StatusRunning {
			delete(r.store.jobRuns, id)
			count++
		}
	}
	return count, nil
}
