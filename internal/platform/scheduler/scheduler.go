package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

var (
	ErrJobNotFound     = errors.New("scheduler: job not found")
	ErrJobExists       = errors.New("scheduler: job already registered")
	ErrInvalidJob      = errors.New("scheduler: invalid job")
	ErrJobRunning      = errors.New("scheduler: job already running")
	ErrShuttingDown    = errors.New("scheduler: shutting down")
	ErrShutdownTimeout = errors.New("scheduler: shutdown timed out")
)

type Trigger string

const (
	TriggerCron   Trigger = "cron"
	TriggerManual Trigger = "manual"
)

// Task is a job body. It must honor ctx cancellation.
type Task func(ctx context.Context, trigger Trigger) error

type JobSpec struct {
	Name     string
	Schedule string
	Enabled  bool
	// Timeout bounds a single run; zero means no bound.
	Timeout time.Duration
	Task    Task
}

type Status struct {
	Name         string        `json:"name"`
	Schedule     string        `json:"schedule"`
	Enabled      bool          `json:"enabled"`
	Running      bool          `json:"running"`
	LastRun      *time.Time    `json:"lastRun,omitempty"`
	NextRun      *time.Time    `json:"nextRun,omitempty"`
	LastError    string        `json:"lastError,omitempty"`
	LastDuration time.Duration `json:"lastDurationNs"`
	RunCount     int64         `json:"runCount"`
	SkippedCount int64         `json:"skippedCount"`
}

type job struct {
	spec     JobSpec
	schedule cron.Schedule
	running  atomic.Bool

	mu           sync.Mutex
	enabled      bool
	entryID      cron.EntryID
	lastRun      time.Time
	lastError    string
	lastDuration time.Duration
	runCount     int64
	skippedCount int64
}

// Scheduler runs named cron jobs with at most one execution per job at any time.
// Fires that land while the job is still running are dropped, not queued.
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	jobs     map[string]*job
	started  bool
	closing  bool
	inflight sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
	logger  *logging.Logger
	now     func() time.Time
}

func New(location *time.Location, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLogger{logger: logger}),
		),
		jobs:    make(map[string]*job),
		baseCtx: ctx,
		cancel:  cancel,
		logger:  logger,
		now:     time.Now,
	}
}

// Register validates and adds a job. Enabled jobs are bound to the cron engine right away.
func (s *Scheduler) Register(spec JobSpec) error {
	spec.Name = strings.TrimSpace(spec.Name)
	spec.Schedule = strings.TrimSpace(spec.Schedule)
	if spec.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidJob)
	}
	if spec.Task == nil {
		return fmt.Errorf("%w: job %s has no task", ErrInvalidJob, spec.Name)
	}
	schedule, err := cron.ParseStandard(spec.Schedule)
	if err != nil {
		return fmt.Errorf("%w: job %s schedule %q: %v", ErrInvalidJob, spec.Name, spec.Schedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrJobExists, spec.Name)
	}
	j := &job{spec: spec, schedule: schedule}
	s.jobs[spec.Name] = j
	if spec.Enabled {
		s.bind(j)
	}

	s.logger.Info("job registered", "job_name", spec.Name, "schedule", spec.Schedule, "enabled", spec.Enabled)
	return nil
}

// Start enables a registered job.
func (s *Scheduler) Start(name string) error {
	j, err := s.lookup(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bind(j)
	return nil
}

// Stop disables a registered job. A run already in flight is left to finish.
func (s *Scheduler) Stop(name string) error {
	j, err := s.lookup(name)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.enabled {
		return nil
	}
	s.cron.Remove(j.entryID)
	j.entryID = 0
	j.enabled = false
	return nil
}

// bind must be called with s.mu held.
func (s *Scheduler) bind(j *job) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.enabled {
		return
	}
	name := j.spec.Name
	j.entryID = s.cron.Schedule(j.schedule, cron.FuncJob(func() {
		s.fire(name)
	}))
	j.enabled = true
}

// Trigger runs the job now, in the background. It returns ErrJobRunning when the job
// is still busy with a previous run.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	j, err := s.begin(name, TriggerManual)
	if err != nil {
		return err
	}

	go s.execute(context.WithoutCancel(ctx), j, TriggerManual)
	return nil
}

// RunNow runs the job in the calling goroutine and returns the task error.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	j, err := s.begin(name, TriggerManual)
	if err != nil {
		return err
	}
	return s.execute(ctx, j, TriggerManual)
}

func (s *Scheduler) fire(name string) {
	j, err := s.begin(name, TriggerCron)
	if err != nil {
		return
	}
	_ = s.execute(s.baseCtx, j, TriggerCron)
}

func (s *Scheduler) begin(name string, trigger Trigger) (*job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return nil, ErrShuttingDown
	}
	j, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if !j.running.CompareAndSwap(false, true) {
		j.mu.Lock()
		j.skippedCount++
		j.mu.Unlock()
		s.logger.Warn("job still running, skipping", "job_name", name, "trigger", trigger)
		return nil, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	s.inflight.Add(1)
	return j, nil
}

func (s *Scheduler) execute(parent context.Context, j *job, trigger Trigger) (err error) {
	defer s.inflight.Done()
	defer j.running.Store(false)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	stop := context.AfterFunc(s.baseCtx, cancel)
	defer stop()
	if j.spec.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, j.spec.Timeout)
		defer cancelTimeout()
	}

	started := s.now()
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("job %s panicked: %v", j.spec.Name, recovered)
			s.logger.Error("job panicked", "job_name", j.spec.Name, "panic", recovered, "stack", string(debug.Stack()))
		}
		duration := s.now().Sub(started)

		j.mu.Lock()
		j.lastRun = started
		j.lastDuration = duration
		j.runCount++
		j.lastError = ""
		if err != nil {
			j.lastError = err.Error()
		}
		j.mu.Unlock()

		if err != nil {
			s.logger.WarnContext(ctx, "job failed",
				"job_name", j.spec.Name,
				"trigger", trigger,
				"duration_ms", duration.Milliseconds(),
				"error", err,
			)
			return
		}
		s.logger.InfoContext(ctx, "job completed",
			"job_name", j.spec.Name,
			"trigger", trigger,
			"duration_ms", duration.Milliseconds(),
		)
	}()

	return j.spec.Task(ctx, trigger)
}

func (s *Scheduler) lookup(name string) (*job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return j, nil
}

func (s *Scheduler) Status(name string) (Status, error) {
	j, err := s.lookup(name)
	if err != nil {
		return Status{}, err
	}
	return s.snapshot(j), nil
}

// Statuses returns every job ordered by name.
func (s *Scheduler) Statuses() []Status {
	s.mu.Lock()
	jobs := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	out := make([]Status, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, s.snapshot(j))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

func (s *Scheduler) snapshot(j *job) Status {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := Status{
		Name:         j.spec.Name,
		Schedule:     j.spec.Schedule,
		Enabled:      j.enabled,
		Running:      j.running.Load(),
		LastError:    j.lastError,
		LastDuration: j.lastDuration,
		RunCount:     j.runCount,
		SkippedCount: j.skippedCount,
	}
	if !j.lastRun.IsZero() {
		lastRun := j.lastRun
		out.LastRun = &lastRun
	}
	if j.enabled {
		next := s.cron.Entry(j.entryID).Next
		if next.IsZero() {
			next = j.schedule.Next(s.now().In(s.cron.Location()))
		}
		out.NextRun = &next
	}
	return out
}

// Run starts the cron engine in its own goroutine.
func (s *Scheduler) Run() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closing {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Info("scheduler started", "job_count", len(s.jobs))
}

// Shutdown stops firing new runs and waits up to timeout for in-flight runs to finish.
// Runs still going after the timeout are abandoned and their context is cancelled.
func (s *Scheduler) Shutdown(timeout time.Duration) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	s.mu.Unlock()

	s.cron.Stop()
	defer s.cancel()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-timer.C:
		running := s.runningJobs()
		s.logger.Error("scheduler shutdown timed out", "timeout", timeout.String(), "running_jobs", running)
		return fmt.Errorf("%w: still running %s", ErrShutdownTimeout, strings.Join(running, ","))
	}
}

func (s *Scheduler) runningJobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0)
	for name, j := range s.jobs {
		if j.running.Load() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
