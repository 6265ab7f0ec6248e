package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"wartungsmanager/redis"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ErrUnknownJob is returned by RunNow for a name that was never registered.
var ErrUnknownJob = errors.New("unknown job")

// JobFunc is one run of a background job. runID identifies the run in logs.
type JobFunc func(ctx context.Context, runID string) error

type job struct {
	name    string
	run     JobFunc
	entryID cron.EntryID
}

// Scheduler fires registered jobs on their cron schedule. Every run, scheduled
// or manual, holds a Redis lock so only one instance executes a job at a time.
type Scheduler struct {
	cron    *cron.Cron
	cache   *redis.Cache
	lockTTL time.Duration
	logger  logrus.FieldLogger

	mu   sync.RWMutex
	jobs map[string]*job
	ctx  context.Context
}

func New(cache *redis.Cache, lockTTL time.Duration, location *time.Location, logger logrus.FieldLogger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{
		cron:    cron.New(cron.WithParser(cronParser), cron.WithLocation(location)),
		cache:   cache,
		lockTTL: lockTTL,
		logger:  logger,
		jobs:    make(map[string]*job),
	}
}

// ParseCron accepts 5-field expressions only.
func ParseCron(expr string) (cron.Schedule, error) {
	if strings.HasPrefix(strings.TrimSpace(expr), "@") {
		return nil, fmt.Errorf("only 5-field cron expressions are supported")
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule, nil
}

func (s *Scheduler) Register(name, spec string, run JobFunc) error {
	schedule, err := ParseCron(spec)
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	j := &job{name: name, run: run}
	j.entryID = s.cron.Schedule(schedule, cron.FuncJob(func() {
		_, _ = s.execute(s.ctxOrBackground(), j)
	}))
	s.jobs[name] = j
	return nil
}

// Start begins the scheduling loop. ctx is handed to scheduled runs.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()

	for name, next := range s.NextRuns() {
		s.logger.WithFields(logrus.Fields{"job": name, "next_run": next}).Info("job scheduled")
	}
}

// Stop halts the schedule; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// NextRuns returns the next activation of every registered job.
func (s *Scheduler) NextRuns() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := make(map[string]time.Time, len(s.jobs))
	for name, j := range s.jobs {
		next[name] = s.cron.Entry(j.entryID).Next
	}
	return next
}

// RunNow executes the named job synchronously under the same lock as scheduled runs.
func (s *Scheduler) RunNow(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return "", ErrUnknownJob
	}
	return s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j *job) (string, error) {
	runID := uuid.NewString()
	log := s.logger.WithFields(logrus.Fields{"job": j.name, "run_id": runID})

	lock, err := s.cache.AcquireLock(ctx, "lock:job:"+j.name, s.lockTTL)
	if errors.Is(err, redis.ErrLockHeld) {
		log.Info("job is running on another instance, skipping")
		return runID, err
	}
	if err != nil {
		log.WithError(err).Error("failed to acquire job lock")
		return runID, err
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			log.WithError(err).Warn("failed to release job lock")
		}
	}()

	start := time.Now()
	log.Info("job started")
	if err := j.run(ctx, runID); err != nil {
		log.WithError(err).WithField("duration", time.Since(start).String()).Error("job failed")
		return runID, err
	}
	log.WithField("duration", time.Since(start).String()).Info("job finished")
	return runID, nil
}

func (s *Scheduler) ctxOrBackground() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}
