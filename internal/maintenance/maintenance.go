// Package maintenance runs periodic housekeeping jobs in the worker.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/config"
)

// Defaults for download log pruning.
const (
	DefaultDownloadLogSchedule  = "15 3 * * *"
	DefaultDownloadLogRetention = 90 * 24 * time.Hour
)

// Job is one scheduled task.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Locker runs fn under a cluster-wide lock and reports whether it ran.
type Locker interface {
	TryAdvisoryLock(ctx context.Context, key int64, fn func(ctx context.Context) error) (bool, error)
}

// Scheduler runs jobs on cron schedules. Overlapping runs of the same job
// are skipped, and with a Locker only one worker in the cluster runs a job.
type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	timeout time.Duration
	logger  zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler. locker may be nil.
func NewScheduler(locker Locker, logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "maintenance").Logger()
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger}),
			cron.SkipIfStillRunning(cronLogger{logger}),
		)),
		locker:  locker,
		timeout: 30 * time.Minute,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers job under the cron spec.
func (s *Scheduler) Add(spec string, job Job) error {
	lockKey := jobLockKey(job.Name())
	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(job, lockKey)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, job.Name(), err)
	}
	s.logger.Info().Str("job", job.Name()).Str("schedule", spec).Msg("job scheduled")
	return nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runJob(job Job, lockKey int64) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	logger := s.logger.With().Str("job", job.Name()).Logger()

	var err error
	ran := true
	if s.locker != nil {
		ran, err = s.locker.TryAdvisoryLock(ctx, lockKey, job.Run)
	} else {
		err = job.Run(ctx)
	}

	switch {
	case err != nil:
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("job failed")
	case !ran:
		logger.Debug().Msg("job skipped, lock held elsewhere")
	default:
		logger.Info().Dur("duration", time.Since(start)).Msg("job completed")
	}
}

// jobLockKey derives a stable advisory lock key from the job name (FNV-1a).
func jobLockKey(name string) int64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= 1099511628211
	}
	return int64(h >> 1)
}

// Register adds the configured jobs to s.
func Register(s *Scheduler, cfg config.MaintenanceConfig, logs DownloadLogPruner, logger zerolog.Logger) error {
	schedule := cfg.DownloadLogSchedule
	if schedule == "" {
		schedule = DefaultDownloadLogSchedule
	}
	return s.Add(schedule, NewPruneDownloadLogs(logs, cfg.DownloadLogRetention, logger))
}

type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
