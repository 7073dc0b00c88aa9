package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DownloadLogPruner deletes old download log rows.
type DownloadLogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PruneDownloadLogs removes download logs older than the retention.
type PruneDownloadLogs struct {
	logs      DownloadLogPruner
	retention time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// NewPruneDownloadLogs creates the job. A non-positive retention uses the default.
func NewPruneDownloadLogs(logs DownloadLogPruner, retention time.Duration, logger zerolog.Logger) *PruneDownloadLogs {
	if retention <= 0 {
		retention = DefaultDownloadLogRetention
	}
	return &PruneDownloadLogs{
		logs:      logs,
		retention: retention,
		now:       time.Now,
		logger:    logger.With().Str("component", "maintenance").Str("job", "prune-download-logs").Logger(),
	}
}

// Name returns "prune-download-logs".
func (j *PruneDownloadLogs) Name() string {
	return "prune-download-logs"
}

// Run deletes the expired rows.
func (j *PruneDownloadLogs) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	n, err := j.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune download logs: %w", err)
	}
	j.logger.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("download logs pruned")
	return nil
}
