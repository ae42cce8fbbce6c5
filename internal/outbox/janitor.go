package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/fleetadmin/fleet-api/internal/metrics"
	"github.com/fleetadmin/fleet-api/internal/repository"
	"github.com/robfig/cron/v3"
)

const defaultRetention = 7 * 24 * time.Hour

// Janitor periodically removes delivered outbox rows past the
// retention window, on a cron schedule.
type Janitor struct {
	repo      repository.OutboxRepository
	logger    *slog.Logger
	schedule  cron.Schedule
	retention time.Duration
}

// NewJanitor parses cronExpr (standard 5-field syntax, descriptors
// like @hourly allowed) and returns a janitor running on it.
func NewJanitor(repo repository.OutboxRepository, logger *slog.Logger, cronExpr string) (*Janitor, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Janitor{
		repo:      repo,
		logger:    logger.With("component", "outbox_janitor"),
		schedule:  schedule,
		retention: defaultRetention,
	}, nil
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("outbox janitor started", "retention", j.retention)

	for {
		next := j.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("outbox janitor shut down")
			return
		case <-timer.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	cutoff := time.Now().Add(-j.retention)
	removed, err := j.repo.PurgeSent(ctx, cutoff)
	if err != nil {
		j.logger.Error("purge sent emails", "error", err)
		return
	}
	if removed > 0 {
		metrics.OutboxPurgedTotal.Add(float64(removed))
		j.logger.Info("purged sent emails", "count", removed, "cutoff", cutoff)
	}
}
