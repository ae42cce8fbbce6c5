// Package outbox delivers queued emails in the background so that a
// slow or failing mail provider can never stall or fail the request
// that enqueued the message.
package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/email"
	"github.com/fleetadmin/fleet-api/internal/metrics"
	"github.com/fleetadmin/fleet-api/internal/repository"
)

const (
	defaultBatchSize   = 20
	defaultSendTimeout = 10 * time.Second
	defaultMaxAttempts = 5
	retryDelay         = time.Minute
)

type Worker struct {
	repo         repository.OutboxRepository
	sender       email.Sender
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
	sendTimeout  time.Duration
	maxAttempts  int
}

func NewWorker(repo repository.OutboxRepository, sender email.Sender, logger *slog.Logger, pollInterval time.Duration) *Worker {
	return &Worker{
		repo:         repo,
		sender:       sender,
		logger:       logger.With("component", "outbox_worker"),
		pollInterval: pollInterval,
		batchSize:    defaultBatchSize,
		sendTimeout:  defaultSendTimeout,
		maxAttempts:  defaultMaxAttempts,
	}
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("outbox worker started", "poll_interval", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker shut down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	emails, err := w.repo.Claim(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("claim outbox emails", "error", err)
		return
	}

	for _, e := range emails {
		w.deliver(ctx, e)
	}
}

// deliver sends one email with a bounded timeout and records the
// outcome. Attempts was already incremented by Claim.
func (w *Worker) deliver(ctx context.Context, e *domain.OutboxEmail) {
	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()

	start := time.Now()
	err := w.sender.Send(sendCtx, e.Recipient, e.Subject, e.Body)
	metrics.OutboxDeliveryDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		if err := w.repo.MarkSent(ctx, e.ID); err != nil {
			w.logger.Error("mark email sent", "email_id", e.ID, "error", err)
			return
		}
		metrics.OutboxDeliveriesTotal.WithLabelValues("sent").Inc()
		w.logger.Info("email delivered", "email_id", e.ID, "attempt", e.Attempts)
		return
	}

	if e.Attempts >= w.maxAttempts {
		if err := w.repo.MarkFailed(ctx, e.ID, err.Error()); err != nil {
			w.logger.Error("mark email failed", "email_id", e.ID, "error", err)
			return
		}
		metrics.OutboxDeliveriesTotal.WithLabelValues("failed").Inc()
		w.logger.Warn("email permanently failed", "email_id", e.ID, "attempts", e.Attempts, "error", err)
		return
	}

	nextAttempt := time.Now().Add(retryDelay * time.Duration(e.Attempts))
	if err := w.repo.Reschedule(ctx, e.ID, err.Error(), nextAttempt); err != nil {
		w.logger.Error("reschedule email", "email_id", e.ID, "error", err)
		return
	}
	metrics.OutboxDeliveriesTotal.WithLabelValues("retry").Inc()
	w.logger.Warn("email delivery failed, will retry",
		"email_id", e.ID,
		"attempt", e.Attempts,
		"max_attempts", w.maxAttempts,
		"next_attempt_at", nextAttempt,
		"error", err,
	)
}
