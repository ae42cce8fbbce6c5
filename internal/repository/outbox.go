package repository

import (
	"context"
	"time"

	"github.com/fleetadmin/fleet-api/internal/domain"
)

// OutboxRepository drains the email outbox. Rows are enqueued by the
// writes that need them (see UserRepository.CreateWithOutboxEmail) so
// the email and its triggering row commit together.
type OutboxRepository interface {
	// Claim atomically takes up to limit due pending emails and leases
	// them, so concurrent workers never deliver the same email twice:
	// a claimed email stays invisible to other claims until it is
	// settled or its lease lapses.
	Claim(ctx context.Context, limit int) ([]*domain.OutboxEmail, error)
	MarkSent(ctx context.Context, id string) error
	Reschedule(ctx context.Context, id string, lastError string, nextAttemptAt time.Time) error
	MarkFailed(ctx context.Context, id string, lastError string) error
	// PurgeSent deletes sent emails older than the cutoff and returns
	// how many rows were removed.
	PurgeSent(ctx context.Context, cutoff time.Time) (int, error)
}
