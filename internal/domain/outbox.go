package domain

import "time"

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// OutboxEmail is a queued outbound email. Delivery is decoupled from
// the request that enqueued it; the worker owns the lifecycle.
type OutboxEmail struct {
	ID            string
	Recipient     string
	Subject       string
	Body          string
	Status        OutboxStatus
	Attempts      int
	LastError     *string
	NextAttemptAt time.Time
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
