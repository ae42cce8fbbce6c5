package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OutboxRepository struct {
	pool *pgxpool.Pool
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// claimLeaseSeconds is how long a claimed email stays invisible to
// other workers. It must exceed the worst-case time a worker can
// spend on one batch; MarkSent, Reschedule, or MarkFailed settles the
// row well before the lease lapses, and a crashed worker's rows
// simply become due again once it does.
const claimLeaseSeconds = 300

func (r *OutboxRepository) Claim(ctx context.Context, limit int) ([]*domain.OutboxEmail, error) {
	// FOR UPDATE SKIP LOCKED keeps concurrent claim statements off the
	// same rows; pushing next_attempt_at forward keeps them off for
	// the whole send window after this statement commits.
	query := `
		UPDATE email_outbox
		SET    attempts        = attempts + 1,
		       next_attempt_at = NOW() + make_interval(secs => $2),
		       updated_at      = NOW()
		WHERE id IN (
			SELECT id FROM email_outbox
			WHERE  status          = 'pending'
			  AND  next_attempt_at <= NOW()
			ORDER BY next_attempt_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, recipient, subject, body, status, attempts,
		          last_error, next_attempt_at, sent_at, created_at, updated_at`

	rows, err := r.pool.Query(ctx, query, limit, claimLeaseSeconds)
	if err != nil {
		return nil, fmt.Errorf("claim emails: %w", err)
	}
	defer rows.Close()

	var emails []*domain.OutboxEmail
	for rows.Next() {
		e, err := scanOutboxEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_outbox
		SET status = 'sent', sent_at = NOW(), last_error = NULL, updated_at = NOW()
		WHERE id = $1`, id)
	return err
}

func (r *OutboxRepository) Reschedule(ctx context.Context, id string, lastError string, nextAttemptAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_outbox
		SET status = 'pending', last_error = $2, next_attempt_at = $3, updated_at = NOW()
		WHERE id = $1`, id, lastError, nextAttemptAt)
	return err
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id string, lastError string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_outbox
		SET status = 'failed', last_error = $2, updated_at = NOW()
		WHERE id = $1`, id, lastError)
	return err
}

func (r *OutboxRepository) PurgeSent(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM email_outbox WHERE status = 'sent' AND sent_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sent emails: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanOutboxEmail(row pgx.Row) (*domain.OutboxEmail, error) {
	var e domain.OutboxEmail
	err := row.Scan(
		&e.ID, &e.Recipient, &e.Subject, &e.Body, &e.Status, &e.Attempts,
		&e.LastError, &e.NextAttemptAt, &e.SentAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan outbox email: %w", err)
	}
	return &e, nil
}
