package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/fleetadmin/fleet-api/internal/domain"
)

// fakeOutboxRepo records lifecycle transitions for one batch.
type fakeOutboxRepo struct {
	claimed     []*domain.OutboxEmail
	sentIDs     []string
	failedIDs   []string
	rescheduled map[string]time.Time
}

func (r *fakeOutboxRepo) Claim(_ context.Context, _ int) ([]*domain.OutboxEmail, error) {
	return r.claimed, nil
}

func (r *fakeOutboxRepo) MarkSent(_ context.Context, id string) error {
	r.sentIDs = append(r.sentIDs, id)
	return nil
}

func (r *fakeOutboxRepo) Reschedule(_ context.Context, id string, _ string, nextAttemptAt time.Time) error {
	if r.rescheduled == nil {
		r.rescheduled = make(map[string]time.Time)
	}
	r.rescheduled[id] = nextAttemptAt
	return nil
}

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, id string, _ string) error {
	r.failedIDs = append(r.failedIDs, id)
	return nil
}

func (r *fakeOutboxRepo) PurgeSent(_ context.Context, _ time.Time) (int, error) { return 0, nil }

type fakeSender struct {
	err   error
	sends int
}

func (s *fakeSender) Send(_ context.Context, _, _, _ string) error {
	s.sends++
	return s.err
}

func newTestWorker(repo *fakeOutboxRepo, sender *fakeSender) *Worker {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewWorker(repo, sender, logger, time.Second)
}

func TestProcessBatch_DeliverySuccess_MarksSent(t *testing.T) {
	repo := &fakeOutboxRepo{
		claimed: []*domain.OutboxEmail{{ID: "e1", Recipient: "a@test.local", Attempts: 1}},
	}
	sender := &fakeSender{}

	newTestWorker(repo, sender).processBatch(context.Background())

	if sender.sends != 1 {
		t.Errorf("sends = %d, want 1", sender.sends)
	}
	if len(repo.sentIDs) != 1 || repo.sentIDs[0] != "e1" {
		t.Errorf("sentIDs = %v, want [e1]", repo.sentIDs)
	}
}

func TestProcessBatch_DeliveryFailure_Reschedules(t *testing.T) {
	repo := &fakeOutboxRepo{
		claimed: []*domain.OutboxEmail{{ID: "e1", Recipient: "a@test.local", Attempts: 1}},
	}
	sender := &fakeSender{err: errors.New("provider unavailable")}

	before := time.Now()
	newTestWorker(repo, sender).processBatch(context.Background())

	next, ok := repo.rescheduled["e1"]
	if !ok {
		t.Fatal("email was not rescheduled")
	}
	if !next.After(before) {
		t.Errorf("next attempt %v is not in the future", next)
	}
	if len(repo.failedIDs) != 0 {
		t.Errorf("email marked failed on first attempt: %v", repo.failedIDs)
	}
}

func TestProcessBatch_MaxAttemptsExhausted_MarksFailed(t *testing.T) {
	repo := &fakeOutboxRepo{
		claimed: []*domain.OutboxEmail{{ID: "e1", Recipient: "a@test.local", Attempts: defaultMaxAttempts}},
	}
	sender := &fakeSender{err: errors.New("provider unavailable")}

	newTestWorker(repo, sender).processBatch(context.Background())

	if len(repo.failedIDs) != 1 || repo.failedIDs[0] != "e1" {
		t.Errorf("failedIDs = %v, want [e1]", repo.failedIDs)
	}
	if len(repo.rescheduled) != 0 {
		t.Errorf("exhausted email was rescheduled: %v", repo.rescheduled)
	}
}

// leasingOutboxRepo mimics the store's claim semantics: a claimed
// email becomes invisible to further claims until it is settled, no
// matter how many workers poll concurrently.
type leasingOutboxRepo struct {
	mu      sync.Mutex
	pending []*domain.OutboxEmail
	leased  map[string]bool
	sent    map[string]int
}

func (r *leasingOutboxRepo) Claim(_ context.Context, limit int) ([]*domain.OutboxEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.leased == nil {
		r.leased = make(map[string]bool)
	}
	var out []*domain.OutboxEmail
	for _, e := range r.pending {
		if len(out) == limit {
			break
		}
		if r.leased[e.ID] {
			continue
		}
		r.leased[e.ID] = true
		e.Attempts++
		out = append(out, e)
	}
	return out, nil
}

func (r *leasingOutboxRepo) MarkSent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = make(map[string]int)
	}
	r.sent[id]++
	return nil
}

func (r *leasingOutboxRepo) Reschedule(_ context.Context, id string, _ string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.leased, id)
	return nil
}

func (r *leasingOutboxRepo) MarkFailed(_ context.Context, _ string, _ string) error { return nil }

func (r *leasingOutboxRepo) PurgeSent(_ context.Context, _ time.Time) (int, error) { return 0, nil }

type countingSender struct {
	mu    sync.Mutex
	sends map[string]int
}

func (s *countingSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sends == nil {
		s.sends = make(map[string]int)
	}
	s.sends[to]++
	// Hold the send window open so overlapping workers would collide
	// if claims were not exclusive.
	time.Sleep(5 * time.Millisecond)
	return nil
}

func TestProcessBatch_ConcurrentWorkers_DeliverEachEmailOnce(t *testing.T) {
	repo := &leasingOutboxRepo{}
	for i := 0; i < 10; i++ {
		repo.pending = append(repo.pending, &domain.OutboxEmail{
			ID:        fmt.Sprintf("e%d", i),
			Recipient: fmt.Sprintf("u%d@test.local", i),
		})
	}
	sender := &countingSender{}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := NewWorker(repo, sender, logger, time.Second)
			w.processBatch(context.Background())
			w.processBatch(context.Background())
		}()
	}
	wg.Wait()

	for to, n := range sender.sends {
		if n != 1 {
			t.Errorf("recipient %s received %d deliveries, want 1", to, n)
		}
	}
	if len(sender.sends) != 10 {
		t.Errorf("delivered to %d recipients, want 10", len(sender.sends))
	}
	for id, n := range repo.sent {
		if n != 1 {
			t.Errorf("email %s marked sent %d times, want 1", id, n)
		}
	}
}

func TestNewJanitor_RejectsBadCronExpr(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if _, err := NewJanitor(&fakeOutboxRepo{}, logger, "not a cron expr"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestNewJanitor_AcceptsDescriptor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if _, err := NewJanitor(&fakeOutboxRepo{}, logger, "@hourly"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
