package repository

import (
	"context"

	"github.com/fleetadmin/fleet-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	// CreateWithOutboxEmail atomically creates the user and enqueues
	// one outbound email; neither happens if either fails.
	CreateWithOutboxEmail(ctx context.Context, email, passwordHash, subject, body string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
