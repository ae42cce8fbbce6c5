package repository

import (
	"context"

	"github.com/fleetadmin/fleet-api/internal/domain"
)

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) (*domain.Car, error)
	GetByID(ctx context.Context, id string) (*domain.Car, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Car, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, patch domain.CarPatch) (*domain.Car, error)
	Delete(ctx context.Context, id string) error
}
