package usecase

import (
	"context"
	"fmt"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type CarUsecase struct {
	cars       repository.CarRepository
	categories repository.CategoryRepository
}

func NewCarUsecase(cars repository.CarRepository, categories repository.CategoryRepository) *CarUsecase {
	return &CarUsecase{cars: cars, categories: categories}
}

type CreateCarInput struct {
	Model          string
	Color          string
	RegistrationNo string
	CategoryID     string
}

func (u *CarUsecase) Create(ctx context.Context, input CreateCarInput) (*domain.Car, error) {
	if err := u.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	car := &domain.Car{
		Model:          input.Model,
		Color:          input.Color,
		RegistrationNo: input.RegistrationNo,
		CategoryID:     input.CategoryID,
	}
	created, err := u.cars.Create(ctx, car)
	if err != nil {
		return nil, fmt.Errorf("create car: %w", err)
	}
	return created, nil
}

// List returns one page of cars in insertion order. Out-of-range page
// and limit values silently fall back to the defaults; a bad page is
// never an error.
func (u *CarUsecase) List(ctx context.Context, page, limit int) (*domain.CarPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	total, err := u.cars.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cars: %w", err)
	}

	offset := (page - 1) * limit
	cars, err := u.cars.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}

	return &domain.CarPage{
		Cars:        cars,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}, nil
}

func (u *CarUsecase) Count(ctx context.Context) (int, error) {
	count, err := u.cars.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count cars: %w", err)
	}
	return count, nil
}

func (u *CarUsecase) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	car, err := u.cars.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get car: %w", err)
	}
	return car, nil
}

// Update applies a partial patch. Only fields present in the patch are
// written; presence is tracked per-field, so empty strings are legal
// values where validation allows them.
func (u *CarUsecase) Update(ctx context.Context, id string, patch domain.CarPatch) (*domain.Car, error) {
	if patch.CategoryID != nil {
		if err := u.checkCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}

	updated, err := u.cars.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update car: %w", err)
	}
	return updated, nil
}

func (u *CarUsecase) Delete(ctx context.Context, id string) error {
	if err := u.cars.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	return nil
}

// checkCategory enforces referential integrity at write time: the
// referenced category must exist. Reported as a field-level validation
// failure, matching the other per-field rules.
func (u *CarUsecase) checkCategory(ctx context.Context, categoryID string) error {
	exists, err := u.categories.Exists(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return domain.NewValidationError(domain.FieldError{
			Field:   "category",
			Message: "Invalid category ID",
		})
	}
	return nil
}
