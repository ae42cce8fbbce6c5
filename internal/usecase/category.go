package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/repository"
)

type CategoryUsecase struct {
	categories repository.CategoryRepository
}

func NewCategoryUsecase(categories repository.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categories: categories}
}

// Create inserts a new category. Name uniqueness is checked before the
// insert; the unique index backs it up against races, so both paths
// surface the same conflict error.
func (u *CategoryUsecase) Create(ctx context.Context, name string) (*domain.Category, error) {
	_, err := u.categories.FindByName(ctx, name)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateCategoryName
	case !errors.Is(err, domain.ErrCategoryNotFound):
		return nil, fmt.Errorf("find category by name: %w", err)
	}

	created, err := u.categories.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (u *CategoryUsecase) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := u.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (u *CategoryUsecase) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c, err := u.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, id, name string) (*domain.Category, error) {
	updated, err := u.categories.Update(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

func (u *CategoryUsecase) Delete(ctx context.Context, id string) error {
	if err := u.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
