package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CarRepository struct {
	pool *pgxpool.Pool
}

func NewCarRepository(pool *pgxpool.Pool) *CarRepository {
	return &CarRepository{pool: pool}
}

const carColumns = `c.id, c.model, c.color, c.registration_no, c.category_id,
	       cat.name, c.created_at, c.updated_at`

func (r *CarRepository) Create(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	query := `
		WITH inserted AS (
			INSERT INTO cars (model, color, registration_no, category_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, model, color, registration_no, category_id, created_at, updated_at
		)
		SELECT c.id, c.model, c.color, c.registration_no, c.category_id,
		       cat.name, c.created_at, c.updated_at
		FROM inserted c
		JOIN categories cat ON cat.id = c.category_id`

	row := r.pool.QueryRow(ctx, query, car.Model, car.Color, car.RegistrationNo, car.CategoryID)
	created, err := scanCar(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateRegistration
		}
		return nil, err
	}
	return created, nil
}

func (r *CarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM cars c
		JOIN categories cat ON cat.id = c.category_id
		WHERE c.id = $1`, carColumns)

	return scanCar(r.pool.QueryRow(ctx, query, id))
}

// List returns cars in insertion order.
func (r *CarRepository) List(ctx context.Context, offset, limit int) ([]*domain.Car, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM cars c
		JOIN categories cat ON cat.id = c.category_id
		ORDER BY c.created_at ASC, c.id ASC
		OFFSET $1 LIMIT $2`, carColumns)

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	cars := []*domain.Car{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

func (r *CarRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cars`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cars: %w", err)
	}
	return count, nil
}

// Update applies only the fields present in the patch. Nil fields keep
// their stored values, so an explicit empty string is still writable.
func (r *CarRepository) Update(ctx context.Context, id string, patch domain.CarPatch) (*domain.Car, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Model != nil {
		add("model", *patch.Model)
	}
	if patch.Color != nil {
		add("color", *patch.Color)
	}
	if patch.RegistrationNo != nil {
		add("registration_no", *patch.RegistrationNo)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}

	query := fmt.Sprintf(`
		WITH updated AS (
			UPDATE cars SET %s
			WHERE id = $1
			RETURNING id, model, color, registration_no, category_id, created_at, updated_at
		)
		SELECT c.id, c.model, c.color, c.registration_no, c.category_id,
		       cat.name, c.created_at, c.updated_at
		FROM updated c
		JOIN categories cat ON cat.id = c.category_id`,
		strings.Join(set, ", "))

	updated, err := scanCar(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateRegistration
		}
		return nil, err
	}
	return updated, nil
}

func (r *CarRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCarNotFound
	}
	return nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (*domain.Car, error) {
	var c domain.Car
	err := row.Scan(
		&c.ID, &c.Model, &c.Color, &c.RegistrationNo, &c.CategoryID,
		&c.CategoryName, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCarNotFound
		}
		return nil, fmt.Errorf("scan car: %w", err)
	}
	return &c, nil
}
