package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamia/backend/internal/db"
	"github.com/streamia/backend/internal/models"
)

// PostgresCategoryRepository provides PostgreSQL-backed persistence for categories.
type PostgresCategoryRepository struct {
	pool db.Pool
}

// NewPostgresCategoryRepository constructs a category repository backed by PostgreSQL.
func NewPostgresCategoryRepository(pool db.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

// ListCategories returns every category ordered by name.
func (r *PostgresCategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT category_id, category_name
        FROM categories
        ORDER BY category_name
    `)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// Create persists a new category, enforcing name uniqueness.
func (r *PostgresCategoryRepository) Create(ctx context.Context, name string) (models.Category, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Category{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var category models.Category
	err = conn.QueryRow(ctx, `
        INSERT INTO categories (category_name)
        VALUES ($1)
        RETURNING category_id, category_name
    `, name).Scan(&category.ID, &category.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Category{}, ErrConflict
		}
		return models.Category{}, fmt.Errorf("insert category: %w", err)
	}

	return category, nil
}
