package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamfit/storefront/internal/domain/category"
)

const (
	listCategoriesSQL = `SELECT id, name, parent_id, display_order, is_deleted
		FROM categories WHERE is_deleted = FALSE ORDER BY display_order, id`

	listParentCategoriesSQL = `SELECT id, name, parent_id, display_order, is_deleted
		FROM categories WHERE is_deleted = FALSE AND parent_id IS NULL ORDER BY display_order, id`

	listChildCategoriesSQL = `SELECT id, name, parent_id, display_order, is_deleted
		FROM categories WHERE is_deleted = FALSE AND parent_id = $1 ORDER BY display_order, id`

	getCategoryByIDSQL = `SELECT id, name, parent_id, display_order, is_deleted
		FROM categories WHERE id = $1 AND is_deleted = FALSE`
)

var _ category.Repository = (*CategoryRepository)(nil)

// CategoryRepository implements category.Repository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all non-deleted categories ordered by display order.
func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	return r.collect(ctx, listCategoriesSQL)
}

// ListParents returns the top-level categories.
func (r *CategoryRepository) ListParents(ctx context.Context) ([]category.Category, error) {
	return r.collect(ctx, listParentCategoriesSQL)
}

// ListChildren returns the direct children of a category.
func (r *CategoryRepository) ListChildren(ctx context.Context, parentID int64) ([]category.Category, error) {
	return r.collect(ctx, listChildCategoriesSQL, parentID)
}

// GetByID returns a single category, or CATEGORY_NOT_FOUND.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	rows, err := r.pool.Query(ctx, getCategoryByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrNotFound
		}
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}
	return &c, nil
}

func (r *CategoryRepository) collect(ctx context.Context, sql string, args ...any) ([]category.Category, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

func scanCategory(row pgx.CollectableRow) (category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.Name, &c.ParentID, &c.DisplayOrder, &c.IsDeleted)
	return c, err
}
