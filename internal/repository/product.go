package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamfit/storefront/internal/domain/product"
)

const (
	getProductByIDSQL = `SELECT id, category_id, name, price, info, stock, manufacturer, is_deleted
		FROM products WHERE id = $1 AND is_deleted = FALSE`

	productColumns = `id, category_id, name, price, info, stock, manufacturer, is_deleted`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID returns a single non-deleted product by id, or PRODUCT_NOT_FOUND.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// List returns one page of non-deleted products plus the total row count.
// The sort field is whitelisted by the service layer before it gets here,
// so interpolating it into the query is safe.
func (r *ProductRepository) List(ctx context.Context, params product.ListParams) ([]product.Product, int64, error) {
	where := []string{"is_deleted = FALSE"}
	args := []any{}

	if params.Keyword != "" {
		args = append(args, "%"+params.Keyword+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if params.CategoryID != 0 {
		args = append(args, params.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countSQL := "SELECT count(*) FROM products WHERE " + whereClause
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	dir := "DESC"
	if params.SortDir == product.SortAsc {
		dir = "ASC"
	}
	args = append(args, params.Size, (params.Page-1)*params.Size)
	listSQL := fmt.Sprintf(
		"SELECT %s FROM products WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		productColumns, whereClause, params.SortField, dir, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}
	return products, total, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.Info, &p.Stock, &p.Manufacturer, &p.IsDeleted)
	return p, err
}
