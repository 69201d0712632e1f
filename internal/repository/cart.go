package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamfit/storefront/internal/domain/cart"
)

const (
	listCartsByMemberSQL = `SELECT id, member_id, product_id, quantity
		FROM carts WHERE member_id = $1 ORDER BY id`

	// Insertion order of the cart rows fixes the order of order lines later.
	listCartLinesSQL = `SELECT c.id, c.product_id, p.name, p.price, p.stock, c.quantity
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.member_id = $1
		ORDER BY c.id`

	getCartByMemberAndProductSQL = `SELECT id, member_id, product_id, quantity
		FROM carts WHERE member_id = $1 AND product_id = $2`

	insertCartSQL = `INSERT INTO carts (member_id, product_id, quantity)
		VALUES ($1, $2, $3) RETURNING id`

	updateCartQuantitySQL = `UPDATE carts SET quantity = $2 WHERE id = $1`

	deleteCartSQL = `DELETE FROM carts WHERE id = $1`

	deleteCartsByMemberSQL = `DELETE FROM carts WHERE member_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// ListByMember returns the member's cart rows in insertion order.
func (r *CartRepository) ListByMember(ctx context.Context, memberID int64) ([]cart.Cart, error) {
	rows, err := r.pool.Query(ctx, listCartsByMemberSQL, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing carts for member %d: %w", memberID, err)
	}
	carts, err := pgx.CollectRows(rows, scanCart)
	if err != nil {
		return nil, fmt.Errorf("listing carts for member %d: %w", memberID, err)
	}
	return carts, nil
}

// ListWithProduct returns the member's cart rows joined with product data.
func (r *CartRepository) ListWithProduct(ctx context.Context, memberID int64) ([]cart.ProductLine, error) {
	rows, err := r.pool.Query(ctx, listCartLinesSQL, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing cart lines for member %d: %w", memberID, err)
	}
	lines, err := pgx.CollectRows(rows, scanCartLine)
	if err != nil {
		return nil, fmt.Errorf("listing cart lines for member %d: %w", memberID, err)
	}
	return lines, nil
}

// FindByMemberAndProduct returns the member's cart row for a product, or
// CART_NOT_FOUND.
func (r *CartRepository) FindByMemberAndProduct(ctx context.Context, memberID, productID int64) (*cart.Cart, error) {
	rows, err := r.pool.Query(ctx, getCartByMemberAndProductSQL, memberID, productID)
	if err != nil {
		return nil, fmt.Errorf("finding cart row: %w", err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("finding cart row: %w", err)
	}
	return &c, nil
}

// Create inserts a cart row, assigning c.ID.
func (r *CartRepository) Create(ctx context.Context, c *cart.Cart) error {
	err := r.pool.QueryRow(ctx, insertCartSQL, c.MemberID, c.ProductID, c.Quantity).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating cart row: %w", err)
	}
	return nil
}

// UpdateQuantity sets the quantity on a cart row.
func (r *CartRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	_, err := r.pool.Exec(ctx, updateCartQuantitySQL, id, quantity)
	if err != nil {
		return fmt.Errorf("updating cart row %d: %w", id, err)
	}
	return nil
}

// Delete removes one cart row.
func (r *CartRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, deleteCartSQL, id)
	if err != nil {
		return fmt.Errorf("deleting cart row %d: %w", id, err)
	}
	return nil
}

// DeleteByMember removes all of the member's cart rows.
func (r *CartRepository) DeleteByMember(ctx context.Context, memberID int64) error {
	_, err := r.pool.Exec(ctx, deleteCartsByMemberSQL, memberID)
	if err != nil {
		return fmt.Errorf("clearing cart for member %d: %w", memberID, err)
	}
	return nil
}

func scanCart(row pgx.CollectableRow) (cart.Cart, error) {
	var c cart.Cart
	err := row.Scan(&c.ID, &c.MemberID, &c.ProductID, &c.Quantity)
	return c, err
}

func scanCartLine(row pgx.CollectableRow) (cart.ProductLine, error) {
	var l cart.ProductLine
	err := row.Scan(&l.CartID, &l.ProductID, &l.ProductName, &l.ProductPrice, &l.Stock, &l.Quantity)
	return l, err
}
