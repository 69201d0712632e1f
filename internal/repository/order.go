package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamfit/storefront/internal/domain/cart"
	"github.com/teamfit/storefront/internal/domain/coupon"
	"github.com/teamfit/storefront/internal/domain/order"
)

const (
	getOrderByIDSQL = `SELECT id, member_id, delivery_address, delivery_receiver, delivery_phone,
			delivery_fee, status, total_price, is_deleted, created_at
		FROM orders WHERE id = $1 AND is_deleted = FALSE`

	countOrdersByMemberSQL = `SELECT count(*) FROM orders
		WHERE member_id = $1 AND is_deleted = FALSE`

	listOrdersByMemberSQL = `SELECT id, member_id, delivery_address, delivery_receiver, delivery_phone,
			delivery_fee, status, total_price, is_deleted, created_at
		FROM orders
		WHERE member_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	listOrderProductsSQL = `SELECT id, order_id, product_id, product_name, product_price,
			quantity, coupon_grant_id, discounted_price
		FROM order_products WHERE order_id = ANY($1) ORDER BY id`

	insertOrderSQL = `INSERT INTO orders (member_id, delivery_address, delivery_receiver,
			delivery_phone, delivery_fee, status, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	insertOrderProductSQL = `INSERT INTO order_products (order_id, product_id, product_name,
			product_price, quantity, coupon_grant_id, discounted_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	// Both writes carry the ORDERED predicate so a status flip between the
	// service's ownership read and the write cannot slip through; zero
	// affected rows means the order is no longer modifiable.
	updateOrderDeliverySQL = `UPDATE orders SET delivery_address = $2, delivery_receiver = $3,
			delivery_phone = $4, delivery_fee = $5
		WHERE id = $1 AND status = 'ORDERED' AND is_deleted = FALSE`

	updateOrderStatusSQL = `UPDATE orders SET status = $2
		WHERE id = $1 AND status = 'ORDERED' AND is_deleted = FALSE`
)

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ order.Store      = (*OrderStore)(nil)
)

// OrderRepository implements the non-transactional order reads and updates
// backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID returns an order with its lines, or ORDER_NOT_FOUND.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	if err := r.attachProducts(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByMember returns one page (order.PageSize rows) of the member's
// non-deleted orders, newest first, plus the total page count.
func (r *OrderRepository) ListByMember(ctx context.Context, memberID int64, page int) ([]order.Order, int, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, countOrdersByMemberSQL, memberID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders for member %d: %w", memberID, err)
	}
	totalPages := int(math.Ceil(float64(total) / float64(order.PageSize)))

	rows, err := r.pool.Query(ctx, listOrdersByMemberSQL, memberID, order.PageSize, (page-1)*order.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders for member %d: %w", memberID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders for member %d: %w", memberID, err)
	}

	refs := make([]*order.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachProducts(ctx, refs); err != nil {
		return nil, 0, err
	}
	return orders, totalPages, nil
}

// UpdateDelivery overwrites the delivery fields of an order that is still
// ORDERED, or returns ErrModificationBlocked.
func (r *OrderRepository) UpdateDelivery(ctx context.Context, id int64, info order.DeliveryInfo) error {
	tag, err := r.pool.Exec(ctx, updateOrderDeliverySQL, id, info.Address, info.Receiver, info.Phone, info.Fee)
	if err != nil {
		return fmt.Errorf("updating delivery for order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrModificationBlocked
	}
	return nil
}

// UpdateStatus transitions an order out of ORDERED, or returns
// ErrModificationBlocked when it already left that state.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating status for order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrModificationBlocked
	}
	return nil
}

// attachProducts loads the line items for the given orders in one query.
func (r *OrderRepository) attachProducts(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.pool.Query(ctx, listOrderProductsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanOrderProduct)
	if err != nil {
		return fmt.Errorf("listing order products: %w", err)
	}
	for _, p := range products {
		o := byID[p.OrderID]
		o.Products = append(o.Products, p)
	}
	return nil
}

// OrderStore runs the order-creation procedure inside one pgx transaction.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// WithinTx begins a transaction, invokes fn with a transactional view, and
// commits iff fn returns nil. Every error exit path rolls back all writes,
// including coupon redemptions and cart deletions made earlier in fn.
func (s *OrderStore) WithinTx(ctx context.Context, fn func(tx order.Tx) error) error {
	pgtx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = pgtx.Rollback(ctx) }()

	if err := fn(&orderTx{tx: pgtx}); err != nil {
		return err
	}
	if err := pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// orderTx implements order.Tx on a live pgx transaction.
type orderTx struct {
	tx pgx.Tx
}

var _ order.Tx = (*orderTx)(nil)

func (t *orderTx) CartLines(ctx context.Context, memberID int64) ([]cart.ProductLine, error) {
	rows, err := t.tx.Query(ctx, listCartLinesSQL, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing cart lines for member %d: %w", memberID, err)
	}
	lines, err := pgx.CollectRows(rows, scanCartLine)
	if err != nil {
		return nil, fmt.Errorf("listing cart lines for member %d: %w", memberID, err)
	}
	return lines, nil
}

func (t *orderTx) CouponByID(ctx context.Context, id int64) (*coupon.Grant, error) {
	return findGrant(ctx, t.tx, id)
}

func (t *orderTx) RedeemCoupon(ctx context.Context, id int64) error {
	return redeemGrant(ctx, t.tx, id)
}

func (t *orderTx) DeleteCart(ctx context.Context, cartID int64) error {
	_, err := t.tx.Exec(ctx, deleteCartSQL, cartID)
	if err != nil {
		return fmt.Errorf("deleting cart row %d: %w", cartID, err)
	}
	return nil
}

func (t *orderTx) InsertOrder(ctx context.Context, o *order.Order) error {
	err := t.tx.QueryRow(ctx, insertOrderSQL,
		o.MemberID, o.DeliveryAddress, o.DeliveryReceiver, o.DeliveryPhone,
		o.DeliveryFee, string(o.Status), o.TotalPrice,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	for i := range o.Products {
		p := &o.Products[i]
		p.OrderID = o.ID
		err := t.tx.QueryRow(ctx, insertOrderProductSQL,
			o.ID, p.ProductID, p.ProductName, p.ProductPrice,
			p.Quantity, p.CouponGrantID, p.DiscountedPrice,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("inserting order product %d: %w", p.ProductID, err)
		}
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(&o.ID, &o.MemberID, &o.DeliveryAddress, &o.DeliveryReceiver, &o.DeliveryPhone,
		&o.DeliveryFee, &status, &o.TotalPrice, &o.IsDeleted, &o.CreatedAt)
	o.Status = order.Status(status)
	return o, err
}

func scanOrderProduct(row pgx.CollectableRow) (order.Product, error) {
	var p order.Product
	err := row.Scan(&p.ID, &p.OrderID, &p.ProductID, &p.ProductName, &p.ProductPrice,
		&p.Quantity, &p.CouponGrantID, &p.DiscountedPrice)
	return p, err
}
