package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/teamfit/storefront/internal/domain/apperr"
	"github.com/teamfit/storefront/internal/domain/cart"
	"github.com/teamfit/storefront/internal/domain/coupon"
)

// PageSize is the fixed page size for member order listings.
const PageSize = 5

// Status is the order state. ORDERED is the only state that permits
// modification; CANCELLED is terminal.
type Status string

const (
	StatusOrdered   Status = "ORDERED"
	StatusCancelled Status = "CANCELLED"
)

// Business errors for the order workflow.
var (
	ErrNotFound            = apperr.New(apperr.CodeOrderNotFound, "order not found")
	ErrCartEmpty           = apperr.New(apperr.CodeCartEmpty, "cart is empty")
	ErrModificationBlocked = apperr.New(apperr.CodeOrderModificationBlocked, "order can no longer be modified")
	ErrNotOwner            = apperr.New(apperr.CodeUserNotAuthorized, "order belongs to another member")
)

// Order is a placed order with its delivery info and line items.
// TotalPrice is derived: the sum of the lines' discounted prices.
type Order struct {
	ID               int64
	MemberID         int64
	DeliveryAddress  string
	DeliveryReceiver string
	DeliveryPhone    string
	DeliveryFee      decimal.Decimal
	Status           Status
	TotalPrice       decimal.Decimal
	IsDeleted        bool
	CreatedAt        time.Time
	Products         []Product
}

// Product is one order line: an immutable snapshot of the product's name
// and price at order time, so later catalog changes never alter history.
type Product struct {
	ID              int64
	OrderID         int64
	ProductID       int64
	ProductName     string
	ProductPrice    decimal.Decimal
	Quantity        int
	CouponGrantID   *int64
	DiscountedPrice decimal.Decimal
}

// addProduct appends a line and folds its discounted price into the total.
func (o *Order) addProduct(p Product) {
	o.Products = append(o.Products, p)
	o.TotalPrice = o.TotalPrice.Add(p.DiscountedPrice)
}

// DeliveryInfo carries the mutable delivery fields of an order.
type DeliveryInfo struct {
	Address  string
	Receiver string
	Phone    string
	Fee      decimal.Decimal
}

// CreateRequest is the input for placing an order. Items are keyed by
// product id and must cover every product currently in the cart.
type CreateRequest struct {
	Delivery DeliveryInfo
	Items    []ItemRequest
}

// ItemRequest is the caller-supplied pricing for one cart product: the
// discounted line total and, optionally, the coupon grant paying for the
// discount.
type ItemRequest struct {
	ProductID       int64
	DiscountedPrice decimal.Decimal
	CouponGrantID   *int64
}

// Page is one page of a member's order history.
type Page struct {
	Orders     []Order
	TotalPages int
}

// Repository provides the non-transactional order reads and updates.
type Repository interface {
	// GetByID returns the order with its lines, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*Order, error)
	// ListByMember returns one page of the member's non-deleted orders,
	// newest first, and the total page count.
	ListByMember(ctx context.Context, memberID int64, page int) ([]Order, int, error)
	// UpdateDelivery and UpdateStatus only apply while the order is still
	// ORDERED and return ErrModificationBlocked otherwise, so a status flip
	// after the caller's read cannot slip through.
	UpdateDelivery(ctx context.Context, id int64, info DeliveryInfo) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// Store runs order creation inside a single all-or-nothing transaction.
type Store interface {
	// WithinTx begins a transaction, calls fn with a transactional view,
	// commits when fn returns nil, and rolls back every write otherwise.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view order creation works against. All calls
// share one datastore transaction.
type Tx interface {
	// CartLines returns the member's cart rows joined with live product
	// data, ordered by cart row id.
	CartLines(ctx context.Context, memberID int64) ([]cart.ProductLine, error)
	CouponByID(ctx context.Context, id int64) (*coupon.Grant, error)
	// RedeemCoupon marks a grant used, failing with coupon.ErrAlreadyUsed
	// when it no longer is redeemable.
	RedeemCoupon(ctx context.Context, id int64) error
	DeleteCart(ctx context.Context, cartID int64) error
	// InsertOrder persists the order and its lines, assigning o.ID.
	InsertOrder(ctx context.Context, o *Order) error
}
