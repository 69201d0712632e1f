package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quantity bounds for a single cart row.
const (
	MinQuantity = 1
	MaxQuantity = 20
)

// Cart is one (member, product) row pending order. The pair is unique per
// member.
type Cart struct {
	ID        int64
	MemberID  int64
	ProductID int64
	Quantity  int
}

// ProductLine is a cart row joined with the live product data it points at.
// Used both by the cart detail listing and by order creation, which needs
// the stock and price snapshot in the same transaction.
type ProductLine struct {
	CartID       int64
	ProductID    int64
	ProductName  string
	ProductPrice decimal.Decimal
	Stock        int
	Quantity     int
}

// Repository provides persistence for cart rows. Listings return rows
// ordered by id, i.e. insertion order.
type Repository interface {
	ListByMember(ctx context.Context, memberID int64) ([]Cart, error)
	ListWithProduct(ctx context.Context, memberID int64) ([]ProductLine, error)
	FindByMemberAndProduct(ctx context.Context, memberID, productID int64) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, id int64) error
	DeleteByMember(ctx context.Context, memberID int64) error
}
