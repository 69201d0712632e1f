// Package coupon manages per-member coupon grants. A grant is issued to
// exactly one member and can be redeemed at most once; redemption is
// one-way and is never compensated, even when the surrounding order is
// later cancelled.
package coupon

import (
	"context"
	"time"

	"github.com/teamfit/storefront/internal/domain/apperr"
)

// Business errors for the coupon ledger.
var (
	ErrNotFound    = apperr.New(apperr.CodeCouponNotFound, "coupon grant not found")
	ErrAlreadyUsed = apperr.New(apperr.CodeCouponAlreadyUsed, "coupon grant already redeemed")
)

// Grant is a coupon instance issued to a specific member.
type Grant struct {
	ID        int64
	MemberID  int64
	Name      string
	Used      bool
	CreatedAt time.Time
}

// Repository provides read access to the coupon grant ledger. Redemption
// happens exclusively inside the order-creation transaction (order.Tx) and
// has no standalone entry point.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Grant, error)
	ListByMember(ctx context.Context, memberID int64) ([]Grant, error)
}
