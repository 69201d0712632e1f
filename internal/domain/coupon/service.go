package coupon

import (
	"context"

	"github.com/go-faster/errors"
)

// Service exposes the coupon ledger reads used outside the order
// transaction. Redemption is not offered here; it only happens as part of
// placing an order.
type Service struct {
	grants Repository
}

// NewService creates a coupon Service.
func NewService(grants Repository) *Service {
	return &Service{grants: grants}
}

// ListForMember returns all coupon grants issued to the member, used and
// unused alike.
func (s *Service) ListForMember(ctx context.Context, memberID int64) ([]Grant, error) {
	grants, err := s.grants.ListByMember(ctx, memberID)
	if err != nil {
		return nil, errors.Wrap(err, "list coupon grants")
	}
	return grants, nil
}
