package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/teamfit/storefront/internal/domain/apperr"
	"github.com/teamfit/storefront/internal/domain/member"
)

// Service implements the order workflow. The authenticated member id is an
// explicit argument on every call.
type Service struct {
	members member.Repository
	orders  Repository
	store   Store
}

// NewService creates an order Service with the required dependencies.
func NewService(members member.Repository, orders Repository, store Store) *Service {
	return &Service{
		members: members,
		orders:  orders,
		store:   store,
	}
}

// Create converts the member's cart into a persisted order. The whole
// procedure — cart read, per-line stock check, request-item matching,
// coupon redemption, order insert and cart deletion — runs inside one
// transaction; any failure rolls back every write.
//
// Stock is validated against the cart quantity but deliberately not
// decremented here; see DESIGN.md.
func (s *Service) Create(ctx context.Context, memberID int64, req CreateRequest) (*Order, error) {
	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, apperr.Newf(apperr.CodeUserNotAuthorized, "member %d not found", memberID)
	}

	var created *Order
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		lines, err := tx.CartLines(ctx, memberID)
		if err != nil {
			return errors.Wrap(err, "load cart")
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}

		o := &Order{
			MemberID:         memberID,
			DeliveryAddress:  req.Delivery.Address,
			DeliveryReceiver: req.Delivery.Receiver,
			DeliveryPhone:    req.Delivery.Phone,
			DeliveryFee:      req.Delivery.Fee,
			Status:           StatusOrdered,
			TotalPrice:       decimal.Zero,
		}

		for _, line := range lines {
			if line.Stock < line.Quantity {
				return apperr.Newf(apperr.CodeOutOfStock,
					"product %d has %d in stock, cart wants %d", line.ProductID, line.Stock, line.Quantity)
			}

			item, ok := matchItem(req.Items, line.ProductID)
			if !ok {
				return apperr.Newf(apperr.CodeOrderProductNotFound,
					"no order item for cart product %d", line.ProductID)
			}

			if item.CouponGrantID != nil {
				grant, err := tx.CouponByID(ctx, *item.CouponGrantID)
				if err != nil {
					return errors.Wrap(err, "resolve coupon grant")
				}
				if err := tx.RedeemCoupon(ctx, grant.ID); err != nil {
					return errors.Wrap(err, "redeem coupon grant")
				}
			}

			o.addProduct(Product{
				ProductID:       line.ProductID,
				ProductName:     line.ProductName,
				ProductPrice:    line.ProductPrice,
				Quantity:        line.Quantity,
				CouponGrantID:   item.CouponGrantID,
				DiscountedPrice: item.DiscountedPrice,
			})

			if err := tx.DeleteCart(ctx, line.CartID); err != nil {
				return errors.Wrap(err, "delete cart row")
			}
		}

		if err := tx.InsertOrder(ctx, o); err != nil {
			return errors.Wrap(err, "insert order")
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a single order, owner only.
func (s *Service) Get(ctx context.Context, memberID, orderID int64) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if o.MemberID != memberID {
		return nil, ErrNotOwner
	}
	return o, nil
}

// List returns one page of the member's order history, newest first.
// Pages are 1-indexed; values below 1 are clamped to the first page.
func (s *Service) List(ctx context.Context, memberID int64, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	orders, totalPages, err := s.orders.ListByMember(ctx, memberID, page)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return &Page{Orders: orders, TotalPages: totalPages}, nil
}

// UpdateDelivery changes the delivery fields of an order that is still
// ORDERED. Line items are immutable.
func (s *Service) UpdateDelivery(ctx context.Context, memberID, orderID int64, info DeliveryInfo) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if o.MemberID != memberID {
		return nil, ErrNotOwner
	}
	if o.Status != StatusOrdered {
		return nil, ErrModificationBlocked
	}

	if err := s.orders.UpdateDelivery(ctx, orderID, info); err != nil {
		return nil, errors.Wrap(err, "update delivery")
	}

	o.DeliveryAddress = info.Address
	o.DeliveryReceiver = info.Receiver
	o.DeliveryPhone = info.Phone
	o.DeliveryFee = info.Fee
	return o, nil
}

// Cancel transitions an ORDERED order to CANCELLED. No stock, coupon or
// cart compensation is performed.
func (s *Service) Cancel(ctx context.Context, memberID, orderID int64) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "get order")
	}
	if o.MemberID != memberID {
		return ErrNotOwner
	}
	if o.Status != StatusOrdered {
		return ErrModificationBlocked
	}
	return errors.Wrap(s.orders.UpdateStatus(ctx, orderID, StatusCancelled), "cancel order")
}

func matchItem(items []ItemRequest, productID int64) (ItemRequest, bool) {
	for _, item := range items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return ItemRequest{}, false
}
