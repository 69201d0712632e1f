package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/teamfit/storefront/internal/domain/apperr"
	"github.com/teamfit/storefront/internal/domain/member"
	"github.com/teamfit/storefront/internal/domain/product"
)

// ErrNotFound is returned when a member has no cart row for a product.
var ErrNotFound = apperr.New(apperr.CodeCartNotFound, "cart row not found")

// Service implements cart management. Every operation takes the
// authenticated member id explicitly; resolving it is the transport
// layer's job.
type Service struct {
	carts    Repository
	products product.Repository
	members  member.Repository
}

// NewService creates a cart Service with the required dependencies.
func NewService(carts Repository, products product.Repository, members member.Repository) *Service {
	return &Service{
		carts:    carts,
		products: products,
		members:  members,
	}
}

// List returns the member's cart rows in insertion order.
func (s *Service) List(ctx context.Context, memberID int64) ([]Cart, error) {
	rows, err := s.carts.ListByMember(ctx, memberID)
	if err != nil {
		return nil, errors.Wrap(err, "list carts")
	}
	return rows, nil
}

// ListWithProduct returns the member's cart rows joined with current
// product name and price.
func (s *Service) ListWithProduct(ctx context.Context, memberID int64) ([]ProductLine, error) {
	lines, err := s.carts.ListWithProduct(ctx, memberID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart products")
	}
	return lines, nil
}

// Add puts quantity units of a product into the member's cart. If a row for
// the (member, product) pair already exists its quantity is increased; the
// merged quantity must still satisfy the range and stock rules.
func (s *Service) Add(ctx context.Context, memberID, productID int64, quantity int) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return errors.Wrap(err, "resolve product")
	}
	if err := checkQuantity(quantity, p); err != nil {
		return err
	}

	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return apperr.Newf(apperr.CodeUserNotFound, "member %d not found", memberID)
	}

	existing, err := s.carts.FindByMemberAndProduct(ctx, memberID, productID)
	switch {
	case err == nil:
		merged := existing.Quantity + quantity
		if err := checkQuantity(merged, p); err != nil {
			return err
		}
		return errors.Wrap(s.carts.UpdateQuantity(ctx, existing.ID, merged), "merge cart row")
	case apperr.IsCode(err, apperr.CodeCartNotFound):
		c := &Cart{MemberID: memberID, ProductID: productID, Quantity: quantity}
		return errors.Wrap(s.carts.Create(ctx, c), "create cart row")
	default:
		return errors.Wrap(err, "find cart row")
	}
}

// UpdateQuantity sets the quantity on the member's cart row for a product.
func (s *Service) UpdateQuantity(ctx context.Context, memberID, productID int64, quantity int) error {
	c, err := s.carts.FindByMemberAndProduct(ctx, memberID, productID)
	if err != nil {
		return errors.Wrap(err, "find cart row")
	}
	if c.MemberID != memberID {
		return apperr.New(apperr.CodeUserNotAuthorized, "cart row belongs to another member")
	}

	p, err := s.products.GetByID(ctx, c.ProductID)
	if err != nil {
		return errors.Wrap(err, "resolve product")
	}
	if err := checkQuantity(quantity, p); err != nil {
		return err
	}

	if c.Quantity == quantity {
		return nil
	}
	return errors.Wrap(s.carts.UpdateQuantity(ctx, c.ID, quantity), "update cart row")
}

// Remove deletes the member's cart row for a product.
func (s *Service) Remove(ctx context.Context, memberID, productID int64) error {
	c, err := s.carts.FindByMemberAndProduct(ctx, memberID, productID)
	if err != nil {
		return errors.Wrap(err, "find cart row")
	}
	if c.MemberID != memberID {
		return apperr.New(apperr.CodeUserNotAuthorized, "cart row belongs to another member")
	}
	return errors.Wrap(s.carts.Delete(ctx, c.ID), "delete cart row")
}

// Clear deletes all of the member's cart rows.
func (s *Service) Clear(ctx context.Context, memberID int64) error {
	return errors.Wrap(s.carts.DeleteByMember(ctx, memberID), "clear cart")
}

// checkQuantity enforces the cart quantity rules: within [MinQuantity,
// MaxQuantity] and not above the product's stock.
func checkQuantity(quantity int, p *product.Product) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return apperr.Newf(apperr.CodeCartOutOfRange,
			"quantity %d outside allowed range %d..%d", quantity, MinQuantity, MaxQuantity)
	}
	if quantity > p.Stock {
		return apperr.Newf(apperr.CodeOutOfStock,
			"requested %d of product %d but only %d in stock", quantity, p.ID, p.Stock)
	}
	return nil
}
