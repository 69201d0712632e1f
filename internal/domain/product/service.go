package product

import (
	"context"
	"math"

	"github.com/go-faster/errors"

	"github.com/teamfit/storefront/internal/domain/apperr"
)

// DefaultPageSize is used when a listing request does not specify a size.
const DefaultPageSize = 10

// MaxPageSize caps a caller-supplied page size.
const MaxPageSize = 100

// sortFields whitelists the columns a caller may sort by. Anything else
// falls back to "id" instead of reaching the SQL layer.
var sortFields = map[string]struct{}{
	"id":         {},
	"name":       {},
	"price":      {},
	"created_at": {},
}

// Page is one page of catalog results.
type Page struct {
	Items      []Product
	TotalPages int
	TotalItems int64
}

// Service wraps the catalog repository with parameter normalization.
type Service struct {
	products Repository
}

// NewService creates a catalog Service.
func NewService(products Repository) *Service {
	return &Service{products: products}
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	return p, nil
}

// List returns one page of the catalog after normalizing the params:
// 1-indexed page, bounded size, whitelisted sort field.
func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Size < 1 {
		params.Size = DefaultPageSize
	}
	if params.Size > MaxPageSize {
		params.Size = MaxPageSize
	}
	if _, ok := sortFields[params.SortField]; !ok {
		params.SortField = "id"
	}
	if params.SortDir != SortAsc && params.SortDir != SortDesc {
		params.SortDir = SortDesc
	}

	items, total, err := s.products.List(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	return &Page{
		Items:      items,
		TotalPages: int(math.Ceil(float64(total) / float64(params.Size))),
		TotalItems: total,
	}, nil
}

// ErrNotFound is the business error repositories return for missing or
// soft-deleted products.
var ErrNotFound = apperr.New(apperr.CodeProductNotFound, "product not found")
