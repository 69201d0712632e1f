package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. Deleted products stay in the table with
// IsDeleted set and are excluded from listings.
type Product struct {
	ID           int64
	CategoryID   int64
	Name         string
	Price        decimal.Decimal
	Info         string
	Stock        int
	Manufacturer string
	IsDeleted    bool
}

// SortDir is a listing sort direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ListParams controls catalog listing: pagination, sorting, keyword search
// and optional category scoping. Zero values get defaults in the service.
type ListParams struct {
	Page       int
	Size       int
	SortField  string
	SortDir    SortDir
	Keyword    string
	CategoryID int64
}

// Repository provides read access to the product catalog.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	// List returns one page of non-deleted products and the total number of
	// matching rows.
	List(ctx context.Context, params ListParams) ([]Product, int64, error)
}
