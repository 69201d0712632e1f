// Package category exposes the catalog's category tree. Categories form a
// single-level hierarchy: a category either has no parent or points at one.
package category

import (
	"context"

	"github.com/teamfit/storefront/internal/domain/apperr"
)

// ErrNotFound is returned for missing or soft-deleted categories.
var ErrNotFound = apperr.New(apperr.CodeCategoryNotFound, "category not found")

// Category is one node of the category tree.
type Category struct {
	ID           int64
	Name         string
	ParentID     *int64
	DisplayOrder int
	IsDeleted    bool
}

// Repository provides read access to the category tree.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	ListParents(ctx context.Context) ([]Category, error)
	ListChildren(ctx context.Context, parentID int64) ([]Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
}
