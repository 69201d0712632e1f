// Package member holds the member directory contract. Members are created
// out-of-band (seeding, sign-up is not part of this service) and are never
// deleted by any workflow here.
package member

import (
	"context"
	"time"
)

// Member is a registered storefront member.
type Member struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository provides member directory lookups.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Member, error)
	FindByEmail(ctx context.Context, email string) (*Member, error)
}
