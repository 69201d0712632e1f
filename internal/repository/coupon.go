package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamfit/storefront/internal/domain/coupon"
)

const (
	getGrantByIDSQL = `SELECT id, member_id, name, used, created_at
		FROM coupon_grants WHERE id = $1`

	listGrantsByMemberSQL = `SELECT id, member_id, name, used, created_at
		FROM coupon_grants WHERE member_id = $1 ORDER BY created_at DESC, id DESC`

	// The used = FALSE predicate makes redemption atomic: of two concurrent
	// redemptions exactly one sees an affected row.
	redeemGrantSQL = `UPDATE coupon_grants SET used = TRUE WHERE id = $1 AND used = FALSE`

	grantExistsSQL = `SELECT EXISTS (SELECT 1 FROM coupon_grants WHERE id = $1)`
)

// querier is the pgx surface shared by *pgxpool.Pool and pgx.Tx, so the
// grant helpers can run both standalone and inside the order transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByID returns a coupon grant by id, or COUPON_NOT_FOUND.
func (r *CouponRepository) FindByID(ctx context.Context, id int64) (*coupon.Grant, error) {
	return findGrant(ctx, r.pool, id)
}

// ListByMember returns all grants issued to the member, newest first.
func (r *CouponRepository) ListByMember(ctx context.Context, memberID int64) ([]coupon.Grant, error) {
	rows, err := r.pool.Query(ctx, listGrantsByMemberSQL, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing coupon grants for member %d: %w", memberID, err)
	}
	grants, err := pgx.CollectRows(rows, scanGrant)
	if err != nil {
		return nil, fmt.Errorf("listing coupon grants for member %d: %w", memberID, err)
	}
	return grants, nil
}

func findGrant(ctx context.Context, q querier, id int64) (*coupon.Grant, error) {
	rows, err := q.Query(ctx, getGrantByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("finding coupon grant %d: %w", id, err)
	}
	g, err := pgx.CollectExactlyOneRow(rows, scanGrant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon grant %d: %w", id, err)
	}
	return &g, nil
}

func redeemGrant(ctx context.Context, q querier, id int64) error {
	tag, err := q.Exec(ctx, redeemGrantSQL, id)
	if err != nil {
		return fmt.Errorf("redeeming coupon grant %d: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row flipped: either the grant never existed or it was already used.
	var exists bool
	if err := q.QueryRow(ctx, grantExistsSQL, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking coupon grant %d: %w", id, err)
	}
	if !exists {
		return coupon.ErrNotFound
	}
	return coupon.ErrAlreadyUsed
}

func scanGrant(row pgx.CollectableRow) (coupon.Grant, error) {
	var g coupon.Grant
	err := row.Scan(&g.ID, &g.MemberID, &g.Name, &g.Used, &g.CreatedAt)
	return g, err
}
