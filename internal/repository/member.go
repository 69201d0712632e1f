package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamfit/storefront/internal/domain/apperr"
	"github.com/teamfit/storefront/internal/domain/member"
)

const (
	getMemberByIDSQL = `SELECT id, email, name, password_hash, created_at
		FROM members WHERE id = $1`

	getMemberByEmailSQL = `SELECT id, email, name, password_hash, created_at
		FROM members WHERE email = $1`
)

var _ member.Repository = (*MemberRepository)(nil)

// MemberRepository implements member.Repository backed by PostgreSQL.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a MemberRepository that uses the given pool.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// FindByID returns the member with the given id, or USER_NOT_FOUND.
func (r *MemberRepository) FindByID(ctx context.Context, id int64) (*member.Member, error) {
	m, err := scanMember(r.pool.QueryRow(ctx, getMemberByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Newf(apperr.CodeUserNotFound, "member %d not found", id)
		}
		return nil, fmt.Errorf("finding member %d: %w", id, err)
	}
	return m, nil
}

// FindByEmail returns the member with the given email, or USER_NOT_FOUND.
func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	m, err := scanMember(r.pool.QueryRow(ctx, getMemberByEmailSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Newf(apperr.CodeUserNotFound, "member %q not found", email)
		}
		return nil, fmt.Errorf("finding member %q: %w", email, err)
	}
	return m, nil
}

func scanMember(row pgx.Row) (*member.Member, error) {
	var m member.Member
	err := row.Scan(&m.ID, &m.Email, &m.Name, &m.PasswordHash, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
