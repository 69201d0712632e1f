// Package auth issues and verifies the JWT access/refresh token pair used
// for member authentication.
package auth

import (
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// token type, expiry, malformed subject. Callers normalize it to
// USER_NOT_AUTHORIZED at the transport boundary.
var ErrInvalidToken = errors.New("invalid token")

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

type claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies member tokens with a shared HMAC secret.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokens creates a token manager.
func NewTokens(secret []byte, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess returns a signed access token for the member.
func (t *Tokens) IssueAccess(memberID int64) (string, error) {
	return t.issue(memberID, typeAccess, t.accessTTL)
}

// IssueRefresh returns a signed refresh token for the member.
func (t *Tokens) IssueRefresh(memberID int64) (string, error) {
	return t.issue(memberID, typeRefresh, t.refreshTTL)
}

func (t *Tokens) issue(memberID int64, tokenType string, ttl time.Duration) (string, error) {
	now := t.now()
	c := claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(memberID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// VerifyAccess validates an access token and returns the member id.
func (t *Tokens) VerifyAccess(token string) (int64, error) {
	return t.verify(token, typeAccess)
}

// VerifyRefresh validates a refresh token and returns the member id.
func (t *Tokens) VerifyRefresh(token string) (int64, error) {
	return t.verify(token, typeRefresh)
}

func (t *Tokens) verify(token, wantType string) (int64, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", tok.Method.Alg())
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	if c.TokenType != wantType {
		return 0, ErrInvalidToken
	}

	memberID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return memberID, nil
}
