// Package apperr defines the tagged error type used for all business
// failures. Every failure a caller can act on carries a stable Code;
// infrastructure errors are wrapped and surfaced as-is.
package apperr

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Code is a stable, machine-readable business error code.
type Code string

const (
	CodeProductNotFound          Code = "PRODUCT_NOT_FOUND"
	CodeCategoryNotFound         Code = "CATEGORY_NOT_FOUND"
	CodeCartNotFound             Code = "CART_NOT_FOUND"
	CodeCartEmpty                Code = "CART_EMPTY"
	CodeCartOutOfRange           Code = "CART_OUT_OF_RANGE"
	CodeOutOfStock               Code = "OUT_OF_STOCK"
	CodeUserNotAuthorized        Code = "USER_NOT_AUTHORIZED"
	CodeUserNotFound             Code = "USER_NOT_FOUND"
	CodeDuplicateEmail           Code = "DUPLICATE_EMAIL"
	CodeOrderNotFound            Code = "ORDER_NOT_FOUND"
	CodeOrderProductNotFound     Code = "ORDER_PRODUCT_NOT_FOUND"
	CodeOrderModificationBlocked Code = "ORDER_MODIFICATION_NOT_ALLOWED"
	CodeCouponNotFound           Code = "COUPON_NOT_FOUND"
	CodeCouponAlreadyUsed        Code = "COUPON_ALREADY_USED"
)

// Error is a business failure with a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is makes errors.Is match two *Error values by code, so sentinel business
// errors can be compared without caring about message text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New returns a business error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf returns a business error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the business code from err, unwrapping as needed.
// The second return is false when err carries no business code.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given business code.
func IsCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
