package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/teamfit/storefront/internal/domain/apperr"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusOf maps business error codes onto HTTP status codes. Unknown
// codes and non-business errors become 500.
func statusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeUserNotAuthorized:
		return http.StatusUnauthorized
	case apperr.CodeProductNotFound,
		apperr.CodeCategoryNotFound,
		apperr.CodeCartNotFound,
		apperr.CodeUserNotFound,
		apperr.CodeOrderNotFound,
		apperr.CodeCouponNotFound:
		return http.StatusNotFound
	case apperr.CodeOrderModificationBlocked,
		apperr.CodeCouponAlreadyUsed,
		apperr.CodeDuplicateEmail:
		return http.StatusConflict
	case apperr.CodeCartOutOfRange,
		apperr.CodeOutOfStock,
		apperr.CodeCartEmpty,
		apperr.CodeOrderProductNotFound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the JSON error envelope. Business errors keep
// their code and message; everything else is logged and hidden behind a
// generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		writeJSON(w, statusOf(e.Code), errorResponse{Code: string(e.Code), Message: e.Message})
		return
	}

	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
	})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: msg})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Code:    string(apperr.CodeUserNotAuthorized),
		Message: "authentication required",
	})
}
