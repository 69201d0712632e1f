package handler

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{ name string }

var memberIDKey = contextKey{"member-id"}

// MemberIDFromContext returns the authenticated member id stored by
// requireAuth. The second return is false outside authenticated routes.
func MemberIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(memberIDKey).(int64)
	return id, ok
}

// requireAuth verifies the Bearer access token and stores the member id in
// the request context. Missing or invalid tokens get 401 without reaching
// the handler.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeUnauthorized(w)
			return
		}

		memberID, err := h.tokens.VerifyAccess(token)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), memberIDKey, memberID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// memberID pulls the authenticated member id set by requireAuth. Routes
// behind the middleware can rely on it being present.
func memberID(r *http.Request) int64 {
	id, _ := MemberIDFromContext(r.Context())
	return id
}
