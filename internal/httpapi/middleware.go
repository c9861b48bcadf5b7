package httpapi

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

const userIDKey contextKey = "user_id"

// IdentityMiddleware reads the authenticated user id supplied by the identity
// layer in front of this service. The value is trusted as-is; credential
// validation happens upstream.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-User-ID")
		if header == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
			return
		}
		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil || userID <= 0 {
			respondError(w, http.StatusUnauthorized, "unauthorized", "invalid user identity")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getUserIDFromContext(ctx context.Context) int64 {
	if userID, ok := ctx.Value(userIDKey).(int64); ok {
		return userID
	}
	return 0
}
