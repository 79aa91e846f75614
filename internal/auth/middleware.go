package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// UserIDFromContext returns the user id RequireAuth stored on the request.
func UserIDFromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(ctxKey{}).(uint64)
	return id, ok
}

// RequireAuth gates a route group on a valid Bearer token.
func RequireAuth(jwtSvc *JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "Bearer") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			userID, err := jwtSvc.Verify(strings.TrimSpace(token))
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
