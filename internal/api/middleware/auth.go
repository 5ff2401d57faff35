package middleware

import (
	"context"
	"net/http"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/response"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
)

type contextKey string

const userKey contextKey = "authenticated_user"

// UserSource authenticates an API key. *core.UserService satisfies it.
type UserSource interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
}

// Auth returns a middleware that validates the X-API-Key header and stores
// the authenticated user in the request context.
func Auth(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			user, err := users.GetByAPIKey(r.Context(), key)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user, or nil outside the Auth middleware.
func UserFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}

// WithUser stores a user in the context. Test helper for handlers.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// RequireRole returns a middleware that rejects callers whose role is not in
// the allowed set.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFrom(r.Context())
			if user == nil {
				response.WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				response.WriteError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
