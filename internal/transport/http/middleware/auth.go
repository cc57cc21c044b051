package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-otp-signup/internal/domain"
	"github.com/go-otp-signup/internal/pkg/logx"
)

type contextKey string

const accountKey contextKey = "account"

// Authenticator resolves a bearer token to the account it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Account, error)
}

// Auth returns middleware that validates the Bearer JWT, loads the account it
// names and injects it into the request context.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "no token provided")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenStr == "" {
				writeJSONError(w, http.StatusUnauthorized, "token missing")
				return
			}
			a, err := authn.Authenticate(r.Context(), tokenStr)
			if err != nil {
				logx.FromContext(r.Context()).Debug("authentication failed", "err", err)
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), accountKey, a)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFromContext returns the authenticated account set by Auth.
func AccountFromContext(ctx context.Context) (*domain.Account, bool) {
	a, ok := ctx.Value(accountKey).(*domain.Account)
	return a, ok
}

// WithAccount returns a copy of ctx carrying a. Used by tests and by callers
// that authenticate out of band.
func WithAccount(ctx context.Context, a *domain.Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}
