package http

import (
	"context"
	"time"

	"github.com/go-otp-signup/internal/domain"
	jwtinfra "github.com/go-otp-signup/internal/infrastructure/jwt"
)

// AccountRepository is the minimal interface the router requires from an account store.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// List scans the table, or queries the role-index GSI when role is set.
	List(ctx context.Context, role string) ([]domain.Account, error)
	Delete(ctx context.Context, accountID string) error
}

// StagingRepository is the minimal interface the router requires from the
// signup staging store. Entries expire after the ttl given to Put.
type StagingRepository interface {
	Put(ctx context.Context, s *domain.StagedSignup, ttl time.Duration) error
	Get(ctx context.Context, key string) (*domain.StagedSignup, error)
	Delete(ctx context.Context, key string) error
}

// TokenProvider signs and verifies session tokens.
type TokenProvider interface {
	Sign(accountID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}
