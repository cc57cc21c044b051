package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-otp-signup/internal/domain"
	jwtinfra "github.com/go-otp-signup/internal/infrastructure/jwt"
	"github.com/go-otp-signup/internal/pkg/logx"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*domain.AuthResult, error)
	Authenticate(ctx context.Context, token string) (*domain.Account, error)
}

type accountStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type tokenProvider interface {
	Sign(accountID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type service struct {
	accounts accountStore
	tokens   tokenProvider
}

type ServiceDeps struct {
	AccountRepo accountStore
	JWTProvider tokenProvider
}

func NewService(deps ServiceDeps) Service {
	return &service{accounts: deps.AccountRepo, tokens: deps.JWTProvider}
}

// dummyHash is compared against when the email is unknown so both failure
// paths pay for one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

func (s *service) Login(ctx context.Context, req LoginRequest) (*domain.AuthResult, error) {
	email := domain.NormalizeEmail(req.Email)
	a, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("look up account: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if a.Status == domain.StatusInactive {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}

	token, err := s.tokens.Sign(a.AccountID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	logx.FromContext(ctx).Info("login", "account_id", a.AccountID)
	return &domain.AuthResult{Token: token, Account: a}, nil
}

// Authenticate resolves a bearer token to the account it was issued for.
func (s *service) Authenticate(ctx context.Context, token string) (*domain.Account, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	a, err := s.accounts.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("account no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	// Tokens issued before an account was disabled stop working immediately.
	if a.Status == domain.StatusInactive {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return a, nil
}
