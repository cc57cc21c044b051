package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-otp-signup/internal/domain"
	"github.com/go-otp-signup/internal/pkg/id"
	"github.com/go-otp-signup/internal/pkg/logx"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	List(ctx context.Context, role string) ([]domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Create(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error)
	Delete(ctx context.Context, accountID string) error
}

type accountStore interface {
	List(ctx context.Context, role string) ([]domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Delete(ctx context.Context, accountID string) error
}

type service struct {
	repo       accountStore
	bcryptCost int
}

type ServiceDeps struct {
	AccountRepo accountStore
	BcryptCost  int // bcrypt.DefaultCost when zero
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.AccountRepo, bcryptCost: deps.BcryptCost}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	return s
}

func (s *service) List(ctx context.Context, role string) ([]domain.Account, error) {
	if role != "" && !domain.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrBadRequest)
	}
	accounts, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.Get(ctx, accountID)
}

// Create adds an account without the OTP round trip. Role and status default
// to user and active.
func (s *service) Create(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("password exceeds 72 bytes: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	status := req.Status
	if status == "" {
		status = domain.StatusActive
	}
	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:    id.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        domain.NormalizeEmail(req.Email),
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
		Department:   strings.TrimSpace(req.Department),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	logx.FromContext(ctx).Info("account created", "account_id", a.AccountID, "role", a.Role)
	return a, nil
}

func (s *service) Delete(ctx context.Context, accountID string) error {
	if err := s.repo.Delete(ctx, accountID); err != nil {
		return err
	}
	logx.FromContext(ctx).Info("account deleted", "account_id", accountID)
	return nil
}
