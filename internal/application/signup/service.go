// Package signup implements e-mail OTP gated account creation.
//
// A signup request is staged under "otp:<email>" with a TTL and a six digit
// code is mailed to the address. Verifying the code promotes the staged entry
// into a permanent account exactly once.
package signup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-otp-signup/internal/domain"
	"github.com/go-otp-signup/internal/pkg/id"
	"github.com/go-otp-signup/internal/pkg/logx"
	"github.com/go-otp-signup/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

const defaultOTPTTL = 10 * time.Minute

type RequestCodeRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=64,maxbytes=72"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type Service interface {
	RequestCode(ctx context.Context, req RequestCodeRequest) error
	VerifyAndCreate(ctx context.Context, req VerifyRequest) (*domain.AuthResult, error)
}

type accountStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
}

type stagingStore interface {
	Put(ctx context.Context, s *domain.StagedSignup, ttl time.Duration) error
	Get(ctx context.Context, key string) (*domain.StagedSignup, error)
	Delete(ctx context.Context, key string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenSigner interface {
	Sign(accountID string) (string, error)
}

type eventPublisher interface {
	AccountCreated(ctx context.Context, a *domain.Account) error
}

type service struct {
	accounts   accountStore
	staging    stagingStore
	mailer     mailer
	tokens     tokenSigner
	events     eventPublisher
	otpTTL     time.Duration
	bcryptCost int
}

type ServiceDeps struct {
	AccountRepo accountStore
	StagingRepo stagingStore
	Mailer      mailer
	JWTProvider tokenSigner
	Events      eventPublisher // optional
	OTPTTL      time.Duration
	BcryptCost  int // bcrypt.DefaultCost when zero
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		accounts:   deps.AccountRepo,
		staging:    deps.StagingRepo,
		mailer:     deps.Mailer,
		tokens:     deps.JWTProvider,
		events:     deps.Events,
		otpTTL:     deps.OTPTTL,
		bcryptCost: deps.BcryptCost,
	}
	if s.otpTTL == 0 {
		s.otpTTL = defaultOTPTTL
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	return s
}

func (s *service) RequestCode(ctx context.Context, req RequestCodeRequest) error {
	email := domain.NormalizeEmail(req.Email)
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return fmt.Errorf("signup %s: %w", email, domain.ErrAlreadyRegistered)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up account: %w", err)
	}

	code, err := otp.Generate()
	if err != nil {
		return err
	}
	// Only the hash is staged; the plaintext password never reaches the store.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return fmt.Errorf("password exceeds 72 bytes: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	staged := &domain.StagedSignup{
		Key:          domain.StagingKey(email),
		Email:        email,
		Code:         code,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
	}
	if err := s.staging.Put(ctx, staged, s.otpTTL); err != nil {
		return fmt.Errorf("stage signup: %w", err)
	}

	body, err := renderOTPEmail(code, s.otpTTL)
	if err != nil {
		return err
	}
	if err := s.mailer.SendEmail(email, otpSubject, body); err != nil {
		logx.FromContext(ctx).Error("otp email failed", "email", email, "err", err)
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	logx.FromContext(ctx).Info("otp sent", "email", email)
	return nil
}

func (s *service) VerifyAndCreate(ctx context.Context, req VerifyRequest) (*domain.AuthResult, error) {
	email := domain.NormalizeEmail(req.Email)
	key := domain.StagingKey(email)

	staged, err := s.staging.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("verify %s: %w", email, domain.ErrOTPNotFound)
		}
		return nil, fmt.Errorf("load staged signup: %w", err)
	}
	if !otp.Equal(staged.Code, req.OTP) {
		return nil, fmt.Errorf("verify %s: %w", email, domain.ErrInvalidCode)
	}

	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:    id.New(),
		Name:         staged.Name,
		Email:        email,
		PasswordHash: staged.PasswordHash,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}

	logger := logx.FromContext(ctx)
	// The account exists now; a leftover staged entry can only fail with
	// ErrAlreadyRegistered and expires on its own.
	if err := s.staging.Delete(ctx, key); err != nil {
		logger.Warn("failed to delete staged signup", "email", email, "err", err)
	}
	if s.events != nil {
		if err := s.events.AccountCreated(ctx, a); err != nil {
			logger.Warn("failed to publish account event", "account_id", a.AccountID, "err", err)
		}
	}

	token, err := s.tokens.Sign(a.AccountID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	logger.Info("account registered", "account_id", a.AccountID, "email", email)
	return &domain.AuthResult{Token: token, Account: a}, nil
}
