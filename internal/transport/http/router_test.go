package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-otp-signup/internal/config"
	"github.com/go-otp-signup/internal/domain"
	jwtinfra "github.com/go-otp-signup/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- in-memory stores ---

type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*domain.Account
}

func (m *memAccounts) Create(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return domain.ErrAlreadyRegistered
		}
	}
	m.byID[a.AccountID] = a
	return nil
}

func (m *memAccounts) Get(_ context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[accountID]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAccounts) List(_ context.Context, role string) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Account
	for _, a := range m.byID {
		if role == "" || a.Role == role {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (m *memAccounts) Delete(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[accountID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, accountID)
	return nil
}

type memStaging struct {
	mu      sync.Mutex
	entries map[string]domain.StagedSignup
}

func (m *memStaging) Put(_ context.Context, s *domain.StagedSignup, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ExpiresAt = time.Now().Add(ttl).Unix()
	m.entries[s.Key] = *s
	return nil
}

func (m *memStaging) Get(_ context.Context, key string) (*domain.StagedSignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.entries[key]
	if !ok || s.ExpiresAt <= time.Now().Unix() {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memStaging) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

type captureMailer struct {
	mu   sync.Mutex
	last string
}

func (c *captureMailer) SendEmail(_, _, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = body
	return nil
}

var otpRe = regexp.MustCompile(`<h1>(\d{6})</h1>`)

func (c *captureMailer) code(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	m := otpRe.FindStringSubmatch(c.last)
	require.Len(t, m, 2)
	return m[1]
}

// --- harness ---

type recordingEvents struct {
	mu      sync.Mutex
	created []string
}

func (r *recordingEvents) AccountCreated(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, a.Email)
	return nil
}

type testServer struct {
	handler  http.Handler
	accounts *memAccounts
	mailer   *captureMailer
	events   *recordingEvents
	jwt      *jwtinfra.Provider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:      "router-test-secret",
		JWTAlgorithm:   "HS256",
		JWTExpiry:      7 * 24 * time.Hour,
		OTPExpiry:      10 * time.Minute,
		AllowedOrigins: []string{"*"},
	}
	p, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)

	s := &testServer{
		accounts: &memAccounts{byID: map[string]*domain.Account{}},
		mailer:   &captureMailer{},
		events:   &recordingEvents{},
		jwt:      p,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = NewRouter(cfg, logger, &Deps{
		AccountRepo: s.accounts,
		StagingRepo: &memStaging{entries: map[string]domain.StagedSignup{}},
		Mailer:      s.mailer,
		JWTProvider: p,
		Events:      s.events,
		BcryptCost:  bcrypt.MinCost,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
	Message string `json:"message"`
}

func decodeAuth(t *testing.T, rr *httptest.ResponseRecorder) authBody {
	t.Helper()
	var b authBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&b))
	return b
}

// --- tests ---

func TestSignupVerifyLoginScenario(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/auth/signup/request-otp", "", map[string]string{
		"name": "Ann", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	code := s.mailer.code(t)

	wrong := "100000"
	if code == wrong {
		wrong = "100001"
	}
	rr = s.do(t, http.MethodPost, "/api/auth/signup/verify-otp", "", map[string]string{"email": "a@x.com", "otp": wrong})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid or expired OTP", decodeAuth(t, rr).Message)

	rr = s.do(t, http.MethodPost, "/api/auth/signup/verify-otp", "", map[string]string{"email": "a@x.com", "otp": code})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeAuth(t, rr)
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "a@x.com", created.User.Email)
	assert.Equal(t, "Ann", created.User.Name)
	assert.Equal(t, domain.RoleUser, created.User.Role)

	rr = s.do(t, http.MethodPost, "/api/auth/signup/verify-otp", "", map[string]string{"email": "a@x.com", "otp": code})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	login := decodeAuth(t, rr)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, created.User.ID, login.User.ID)

	claims, err := s.jwt.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, claims.ID)

	rr = s.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, []string{"a@x.com"}, s.events.created)
}

func TestRouter_NilEventsStillCreatesAccount(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:      "router-test-secret",
		JWTAlgorithm:   "HS256",
		JWTExpiry:      time.Hour,
		OTPExpiry:      time.Minute,
		AllowedOrigins: []string{"*"},
	}
	p, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)
	mailer := &captureMailer{}
	s := &testServer{accounts: &memAccounts{byID: map[string]*domain.Account{}}, mailer: mailer, jwt: p}
	s.handler = NewRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &Deps{
		AccountRepo: s.accounts,
		StagingRepo: &memStaging{entries: map[string]domain.StagedSignup{}},
		Mailer:      mailer,
		JWTProvider: p,
		BcryptCost:  bcrypt.MinCost,
	})

	rr := s.do(t, http.MethodPost, "/api/auth/signup/request-otp", "", map[string]string{
		"name": "Ann", "email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = s.do(t, http.MethodPost, "/api/auth/signup/verify-otp", "", map[string]string{"email": "a@x.com", "otp": mailer.code(t)})
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestRequestOTP_MultibytePasswordOverBcryptLimit(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/auth/signup/request-otp", "", map[string]string{
		"name": "Ann", "email": "a@x.com", "password": strings.Repeat("é", 40),
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	assert.Equal(t, "validation failed", decodeAuth(t, rr).Message)
}

func TestAuthMe_DisabledAccountTokenRejected(t *testing.T) {
	s := newTestServer(t)
	s.accounts.byID["01"] = &domain.Account{AccountID: "01", Email: "a@x.com", Role: domain.RoleAdmin, Status: domain.StatusInactive}
	token, err := s.jwt.Sign("01")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", token, nil).Code)
}

func TestRequestOTP_ExistingAccount(t *testing.T) {
	s := newTestServer(t)
	s.accounts.byID["01"] = &domain.Account{AccountID: "01", Email: "a@x.com"}

	rr := s.do(t, http.MethodPost, "/api/auth/signup/request-otp", "", map[string]string{
		"name": "Ann", "email": "a@x.com", "password": "secret1",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "user already exists", decodeAuth(t, rr).Message)
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	s := newTestServer(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	s.accounts.byID["01"] = &domain.Account{AccountID: "01", Email: "a@x.com", PasswordHash: string(hash), Status: domain.StatusActive}

	unknown := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@x.com", "password": "secret1"})
	wrong := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "secret2"})

	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	s.accounts.byID["01ADMIN"] = &domain.Account{AccountID: "01ADMIN", Email: "root@x.com", Role: domain.RoleAdmin}
	s.accounts.byID["02USER"] = &domain.Account{AccountID: "02USER", Email: "u@x.com", Role: domain.RoleUser}
	adminToken, err := s.jwt.Sign("01ADMIN")
	require.NoError(t, err)
	userToken, err := s.jwt.Sign("02USER")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/users", userToken, nil).Code)

	rr := s.do(t, http.MethodPost, "/api/users", adminToken, map[string]string{
		"name": "Meg", "email": "m@x.com", "password": "secret1", "role": domain.RoleManager,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/api/users?role=manager", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var managers []domain.Account
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&managers))
	require.Len(t, managers, 1)
	assert.Equal(t, "m@x.com", managers[0].Email)

	rr = s.do(t, http.MethodDelete, "/api/users/"+managers[0].AccountID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(t, http.MethodGet, "/api/users/"+managers[0].AccountID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/", "", nil).Code)
}
