package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-otp-signup/internal/application/account"
	"github.com/go-otp-signup/internal/application/session"
	"github.com/go-otp-signup/internal/application/signup"
	"github.com/go-otp-signup/internal/config"
	"github.com/go-otp-signup/internal/domain"
	"github.com/go-otp-signup/internal/infrastructure/smtp"
	"github.com/go-otp-signup/internal/infrastructure/sns"
	"github.com/go-otp-signup/internal/pkg/logx"
	"github.com/go-otp-signup/internal/transport/http/handler"
	appmiddleware "github.com/go-otp-signup/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo AccountRepository
	StagingRepo StagingRepository
	Mailer      smtp.Mailer
	JWTProvider TokenProvider
	Events      sns.EventPublisher // nil disables account events
	BcryptCost  int                // bcrypt.DefaultCost when zero
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, logger *slog.Logger, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(logx.HTTPMiddleware(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	signupSvc := signup.NewService(signup.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		StagingRepo: deps.StagingRepo,
		Mailer:      deps.Mailer,
		JWTProvider: deps.JWTProvider,
		Events:      deps.Events,
		OTPTTL:      cfg.OTPExpiry,
		BcryptCost:  deps.BcryptCost,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		JWTProvider: deps.JWTProvider,
	})
	accountSvc := account.NewService(account.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		BcryptCost:  deps.BcryptCost,
	})

	authMw := appmiddleware.Auth(sessionSvc)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(signupSvc, sessionSvc)
	userH := handler.NewUserHandler(accountSvc)

	r.Get("/", healthH.Root)
	r.Get("/health", healthH.Health)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Post("/auth/signup/request-otp", authH.RequestOTP)
		r.Post("/auth/signup/verify-otp", authH.VerifyOTP)
		r.Post("/auth/login", authH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", authH.Me)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Post("/users", userH.Create)
				r.Get("/users/{id}", userH.Get)
				r.Delete("/users/{id}", userH.Delete)
			})
		})
	})

	return r
}
