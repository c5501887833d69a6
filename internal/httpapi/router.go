package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/auth"
	"github.com/contentforge/contentforge/internal/billing"
	"github.com/contentforge/contentforge/internal/generation"
	"github.com/contentforge/contentforge/internal/plan"
	"github.com/contentforge/contentforge/internal/user"
	"github.com/contentforge/contentforge/pkg/httpserver"
)

// UserService is the account workflow surface the transport needs.
// Satisfied by user.Service.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, error)
	Get(ctx context.Context, id bson.ObjectID) (*user.User, error)
	UpdateProfile(ctx context.Context, id bson.ObjectID, username, email, password string) (*user.User, error)
	DeleteHistory(ctx context.Context, userID, historyID bson.ObjectID) error
}

// Generator runs completions and lists stored history. Satisfied by
// generation.Service.
type Generator interface {
	Generate(ctx context.Context, userID bson.ObjectID, provider, prompt string) (*generation.History, error)
	ListHistory(ctx context.Context, userID bson.ObjectID) ([]generation.History, error)
}

// PaymentLedger is the billing surface. Satisfied by billing.Ledger.
type PaymentLedger interface {
	InitiateCheckout(ctx context.Context, userID bson.ObjectID, email string, amount float64, p plan.Plan) (*billing.Checkout, error)
	VerifyCheckout(ctx context.Context, reference string) (*billing.Payment, *user.User, error)
	HandleWebhook(ctx context.Context, event billing.WebhookEvent) error
	FreeSignup(ctx context.Context, userID bson.ObjectID) (*user.User, error)
}

// PaymentLister populates the payments array on profile responses.
// Satisfied by billing.PaymentStore.
type PaymentLister interface {
	ByUser(ctx context.Context, userID bson.ObjectID) ([]billing.Payment, error)
}

// Deps wires the transport to the services behind it.
type Deps struct {
	Users     UserService
	Issuer    *auth.Issuer
	Generator Generator
	Ledger    PaymentLedger
	Payments  PaymentLister

	// WebhookSecret signs inbound gateway events.
	WebhookSecret string

	// GlobalLimit covers every API route; AuthLimit additionally guards
	// the credential endpoints. Nil middleware is skipped.
	GlobalLimit func(http.Handler) http.Handler
	AuthLimit   func(http.Handler) http.Handler

	HealthChecks []httpserver.HealthCheck
	Log          *slog.Logger
}

// API owns the handlers. Construct with NewRouter.
type API struct {
	cfg           Config
	users         UserService
	issuer        *auth.Issuer
	generator     Generator
	ledger        PaymentLedger
	payments      PaymentLister
	webhookSecret string
	log           *slog.Logger
}

// NewRouter assembles the full route tree under /api/v1.
func NewRouter(cfg Config, deps Deps) *chi.Mux {
	log := deps.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a := &API{
		cfg:           cfg,
		users:         deps.Users,
		issuer:        deps.Issuer,
		generator:     deps.Generator,
		ledger:        deps.Ledger,
		payments:      deps.Payments,
		webhookSecret: deps.WebhookSecret,
		log:           log,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.Get("/health", httpserver.HealthcheckHandler(5*time.Second, deps.HealthChecks...))

	r.Route("/api/v1", func(r chi.Router) {
		if deps.GlobalLimit != nil {
			r.Use(deps.GlobalLimit)
		}

		r.Group(func(r chi.Router) {
			if deps.AuthLimit != nil {
				r.Use(deps.AuthLimit)
			}
			r.Post("/users/register", a.handleRegister)
			r.Post("/users/login", a.handleLogin)
		})

		r.Post("/users/logout", a.handleLogout)
		r.Get("/users/auth/check", a.handleAuthCheck)

		r.Group(func(r chi.Router) {
			r.Use(a.issuer.RequireAuth)
			r.Get("/users/profile", a.handleProfile)
			r.Put("/users/profile", a.handleUpdateProfile)
			r.Delete("/users/history/{historyID}", a.handleDeleteHistory)

			r.Post("/google/generate-content", a.handleGenerate(generation.ProviderGemini))
			r.Post("/groq/generate-content", a.handleGenerate(generation.ProviderGroq))

			r.Post("/paystack/checkout", a.handleCheckout)
			r.Post("/paystack/free", a.handleFreeSignup)
		})

		r.Get("/paystack/verify/{reference}", a.handleVerifyCheckout)
		r.Post("/paystack/verify/{reference}", a.handleVerifyCheckout)

		r.Post("/webhook", a.handleWebhook)
	})

	return r
}
