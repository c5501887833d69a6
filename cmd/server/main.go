package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/contentforge/contentforge/internal/auth"
	"github.com/contentforge/contentforge/internal/billing"
	"github.com/contentforge/contentforge/internal/generation"
	"github.com/contentforge/contentforge/internal/httpapi"
	"github.com/contentforge/contentforge/internal/plan"
	"github.com/contentforge/contentforge/internal/quota"
	"github.com/contentforge/contentforge/internal/scheduler"
	"github.com/contentforge/contentforge/internal/user"
	"github.com/contentforge/contentforge/pkg/config"
	"github.com/contentforge/contentforge/pkg/cookie"
	"github.com/contentforge/contentforge/pkg/httpserver"
	"github.com/contentforge/contentforge/pkg/logger"
	mongodb "github.com/contentforge/contentforge/pkg/mongo"
	"github.com/contentforge/contentforge/pkg/ratelimit"
	redisconn "github.com/contentforge/contentforge/pkg/redis"
)

func main() {
	log := logger.NewFromConfig(config.MustLoad[logger.Config](),
		logger.WithAttr(slog.String("app", "contentforge")))
	logger.SetAsDefault(log)

	if err := run(context.Background(), log); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	db, err := mongodb.ConnectDatabase(ctx, config.MustLoad[mongodb.Config]())
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	redisClient, err := redisconn.Connect(ctx, config.MustLoad[redisconn.Config]())
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Storage.
	users := user.NewStore(db)
	history := generation.NewHistoryStore(db)
	payments := billing.NewPaymentStore(db)
	for _, ensure := range []func(context.Context) error{
		users.EnsureIndexes, history.EnsureIndexes, payments.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}

	// Services.
	catalog := plan.DefaultCatalog()
	userSvc := user.NewService(users, history)
	gate := quota.NewGate(users, catalog)
	genSvc := generation.NewService(gate, users, history,
		generation.NewGemini(config.MustLoad[generation.GeminiConfig]()),
		generation.NewGroq(config.MustLoad[generation.GroqConfig]()),
	)

	paystackCfg := config.MustLoad[billing.PaystackConfig]()
	ledger := billing.NewLedger(
		billing.NewPaystackClient(paystackCfg), payments, users, catalog, log)

	issuer, err := auth.NewIssuer(config.MustLoad[auth.Config](),
		cookie.New(cookie.WithSameSite(http.SameSiteStrictMode)), users)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// Transport rate limits ride on Redis so they hold across restarts
	// and replicas.
	limiterStore := ratelimit.NewRedisStore(redisClient)
	globalLimiter, err := ratelimit.NewSlidingWindow(limiterStore, 100, 15*time.Minute)
	if err != nil {
		return fmt.Errorf("ratelimit: %w", err)
	}
	authLimiter, err := ratelimit.NewSlidingWindow(limiterStore, 5, 15*time.Minute)
	if err != nil {
		return fmt.Errorf("ratelimit: %w", err)
	}

	router := httpapi.NewRouter(config.MustLoad[httpapi.Config](), httpapi.Deps{
		Users:         userSvc,
		Issuer:        issuer,
		Generator:     genSvc,
		Ledger:        ledger,
		Payments:      payments,
		WebhookSecret: paystackCfg.SecretKey,
		GlobalLimit:   ratelimit.Middleware(globalLimiter, ratelimit.ClientIPKey("global")),
		AuthLimit:     ratelimit.Middleware(authLimiter, ratelimit.ClientIPKey("auth")),
		HealthChecks: []httpserver.HealthCheck{
			{Name: "mongo", Check: mongodb.Healthcheck(db.Client())},
			{Name: "redis", Check: redisconn.Healthcheck(redisClient)},
		},
		Log: log,
	})

	// Billing-cycle timers.
	sched := scheduler.New(users, catalog, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer sched.Stop()

	srv := httpserver.New(config.MustLoad[httpserver.Config](), log)
	return srv.Run(ctx, router)
}
