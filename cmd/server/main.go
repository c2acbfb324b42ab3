package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stridewear/stride/internal"
	"github.com/stridewear/stride/internal/address"
	"github.com/stridewear/stride/internal/billing"
	"github.com/stridewear/stride/internal/cookie"
	"github.com/stridewear/stride/internal/handler/api"
	"github.com/stridewear/stride/internal/handler/webhook"
	"github.com/stridewear/stride/internal/jobs"
	"github.com/stridewear/stride/internal/middleware"
	"github.com/stridewear/stride/internal/poll"
	"github.com/stridewear/stride/internal/postgres"
	"github.com/stridewear/stride/internal/router"
	"github.com/stridewear/stride/internal/routes"
	"github.com/stridewear/stride/internal/service"
	"github.com/stridewear/stride/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Wait for the database to come up. Under compose the server often
	// starts before postgres is accepting connections.
	err = poll.Run(ctx, poll.Policy{Interval: time.Second, MaxAttempts: 15}, func(ctx context.Context) (poll.Outcome, error) {
		if err := sqlDB.PingContext(ctx); err != nil {
			logger.Warn("database not ready", "error", err)
			return poll.OutcomePending, nil
		}
		return poll.OutcomeFound, nil
	})
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize stores
	cartStore := postgres.NewCartStore(pool)
	variantStore := postgres.NewVariantStore(pool)
	userStore := postgres.NewUserStore(pool)
	guestStore := postgres.NewGuestStore(pool)
	orderStore := postgres.NewOrderStore(pool)

	// Initialize Stripe billing provider
	logger.Info("Initializing Stripe billing provider...")
	stripeConfig := billing.StripeConfig{
		APIKey:         cfg.Stripe.SecretKey,
		WebhookSecret:  cfg.Stripe.WebhookSecret,
		MaxRetries:     3,
		TimeoutSeconds: 30,
	}
	billingProvider, err := billing.NewStripeProvider(stripeConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized", "test_mode", stripeConfig.IsTestMode())

	// Initialize services
	sessionResolver := service.NewSessionService(userStore, guestStore, logger)
	cartService := service.NewCartService(cartStore, variantStore, logger)
	accountService := service.NewAccountService(userStore, cartService, logger)
	checkoutService := service.NewCheckoutService(cartService, userStore, billingProvider, cfg.BaseURL, logger)
	orderService := service.NewOrderService(orderStore, cartStore, userStore, billingProvider, address.NewBasicNormalizer(), logger)

	// Cookie configuration
	cookies := cookie.NewConfig(cfg.SecureCookies)

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	apiDeps := routes.APIDeps{
		CartHandler:     api.NewCartHandler(cartService, sessionResolver, cookies, logger),
		CheckoutHandler: api.NewCheckoutHandler(checkoutService, logger),
		OrdersHandler:   api.NewOrdersHandler(orderService, logger),
		AuthHandler:     api.NewAuthHandler(accountService, cookies, logger),
	}

	stripeWebhookHandler := webhook.NewStripeHandler(billingProvider, orderService, webhook.StripeWebhookConfig{
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
	webhookDeps := routes.WebhookDeps{
		StripeHandler: stripeWebhookHandler.HandleWebhook,
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("stride")
	telemetry.InitBusinessMetrics("stride")

	// Configure security headers
	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.ContentSecurityPolicy = ""
		securityConfig.HSTSMaxAge = 0
	}

	// Configure rate limiting
	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer defaultRateLimiter.Stop()

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.WithClientIP(),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		defaultRateLimiter.Middleware,
		middleware.WithRequestLogger(logger),
		middleware.WithIdentity(accountService, sessionResolver),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Register route groups
	routes.RegisterAPIRoutes(r, apiDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// Background guest session sweeper
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go jobs.NewSweeper(guestStore, cfg.SweepInterval, logger).Run(sweepCtx)

	// ==========================================================================
	// Start server
	// ==========================================================================

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
