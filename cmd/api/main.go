package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/avalenz-dev/storefront-backend/api/routes"
	"github.com/avalenz-dev/storefront-backend/internal/auth"
	"github.com/avalenz-dev/storefront-backend/internal/contact"
	"github.com/avalenz-dev/storefront-backend/internal/orders"
	"github.com/avalenz-dev/storefront-backend/internal/payments"
	"github.com/avalenz-dev/storefront-backend/internal/products"
	"github.com/avalenz-dev/storefront-backend/internal/users"
	"github.com/avalenz-dev/storefront-backend/pkg/config"
	"github.com/avalenz-dev/storefront-backend/pkg/db"
	"github.com/avalenz-dev/storefront-backend/pkg/logger"
	"github.com/avalenz-dev/storefront-backend/pkg/mail"
	"github.com/avalenz-dev/storefront-backend/pkg/metrics"
	"github.com/avalenz-dev/storefront-backend/pkg/migrate"
	"github.com/avalenz-dev/storefront-backend/pkg/paypal"
	"github.com/avalenz-dev/storefront-backend/pkg/redis"
	"github.com/avalenz-dev/storefront-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}
	paypalClient := paypal.NewClient(logg)

	var notifier contact.Notifier
	if cfg.SMTP.Enabled() {
		mailer, err := mail.NewMailer(cfg.SMTP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap mailer", err)
			os.Exit(1)
		}
		notifier = mailer
	} else {
		logg.Warn(context.Background(), "smtp not configured, contact messages will only be logged")
		notifier = contact.NewLogNotifier(logg)
	}

	userRepo := users.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	paymentRepo := payments.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	exitOnError(logg, "auth service", err)

	productService, err := products.NewService(productRepo)
	exitOnError(logg, "product service", err)

	orderService, err := orders.NewService(orders.ServiceParams{
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
		TxRunner:    dbClient,
	})
	exitOnError(logg, "order service", err)

	paymentService, err := payments.NewService(payments.ServiceParams{
		PaymentRepo:    paymentRepo,
		OrderRepo:      orderRepo,
		TxRunner:       dbClient,
		StripeCapturer: stripeClient,
		PayPalCapturer: paypalClient,
	})
	exitOnError(logg, "payment service", err)

	contactService, err := contact.NewService(notifier, logg)
	exitOnError(logg, "contact service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DBPinger:       dbClient,
		RedisClient:    redisClient,
		HTTPMetrics:    httpMetrics,
		Registry:       registry,
		AuthService:    authService,
		ProductService: productService,
		OrderService:   orderService,
		PaymentService: paymentService,
		ContactService: contactService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var closeErr error
		closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
		if redisClient != nil {
			closeErr = multierr.Append(closeErr, redisClient.Close())
		}
		closeErr = multierr.Append(closeErr, dbClient.Close())
		if closeErr != nil {
			logg.Error(ctx, "shutdown finished with errors", closeErr)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
