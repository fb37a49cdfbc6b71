package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avalenz-dev/storefront-backend/api/controllers"
	"github.com/avalenz-dev/storefront-backend/api/middleware"
	"github.com/avalenz-dev/storefront-backend/internal/auth"
	"github.com/avalenz-dev/storefront-backend/internal/contact"
	"github.com/avalenz-dev/storefront-backend/internal/orders"
	"github.com/avalenz-dev/storefront-backend/internal/payments"
	"github.com/avalenz-dev/storefront-backend/internal/products"
	"github.com/avalenz-dev/storefront-backend/pkg/config"
	"github.com/avalenz-dev/storefront-backend/pkg/db"
	"github.com/avalenz-dev/storefront-backend/pkg/logger"
	"github.com/avalenz-dev/storefront-backend/pkg/metrics"
	"github.com/avalenz-dev/storefront-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    db.Pinger
	RedisClient *redis.Client
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry

	AuthService    auth.Service
	ProductService products.Service
	OrderService   orders.Service
	PaymentService payments.Service
	ContactService contact.Service
}

// NewRouter mounts the public API surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DBPinger, readinessRedis(deps.RedisClient), logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	limiterStore := rateLimitStore(deps.RedisClient)
	r.With(middleware.AuthRateLimit(registerPolicy, limiterStore, logg)).
		Post("/register", controllers.AuthRegister(deps.AuthService, logg))
	r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).
		Post("/login", controllers.AuthLogin(deps.AuthService, logg))

	r.Get("/products", controllers.ListProducts(deps.ProductService, logg))
	r.Get("/products/{productId}", controllers.GetProduct(deps.ProductService, logg))
	r.Post("/contact", controllers.Contact(deps.ContactService, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/profile", controllers.AuthProfile(deps.AuthService, logg))
		r.Post("/orders", controllers.CreateOrder(deps.OrderService, logg))
		r.Get("/orders", controllers.ListOrders(deps.OrderService, logg))
		r.Post("/payments/stripe", controllers.StripePayment(deps.PaymentService, logg))
		r.Post("/payments/paypal", controllers.PayPalPayment(deps.PaymentService, logg))
	})

	return r
}

// readinessRedis narrows the optional redis client to the health-check
// surface; a nil client must stay nil behind the interface.
func readinessRedis(client *redis.Client) redis.Pinger {
	if client == nil {
		return nil
	}
	return client
}

// rateLimitStore narrows the optional redis client to the limiter surface,
// keeping a nil client nil behind the interface so limiting is skipped.
func rateLimitStore(client *redis.Client) middleware.RateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}
