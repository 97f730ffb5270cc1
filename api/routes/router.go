package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orderdeskhq/orderdesk-backend/api/controllers"
	"github.com/orderdeskhq/orderdesk-backend/api/middleware"
	"github.com/orderdeskhq/orderdesk-backend/internal/auth"
	"github.com/orderdeskhq/orderdesk-backend/internal/orders"
	"github.com/orderdeskhq/orderdesk-backend/internal/products"
	"github.com/orderdeskhq/orderdesk-backend/internal/users"
	pkgauth "github.com/orderdeskhq/orderdesk-backend/pkg/auth"
	"github.com/orderdeskhq/orderdesk-backend/pkg/auth/session"
	"github.com/orderdeskhq/orderdesk-backend/pkg/config"
	"github.com/orderdeskhq/orderdesk-backend/pkg/logger"
	"github.com/orderdeskhq/orderdesk-backend/pkg/metrics"
	"github.com/orderdeskhq/orderdesk-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the router needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              pinger
	Redis           *redis.Client
	SessionVerifier session.AccessSessionChecker
	HTTPMetrics     *metrics.HTTPMetrics
	AuthService     auth.Service
	OrdersService   orders.Service
	UsersService    users.Service
	ProductsService products.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	var cache pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cache, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionVerifier, logg)).
			Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionVerifier, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.OrdersService, logg))
			r.With(middleware.RequireAbility(pkgauth.AbilityOrderCreate, logg)).
				Post("/", controllers.OrdersCreate(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrdersGet(deps.OrdersService, logg))
			r.With(middleware.RequireAbility(pkgauth.AbilityOrderUpdate, logg)).
				Put("/{orderId}", controllers.OrdersUpdate(deps.OrdersService, logg))
			r.With(middleware.RequireAbility(pkgauth.AbilityOrderUpdate, logg)).
				Patch("/{orderId}", controllers.OrdersUpdate(deps.OrdersService, logg))
			r.With(middleware.RequireAbility(pkgauth.AbilityOrderDelete, logg)).
				Delete("/{orderId}", controllers.OrdersDelete(deps.OrdersService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			// Listing every account is an admin surface; self lookup is not.
			r.With(middleware.RequireAdmin(logg)).
				Get("/", controllers.UsersList(deps.UsersService, logg))
			r.Get("/{userId}", controllers.UsersGet(deps.UsersService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.ProductsService, logg))
			r.Get("/{productId}", controllers.ProductsGet(deps.ProductsService, logg))
		})
	})

	return r
}
