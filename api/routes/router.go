package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/henriquelv/rottava-agro-pet-sub003/api/controllers"
	"github.com/henriquelv/rottava-agro-pet-sub003/api/middleware"
	authsvc "github.com/henriquelv/rottava-agro-pet-sub003/internal/auth"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/cart"
	checkoutsvc "github.com/henriquelv/rottava-agro-pet-sub003/internal/checkout"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/orders"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/products"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/wishlist"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/auth/session"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/config"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/enums"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/metrics"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/redis"

	"github.com/google/uuid"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Deps bundles everything the HTTP surface needs. cmd/api builds one Deps
// from its wired services and hands it to NewRouter.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           pinger
	Redis        *redis.Client
	Sessions     sessionManager
	HTTPMetrics  *metrics.HTTPMetrics
	PromRegistry *prometheus.Registry

	AuthService     authsvc.Service
	ProductService  products.Service
	ProductLoader   productLoader
	CartRegistry    *cart.Registry
	CheckoutService checkoutsvc.Service
	OrderService    orders.Service
	WishlistService wishlist.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
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

	var cache pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, cache, logg))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.ProductService, logg))
		r.Get("/{slug}", controllers.ProductGetBySlug(deps.ProductService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.CartRegistry, logg))
			r.Delete("/", controllers.CartClear(deps.CartRegistry, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartRegistry, deps.ProductLoader, logg))
			r.Patch("/items/{lineKey}", controllers.CartUpdateItem(deps.CartRegistry, logg))
			r.Delete("/items/{lineKey}", controllers.CartRemoveItem(deps.CartRegistry, logg))
		})

		r.Post("/checkout", controllers.CheckoutInitiate(deps.CheckoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrderService, logg))
			r.Get("/{id}", controllers.OrderGet(deps.OrderService, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(deps.WishlistService, logg))
			r.Post("/{productID}", controllers.WishlistAdd(deps.WishlistService, logg))
			r.Delete("/{productID}", controllers.WishlistRemove(deps.WishlistService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(deps.ProductService, logg))
			r.Patch("/{id}", controllers.AdminProductUpdate(deps.ProductService, logg))
			r.Delete("/{id}", controllers.AdminProductDelete(deps.ProductService, logg))
			r.Post("/{id}/stock", controllers.AdminProductAdjustStock(deps.ProductService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.OrderService, logg))
			r.Post("/{id}/status", controllers.AdminOrderUpdateStatus(deps.OrderService, logg))
		})
	})

	return r
}
