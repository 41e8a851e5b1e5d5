package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/henriquelv/rottava-agro-pet-sub003/api/routes"
	authsvc "github.com/henriquelv/rottava-agro-pet-sub003/internal/auth"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/cart"
	checkoutsvc "github.com/henriquelv/rottava-agro-pet-sub003/internal/checkout"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/orders"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/products"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/users"
	"github.com/henriquelv/rottava-agro-pet-sub003/internal/wishlist"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/auth/session"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/config"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/metrics"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/migrate"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartStorage, err := cart.NewRedisStorage(redisClient, cfg.Cart.SnapshotTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart storage", err)
		os.Exit(1)
	}
	cartRegistry, err := cart.NewRegistry(cartStorage, logg, cart.StoreOptions{MaxQuantity: cfg.Cart.MaxQuantity})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart registry", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Carts: cartRegistry,
		Tx:    dbClient,
		Products: func(tx *gorm.DB) checkoutsvc.ProductStore {
			return productRepo.WithTx(tx)
		},
		Orders: func(tx *gorm.DB) checkoutsvc.OrderWriter {
			return orderRepo.WithTx(tx)
		},
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.NewRepository(dbClient.DB()), productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	router := routes.NewRouter(routes.Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		Sessions:        sessionManager,
		HTTPMetrics:     httpMetrics,
		PromRegistry:    promRegistry,
		AuthService:     authService,
		ProductService:  productService,
		ProductLoader:   productRepo,
		CartRegistry:    cartRegistry,
		CheckoutService: checkoutService,
		OrderService:    orderService,
		WishlistService: wishlistService,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if flushErr := cartRegistry.FlushAll(flushCtx); flushErr != nil {
				logg.Error(ctx, "error flushing cart snapshots", flushErr)
			}
			cancel()
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
		if err := cartRegistry.FlushAll(shutdownCtx); err != nil {
			logg.Error(ctx, "error flushing cart snapshots", err)
		}
	}
}
