package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborlane/storefront-backend/api/controllers"
	cartctrl "github.com/harborlane/storefront-backend/api/controllers/cart"
	"github.com/harborlane/storefront-backend/api/routes"
	"github.com/harborlane/storefront-backend/internal/cart"
	"github.com/harborlane/storefront-backend/internal/cart/storage"
	"github.com/harborlane/storefront-backend/internal/reconcile"
	"github.com/harborlane/storefront-backend/pkg/config"
	"github.com/harborlane/storefront-backend/pkg/db"
	"github.com/harborlane/storefront-backend/pkg/logger"
	"github.com/harborlane/storefront-backend/pkg/metrics"
	redisclient "github.com/harborlane/storefront-backend/pkg/redis"
	"github.com/harborlane/storefront-backend/pkg/shopify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront-backend",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisConn, err := redisclient.New(ctx, cfg.Redis, logg)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisConn.Close()

	health := controllers.NewHealthController(logg)
	health.Register("redis", redisConn)

	cartStore, dbClient, err := buildCartStorage(ctx, cfg, redisConn, logg)
	if err != nil {
		log.Fatalf("cart storage: %v", err)
	}
	if dbClient != nil {
		defer dbClient.Close()
		health.Register("sqlite", dbClient)
	}

	taxRate, threshold, fee, err := cfg.Pricing.Decimals()
	if err != nil {
		log.Fatalf("pricing: %v", err)
	}
	policy := cart.PricingPolicy{
		TaxRate:               taxRate,
		FreeShippingThreshold: threshold,
		FlatShippingFee:       fee,
	}

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	cartService, err := cart.NewService(cartStore, policy, logg, cartMetrics)
	if err != nil {
		log.Fatalf("cart service: %v", err)
	}

	shopifyClient, err := shopify.NewClient(ctx, cfg.Shopify, logg)
	if err != nil {
		log.Fatalf("shopify client: %v", err)
	}

	reconciler, err := reconcile.NewService(shopifyClient, redisConn, cfg.Shopify.RemoteCartTTL(), logg, cartMetrics)
	if err != nil {
		log.Fatalf("reconciler: %v", err)
	}

	router := routes.New(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Cart:     cartctrl.NewController(cartService, logg),
		Checkout: controllers.NewCheckoutController(cartService, reconciler, logg, cartMetrics),
		Health:   health,
		Registry: registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "server.start")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(context.Background(), "server.shutdown", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}
}

// buildCartStorage picks the configured line-snapshot backend. Redis is the
// default; SQLite keeps carts on disk for single-node deployments. The db
// client is returned so the caller can close it and wire it into readiness.
func buildCartStorage(ctx context.Context, cfg *config.Config, redisConn *redisclient.Client, logg *logger.Logger) (cart.Storage, *db.Client, error) {
	switch cfg.CartStorage.NormalizedDriver() {
	case config.CartStorageDriverSQLite:
		dbClient, err := db.New(ctx, cfg.CartStorage, logg)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewSQLiteStore(dbClient.DB())
		if err != nil {
			dbClient.Close()
			return nil, nil, err
		}
		return store, dbClient, nil
	default:
		store, err := storage.NewRedisStore(redisConn, cfg.CartStorage.TTL)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}
