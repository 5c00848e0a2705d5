package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/shopgenie-backend/config"
	"github.com/ikkim/shopgenie-backend/internal/app/controller"
	"github.com/ikkim/shopgenie-backend/internal/app/repository"
	"github.com/ikkim/shopgenie-backend/internal/app/service"
	"github.com/ikkim/shopgenie-backend/internal/catalog"
	"github.com/ikkim/shopgenie-backend/internal/db"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	"github.com/ikkim/shopgenie-backend/internal/pricing"
	"github.com/ikkim/shopgenie-backend/internal/router"
	"github.com/ikkim/shopgenie-backend/internal/scheduler"
	"github.com/ikkim/shopgenie-backend/internal/storage"
	ws "github.com/ikkim/shopgenie-backend/internal/websocket"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
	"github.com/ikkim/shopgenie-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting ShopGenie Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"storage":     cfg.Storage.Backend,
		"log_level":   cfg.Log.Level,
	})

	products, err := loadCatalog(cfg.Shop.CatalogFile)
	if err != nil {
		logger.Fatal("Failed to load catalog", err)
	}

	repo, err := openSnapshotRepository(cfg)
	if err != nil {
		logger.Fatal("Failed to open snapshot storage", err)
	}
	defer closeStorage(cfg.Storage.Backend)

	shop := engine.New(engine.Options{
		Catalog: products,
		Gateway: service.NewPersistenceGateway(repo),
		Orders:  service.NewSampleOrderHistory(products),
		Shipping: pricing.ShippingPolicy{
			FreeThreshold: cfg.Shop.FreeShippingThreshold,
			FlatFee:       cfg.Shop.ShippingFee,
		},
		HistoryLimit:  cfg.Shop.HistoryLimit,
		CheckoutDelay: cfg.Shop.CheckoutDelay,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shop.Load(ctx)

	// Push every state change to connected websocket clients
	hub := ws.NewHub(func() interface{} { return shop.State() })
	go hub.Run(ctx)
	unsubscribe := shop.Subscribe(func(evt engine.Event) {
		if err := hub.Publish("event", evt); err != nil {
			logger.Error("Failed to publish state event", err, map[string]interface{}{
				"store": evt.Store,
			})
		}
	})
	defer unsubscribe()

	flusher := scheduler.NewFlushScheduler(cfg.Storage.FlushSchedule, shop)
	if err := flusher.Start(); err != nil {
		logger.Fatal("Failed to start flush scheduler", err)
	}

	advice := service.NewAdviceService(cfg.Advice, products.List())
	if cfg.Advice.APIKey == "" {
		logger.Warn("ADVICE_API_KEY is not set; assistant and insights will answer with fallbacks")
	}

	r := router.NewRouter(
		controller.NewCatalogController(shop, service.NewInsightLoader(advice)),
		controller.NewCartController(shop),
		controller.NewWishlistController(shop),
		controller.NewHistoryController(shop),
		controller.NewSessionController(shop),
		controller.NewOrderController(shop),
		controller.NewAssistantController(service.NewAssistantService(advice)),
		controller.NewEventsController(hub, cfg.CORS.AllowedOrigins),
		shop,
		cfg,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	flusher.Stop()
	shop.Close(shutdownCtx)

	if degraded := shop.Degraded(); len(degraded) > 0 {
		logger.Warn("Exiting with unsaved state", map[string]interface{}{
			"stores": degraded,
		})
	}
	logger.Info("Server stopped successfully")
}

func loadCatalog(file string) (*catalog.Catalog, error) {
	if file == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadWorkbook(file)
}

func openSnapshotRepository(cfg *config.Config) (repository.SnapshotRepository, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return repository.NewMemorySnapshotRepository(), nil
	case config.StorageFile:
		return repository.NewFileSnapshotRepository(cfg.Storage.FilePath)
	case config.StorageRedis:
		if err := redis.Init(&cfg.Redis); err != nil {
			return nil, err
		}
		return repository.NewRedisSnapshotRepository(redis.GetClient(), cfg.Storage.KeyPrefix), nil
	case config.StoragePostgres, config.StorageSQLite:
		if err := db.Initialize(cfg); err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			return nil, err
		}
		return repository.NewGormSnapshotRepository(db.GetDB(), cfg.Storage.KeyPrefix), nil
	case config.StorageS3:
		return storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.Endpoint,
			cfg.Storage.KeyPrefix,
		), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func closeStorage(backend config.StorageBackend) {
	switch backend {
	case config.StorageRedis:
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	case config.StoragePostgres, config.StorageSQLite:
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}
}
