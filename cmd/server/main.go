package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekogravitycat/campus-booking-backend/internal/app"
	"github.com/nekogravitycat/campus-booking-backend/internal/config"
	"github.com/nekogravitycat/campus-booking-backend/internal/db"
	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
	"github.com/nekogravitycat/campus-booking-backend/internal/notify"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/campus-booking-backend/internal/seed"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal("failed to load config", "error", err)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "campus-booking",
	})
	logger.SetDefault(log)

	// Snapshot store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeStore()

	// Notifications
	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if len(cfg.KafkaBrokers) > 0 {
		kn, err := notify.NewKafkaNotifier(notify.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}, log)
		if err != nil {
			log.Fatal("failed to init kafka notifier", "error", err)
		}
		defer func() {
			if err := kn.Close(); err != nil {
				log.Warn("failed to close kafka writer", "error", err)
			}
		}()
		notifier = notify.Multi{notifier, kn}
	}

	// Sample catalogue
	catalog, err := loadSeed(cfg.SeedFile)
	if err != nil {
		log.Fatal("failed to load seed catalogue", "error", err)
	}

	container, err := app.NewContainer(ctx, app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		Store:        store,
		Notifier:     notifier,
		Logger:       log,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		Seed:         catalog,
	})
	if err != nil {
		log.Fatal("failed to init application", "error", err)
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.Info("server running", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced to shutdown", "error", err)
	}

	// Final snapshot
	container.Snapshotter.Persist(shutdownCtx)

	log.Info("server exited gracefully")
}

// openStore builds the snapshot store selected by STORE_DRIVER. The returned
// func releases its connections.
func openStore(ctx context.Context, cfg *config.Config) (storage.Storage, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		return storage.NewMemoryStorage(), noop, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolConfig{MaxConns: int32(cfg.DBMaxConns)})
		if err != nil {
			return nil, noop, err
		}
		pg := storage.NewPostgresStorage(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return pg, pool.Close, nil

	case config.StoreMongo:
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return storage.NewMongoStorage(client.Database(cfg.MongoDatabase)), closeFn, nil

	default:
		local, err := storage.NewLocalStorage(cfg.StorePath)
		if err != nil {
			return nil, noop, err
		}
		return local, noop, nil
	}
}

func loadSeed(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.Load(path)
}
