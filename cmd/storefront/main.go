package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fjod/go_cellar/internal/catalog"
	"github.com/fjod/go_cellar/internal/checkout"
	cellargrpc "github.com/fjod/go_cellar/internal/grpc"
	h "github.com/fjod/go_cellar/internal/http"
	"github.com/fjod/go_cellar/internal/session"
	"github.com/fjod/go_cellar/internal/storage"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort               string
	GRPCPort               string
	StorageBackend         string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	StorageTTL             time.Duration
	CatalogDBPath          string
	OrderProcessingDelay   time.Duration
	OrderProcessingTimeout time.Duration
	OrderDeclinePercent    int
	SessionIdleTTL         time.Duration
	RequestTimeout         time.Duration
	ShutdownTimeout        time.Duration
	LogLevel               string
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		GRPCPort:       getEnv("GRPC_PORT", "50057"),
		StorageBackend: getEnv("STORAGE_BACKEND", "memory"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		CatalogDBPath:  getEnv("CATALOG_DB_PATH", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.OrderDeclinePercent, err = strconv.Atoi(getEnv("ORDER_DECLINE_PERCENT", "0")); err != nil {
		return nil, fmt.Errorf("ORDER_DECLINE_PERCENT: %w", err)
	}
	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"STORAGE_TTL", "720h", &cfg.StorageTTL},
		{"ORDER_PROCESSING_DELAY", "2s", &cfg.OrderProcessingDelay},
		{"ORDER_PROCESSING_TIMEOUT", "10s", &cfg.OrderProcessingTimeout},
		{"SESSION_IDLE_TTL", "30m", &cfg.SessionIdleTTL},
		{"REQUEST_TIMEOUT", "30s", &cfg.RequestTimeout},
		{"SHUTDOWN_TIMEOUT", "10s", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if *d.dest, err = time.ParseDuration(getEnv(d.key, d.def)); err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
	}

	if cfg.StorageBackend != "memory" && cfg.StorageBackend != "redis" {
		return nil, fmt.Errorf("STORAGE_BACKEND must be memory or redis, got %q", cfg.StorageBackend)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setupLogging(level string) {
	log.SetFormatter(&log.JSONFormatter{})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown LOG_LEVEL, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func openStorage(ctx context.Context, cfg *Config) (storage.Store, func(), error) {
	if cfg.StorageBackend == "memory" {
		return storage.NewMemoryStore(), func() {}, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("redis connection failed: %w", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("Redis ping succeeded")

	return storage.NewRedisStore(redisClient, cfg.StorageTTL), func() { _ = redisClient.Close() }, nil
}

func loadCatalog(ctx context.Context, path string) (catalog.Catalog, error) {
	if path == "" {
		return catalog.NewStatic(catalog.DefaultItems()), nil
	}

	repo, err := catalog.NewRepository(path)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return nil, fmt.Errorf("catalog migrations: %w", err)
	}
	cat, err := catalog.Load(ctx, repo)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"path": path, "items": len(cat.List())}).Info("Catalog loaded from database")
	return cat, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	setupLogging(cfg.LogLevel)

	ctx := context.Background()

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	cat, err := loadCatalog(ctx, cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	var processor checkout.Processor = checkout.NewDelayProcessor(cfg.OrderProcessingDelay)
	if cfg.OrderDeclinePercent > 0 {
		processor = checkout.NewRandomDecline(processor, cfg.OrderDeclinePercent)
	}
	processor = checkout.NewBreakerProcessor("order-processing", processor)
	sessions := session.NewManager(store, cat, processor, session.Config{
		IdleTTL:         cfg.SessionIdleTTL,
		CheckoutOptions: []checkout.Option{checkout.WithProcessingTimeout(cfg.OrderProcessingTimeout)},
	})
	defer sessions.Close()

	router := h.NewRouter(h.RouterConfig{
		Catalog:        cat,
		Sessions:       sessions,
		RequestTimeout: cfg.RequestTimeout,
		SessionMaxAge:  cfg.StorageTTL,
		Ping:           store.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + cfg.OrderProcessingTimeout,
		IdleTimeout:       60 * time.Second,
	}

	healthChecker := cellargrpc.NewHealthChecker(store.Ping, cellargrpc.DefaultCheckInterval)
	healthChecker.Start()
	grpcServer := cellargrpc.NewServer(healthChecker)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	go func() {
		log.WithField("port", cfg.GRPCPort).Info("gRPC health server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.HTTPPort,
			"storage": cfg.StorageBackend,
		}).Info("Storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	healthChecker.Close()
	grpcServer.GracefulStop()

	log.Info("server exited")
}
