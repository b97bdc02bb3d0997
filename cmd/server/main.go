package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	specpkg "github.com/daap14/teamhub/api"
	"github.com/daap14/teamhub/internal/api"
	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/auth"
	"github.com/daap14/teamhub/internal/config"
	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/product"
	"github.com/daap14/teamhub/internal/profile"
	"github.com/daap14/teamhub/internal/purge"
	"github.com/daap14/teamhub/internal/storage"
	"github.com/daap14/teamhub/internal/team"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		migrator, err := database.NewMigrator(cfg.DatabaseURL, slog.Default())
		if err != nil {
			slog.Error("failed to create migrator", "error", err)
			os.Exit(1)
		}
		if err := migrator.Up(ctx); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, storageHandler, err := initStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize object storage", "error", err, "backend", cfg.StorageBackend)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	profileRepo := profile.NewRepository(db.Pool())
	teamRepo := team.NewRepository(db.Pool())
	productRepo := product.NewRepository(db.Pool())

	logger := slog.Default()
	profileSvc := profile.NewService(profileRepo, store, logger)
	teamSvc := team.NewService(teamRepo, profileRepo, logger)
	productSvc := product.NewService(productRepo, profileRepo, store, logger, product.WithRetention(cfg.PurgeRetention))

	authSvc := auth.NewService(auth.Options{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}, profileSvc)

	cronGuard, err := auth.NewCronGuard(cfg.CronSecret, cfg.BcryptCost)
	if err != nil {
		slog.Error("failed to initialize cron secret", "error", err)
		os.Exit(1)
	}
	if !cronGuard.Enabled() {
		slog.Warn("CRON_SECRET is not set; the cleanup endpoint will reject every request")
	}

	purgeOpts := purge.Options{
		Schedule: cfg.PurgeSchedule,
		Metrics:  purge.NewMetrics(registry),
	}
	if cfg.RedisURL != "" {
		locker, err := purge.NewRedisLocker(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable; purge runs will not be serialized across replicas", "error", err)
		} else {
			defer locker.Close()
			purgeOpts.Locker = locker
		}
	}
	purgeRunner, err := purge.New(productSvc, purgeOpts)
	if err != nil {
		slog.Error("failed to configure purge runner", "error", err)
		os.Exit(1)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, middleware.NewHTTPMetrics(registry))
		defer rateLimiter.Stop()
	}

	router := api.NewRouter(api.RouterDeps{
		DBPinger:           db,
		Version:            cfg.Version,
		OpenAPISpec:        specpkg.OpenAPISpec,
		Authenticator:      authSvc,
		CronVerifier:       cronGuard,
		Teams:              teamSvc,
		Profiles:           profileSvc,
		Products:           productSvc,
		Purge:              purgeRunner,
		StorageHandler:     storageHandler,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		RequestTimeout:     cfg.RequestTimeout,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        rateLimiter,
		Registry:           registry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	purgeDone := make(chan struct{})
	go func() {
		defer close(purgeDone)
		purgeRunner.Start(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting TeamHub server", "port", cfg.Port, "version", cfg.Version, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		stop()
		<-purgeDone
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	<-purgeDone

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// initStorage returns the configured object store and, for the filesystem
// backend, the handler that serves its files.
func initStorage(ctx context.Context, cfg *config.Config) (storage.Store, http.Handler, error) {
	switch cfg.StorageBackend {
	case "s3":
		s3, err := storage.NewS3Store(storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: cfg.StoragePublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := s3.EnsureBuckets(ctx, storage.AvatarBucket, storage.ProductImageBucket); err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	case "fs", "":
		fs, err := storage.NewFSStore(cfg.StorageDir, cfg.StoragePublicURL)
		if err != nil {
			return nil, nil, err
		}
		return fs, fs.Handler(), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
