package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fund-portal/backend"
	"fund-portal/config"
	"fund-portal/controllers"
	"fund-portal/middleware"
	"fund-portal/monitor"
	"fund-portal/routes"
	"fund-portal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Failed to create logger: %v", err)
	}
	defer closeLog()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	if err != nil {
		logger.Fatal("Failed to create backend client", zap.Error(err))
	}

	lookupSource, err := newLookupSource(cfg, client, logger)
	if err != nil {
		logger.Fatal("Failed to set up lookups", zap.Error(err))
	}
	store, err := newMergedStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to set up merged document store", zap.Error(err))
	}

	statuses := services.NewStatusDirectory(client, cfg.Lookups.StatusTTL)
	screens := services.NewScreenManager(store, lookupSource, logger)
	merger := services.NewMergeAssembler(client, cfg.Merge.Concurrency, logger)
	submissions := services.NewSubmissionService(client, statuses, screens, merger, logger)
	lists := services.NewListService(client, statuses, logger)

	go screens.RunJanitor(ctx, time.Minute, cfg.Server.ScreenIdleTimeout)

	// Set Gin mode
	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	monitor.RegisterMonitorRoutes(router)
	routes.SetupRoutes(router, routes.Handlers{
		Submissions: controllers.NewSubmissionController(submissions, screens, logger),
		Merged:      controllers.NewMergedDocumentController(screens, logger),
		Lists:       controllers.NewListController(lists, screens, logger),
		Statuses:    controllers.NewStatusController(statuses, logger),
		Lookups:     controllers.NewLookupController(screens, logger),
	}, cfg.Auth.JWTSecret)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Gateway starting",
			zap.String("port", cfg.Server.Port),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("merge_store", cfg.Merge.Store),
			zap.String("lookup_source", cfg.Lookups.Source),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case err := <-errCh:
		logger.Error("HTTP server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	logger.Info("Gateway stopped")
}

func newLookupSource(cfg *config.Config, client *backend.Client, logger *zap.Logger) (services.LookupSource, error) {
	if cfg.Lookups.Source != "database" {
		return services.NewBackendLookupSource(client), nil
	}
	db, err := config.OpenLookupDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return services.NewGormLookupSource(db), nil
}

func newMergedStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.MergedStore, error) {
	if cfg.Merge.Store != "redis" {
		return services.NewMemoryMergedStore(cfg.Merge.URLTTL), nil
	}
	client := config.NewRedis(cfg.Redis)
	if err := config.PingRedis(ctx, client); err != nil {
		return nil, err
	}
	logger.Info("Redis connected", zap.String("address", cfg.Redis.Address))
	return services.NewRedisMergedStore(client, "", cfg.Merge.URLTTL), nil
}
