// Package main provides the guardrails engine server entry point.
// The server hosts the rule repository, compliance checker, and performance
// predictor under a single process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pharmalign/guardrails/pkg/cache"
	"github.com/pharmalign/guardrails/pkg/compliance"
	"github.com/pharmalign/guardrails/pkg/prediction"
	"github.com/pharmalign/guardrails/pkg/rules"
)

const apiPrefix = "/api/guardrails/v1alpha1"

func main() {
	var (
		listenAddr          string
		databaseType        string
		databaseDSN         string
		predictorConfigPath string
	)

	flag.StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	flag.StringVar(&databaseType, "db-type", "", "Database type (postgres, mysql, or sqlite)")
	flag.StringVar(&databaseDSN, "db-dsn", "", "Database connection string")
	flag.StringVar(&predictorConfigPath, "predictor-config", "/config/predictor.yaml", "Path to prediction heuristics config")
	flag.Parse()

	// Set up structured logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting guardrails server", "listen", listenAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	db, err := setupDatabase(databaseType, databaseDSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ruleStore := rules.NewStore(db)
	historyStore := compliance.NewHistoryStore(db)
	analyticsStore := prediction.NewAnalyticsStore(db)

	for name, migrate := range map[string]func() error{
		"rules":     ruleStore.AutoMigrate,
		"history":   historyStore.AutoMigrate,
		"analytics": analyticsStore.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			logger.Error("failed to migrate schema", "store", name, "error", err)
			os.Exit(1)
		}
	}

	predictorCfg, err := prediction.LoadConfig(predictorConfigPath)
	if err != nil {
		logger.Error("failed to load predictor config", "path", predictorConfigPath, "error", err)
		os.Exit(1)
	}

	checker := compliance.NewChecker(ruleStore, historyStore, logger)
	predictor := prediction.NewPredictor(analyticsStore, predictorCfg, logger)

	// Merge results are derived per request; cache them until a tier changes.
	mergedCache := cache.NewManager(cache.CacheConfigFromEnv())

	// History retention runs in the background until shutdown.
	retentionCfg := compliance.RetentionConfigFromEnv()
	if retentionCfg.Enabled {
		worker := compliance.NewRetentionWorker(historyStore, retentionCfg.RetentionDays, logger)
		go worker.Run(ctx)
	}

	router := newRouter(ruleStore, mergedCache, checker, historyStore, predictor, analyticsStore)

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	logger.Info("guardrails server ready", "listen", listenAddr)

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("guardrails server stopped")
}

// newRouter assembles the root router with shared middleware and the three
// domain routers.
func newRouter(
	ruleStore *rules.Store,
	mergedCache *cache.Manager,
	checker *compliance.Checker,
	historyStore *compliance.HistoryStore,
	predictor *prediction.Predictor,
	analyticsStore *prediction.AnalyticsStore,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-Principal", "X-User-Role"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route(apiPrefix, func(r chi.Router) {
		r.Mount("/rules", rules.NewRouter(ruleStore, mergedCache))
		r.Mount("/compliance", compliance.NewRouter(checker, historyStore))
		r.Mount("/predictions", prediction.NewRouter(predictor, analyticsStore))
	})

	return r
}

// setupDatabase opens the gorm connection for the configured driver.
// Falls back to DATABASE_TYPE / DATABASE_DSN environment variables, and to an
// on-disk SQLite file for local development when nothing is configured.
func setupDatabase(dbType, dsn string) (*gorm.DB, error) {
	if dbType == "" {
		dbType = os.Getenv("DATABASE_TYPE")
	}
	if dsn == "" {
		dsn = os.Getenv("DATABASE_DSN")
	}
	if dbType == "" {
		dbType = "sqlite"
	}
	if dsn == "" {
		if dbType != "sqlite" {
			return nil, fmt.Errorf("database DSN is required (use -db-dsn flag or DATABASE_DSN environment variable)")
		}
		dsn = "guardrails.db"
	}

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch dbType {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), gormCfg)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database type %q (expected postgres, mysql, or sqlite)", dbType)
	}
}
