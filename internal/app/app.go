package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/internal/database"
	"github.com/lumeva/reckon/internal/handlers"
	"github.com/lumeva/reckon/internal/middleware"
	"github.com/lumeva/reckon/internal/services"
	"github.com/lumeva/reckon/internal/store"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	stores   *store.Stores
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	stores, err := buildStores(cfg, db, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stores: %w", err)
	}
	app.stores = stores

	app.services = services.New(cfg, app.logger, db, stores)
	app.handlers = handlers.New(app.logger, cfg, app.services)

	app.setupRouter()

	return app, nil
}

// buildStores picks concrete store implementations from config: catalog from
// the products file or Postgres, events and profiles from Postgres, the KV
// cache from Redis with the in-process fallback when none is configured.
func buildStores(cfg *config.Config, db *database.Database, logger *logrus.Logger) (*store.Stores, error) {
	var catalog store.CatalogStore
	switch cfg.Catalog.Source {
	case "file":
		fileCatalog, err := store.NewFileCatalog(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load file catalog: %w", err)
		}
		logger.WithField("path", fileCatalog.Path()).Info("Catalog loaded from file")
		catalog = fileCatalog
	case "postgres":
		catalog = store.NewPostgresCatalog(db.PG)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	var kv store.KV
	if db.Redis != nil {
		kv = store.NewRedisKV(db.Redis)
	} else {
		logger.Warn("No Redis configured, using the in-process cache")
		kv = store.NewMemoryKV()
	}

	return &store.Stores{
		Catalog:  catalog,
		Events:   store.NewPostgresEventLog(db.PG),
		Profiles: store.NewPostgresProfiles(db.PG),
		KV:       kv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.services.Stop(); err != nil {
		a.logger.WithError(err).Error("Error stopping services")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	// Health probes (no auth required)
	router.GET("/health", a.handlers.Health.Check)
	router.GET("/health/ready", a.handlers.Health.Ready)

	if a.config.Monitoring.Enabled {
		router.GET(a.config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	{
		recommendations := api.Group("/recommendations")
		{
			recommendations.GET("/:userId", a.handlers.Recommendation.Get)
			recommendations.POST("/:userId/shown", a.handlers.Interaction.Shown)
			recommendations.POST("/:userId/click", a.handlers.Interaction.Click)
		}

		api.POST("/events", a.handlers.Event.Ingest)
		api.PUT("/users/:userId/plan", a.handlers.Event.SetPlan)

		api.GET("/metrics/engagement", a.handlers.Metrics.Engagement)

		admin := api.Group("/admin")
		if a.config.Auth.JWTSecret != "" {
			admin.Use(middleware.Auth(a.services.Auth, a.logger))
		}
		admin.POST("/rebuild-matrix", a.handlers.Admin.RebuildMatrix)
	}

	a.router = router
}
