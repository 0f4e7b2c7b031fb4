// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kidneyplan/mealplanner/internal/application/catalog"
	"github.com/kidneyplan/mealplanner/internal/application/mealplan"
	"github.com/kidneyplan/mealplanner/internal/application/nutrition"
	"github.com/kidneyplan/mealplanner/internal/application/recommendation"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/ai/recommender"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/config"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/http/handlers"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/http/middleware"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/http/server"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/monitoring"
	gormrepo "github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/gorm"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/memory"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/migrations"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/postgres"
	redisrepo "github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/redis"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/sqlite"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/kidneyplan/mealplanner/pkg/healthcheck"
	"github.com/kidneyplan/mealplanner/pkg/logger"
)

const (
	metricsNamespace     = "mealplanner"
	memoryCacheSweep     = time.Minute
	recommenderProbeTime = 5 * time.Second
)

// ConfigPath is the configuration file to load; empty searches the default
// locations
type ConfigPath string

// New builds the application graph
func New(configPath string, opts ...fx.Option) *fx.App {
	return fx.New(
		fx.Supply(ConfigPath(configPath)),
		Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Options(opts...),
	)
}

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	MonitoringModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) *config.Loader {
		return config.NewLoader(string(path))
	},
	func(loader *config.Loader) (*config.Config, error) {
		return loader.Load()
	},
)

// LoggerModule provides logging. The atomic level lets config reloads change
// verbosity at runtime.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.NewAtomic(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(
	NewDatabase,
	func(db *gorm.DB) (*sql.DB, error) {
		return db.DB()
	},
)

// NewDatabase opens the configured database and closes it when the app stops
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.Database.Driver == "sqlite" {
		return newSQLite(lc, cfg, log)
	}
	return newPostgres(lc, cfg, log)
}

func newPostgres(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg, log); err != nil {
			return nil, err
		}
	}

	cm, err := postgres.NewConnectionManager(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return cm.Close()
		},
	})

	log.Info("Connected to PostgreSQL database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
		zap.Int("read_replicas", len(cfg.Database.ReadReplicas)),
	)
	return cm.GetDB(), nil
}

func migrateUp(cfg *config.Config, log *zap.Logger) error {
	m, err := migrations.Open(cfg.GetDSN(), cfg.Database.Database, log)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

func newSQLite(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := cfg.Database
	db, err := sqlite.SetupDatabase(dbCfg.SQLitePath, gormrepo.NewLogger(log, dbCfg.LogLevel, dbCfg.SlowQueryThreshold))
	if err != nil {
		return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
	}

	if dbCfg.SeedDemo {
		if err := sqlite.SeedDatabase(db); err != nil {
			log.Warn("Failed to seed database", zap.Error(err))
		} else {
			log.Info("Seeded demo data", zap.String("line_id", sqlite.DemoLineID))
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return sqlDB.Close()
		},
	})

	log.Info("Connected to SQLite database",
		zap.String("path", dbCfg.SQLitePath),
		zap.Bool("in_memory", dbCfg.SQLitePath == sqlite.MemoryPath),
	)
	return db, nil
}

// CacheModule provides caching
var CacheModule = fx.Provide(
	NewCache,
)

// NewCache returns the Redis cache when enabled, otherwise an in-process one
func NewCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, health *healthcheck.HealthCheck) (outbound.CacheRepository, error) {
	if !cfg.Redis.Enabled {
		log.Info("Using in-memory cache")
		c := memory.NewCacheRepository(memoryCacheSweep)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				c.Close()
				return nil
			},
		})
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout+time.Second)
	defer cancel()

	client, err := redisrepo.NewClient(ctx, &cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	health.Register("redis", healthcheck.NewRedisChecker(client))

	return redisrepo.NewCacheRepository(client, cfg.Redis.KeyPrefix, log), nil
}

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Options(
	fx.Provide(
		monitoring.NewMetricsCollector,
		func(cfg *config.Config, m *monitoring.MetricsCollector) outbound.MetricsRecorder {
			if !cfg.Monitoring.EnableMetrics {
				return outbound.NopMetrics{}
			}
			return m
		},
		NewTracing,
		NewHealthCheck,
	),
	fx.Invoke(func(cfg *config.Config, m *monitoring.MetricsCollector, db *sql.DB) error {
		if !cfg.Monitoring.EnableMetrics {
			return nil
		}
		return m.RegisterDB(db, cfg.Database.Driver)
	}),
	fx.Invoke(func(*monitoring.TracingProvider) {}),
)

// NewTracing installs the global tracer provider and flushes it on stop
func NewTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		Exporter:       cfg.Monitoring.TraceExporter,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		OTLPInsecure:   cfg.Monitoring.OTLPInsecure,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.EnableTracing,
	}, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: tp.Shutdown,
	})
	return tp, nil
}

// NewHealthCheck registers the database and, optionally, the recommender
func NewHealthCheck(cfg *config.Config, log *zap.Logger, db *sql.DB, m *monitoring.MetricsCollector) *healthcheck.HealthCheck {
	health := healthcheck.New(cfg.App.Version, log)
	if cfg.Monitoring.EnableMetrics {
		health.SetMetrics(healthcheck.NewMetrics(m.Registry(), metricsNamespace))
	}
	health.Register("database", healthcheck.NewDatabaseChecker(db))
	if cfg.AI.HealthCheck {
		health.Register("recommender", healthcheck.NewExternalServiceChecker("recommender", cfg.AI.BaseURL, recommenderProbeTime))
	}
	return health
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormrepo.NewUserRepository,
	gormrepo.NewMealPlanRepository,
	gormrepo.NewRecipeRepository,
	gormrepo.NewNutritionRepository,
	gormrepo.NewIngredientRepository,
	gormrepo.NewTransactor,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(cfg *config.Config, metrics outbound.MetricsRecorder, log *zap.Logger) outbound.RecommendationClient {
		return recommender.NewClient(cfg.AI, metrics, log)
	},
	func(
		recipes outbound.RecipeRepository,
		limits outbound.NutritionRepository,
		cache outbound.CacheRepository,
		metrics outbound.MetricsRecorder,
		cfg *config.Config,
		log *zap.Logger,
	) *nutrition.Aggregator {
		return nutrition.NewAggregator(recipes, limits, cache, metrics, cfg.Cache.ContextTTL, log)
	},
	func(
		users outbound.UserRepository,
		plans outbound.MealPlanRepository,
		tx outbound.Transactor,
		metrics outbound.MetricsRecorder,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.MealPlanService {
		return mealplan.NewMealPlanService(users, plans, tx, metrics, cfg.Location(), log)
	},
	recommendation.NewService,
	func(
		ingredients outbound.IngredientRepository,
		recipes outbound.RecipeRepository,
		cache outbound.CacheRepository,
		aggregator *nutrition.Aggregator,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.CatalogService {
		return catalog.NewCatalogService(ingredients, recipes, cache, aggregator, cfg.Cache.IngredientsTTL, log)
	},
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	middleware.New,
	handlers.NewMealPlanHandlers,
	handlers.NewRecommendationHandlers,
	handlers.NewCatalogHandlers,
	func(mp *handlers.MealPlanHandlers, rh *handlers.RecommendationHandlers, ch *handlers.CatalogHandlers) server.Handlers {
		return server.Handlers{MealPlans: mp, Recommendations: rh, Catalog: ch}
	},
	func(
		cfg *config.Config,
		log *zap.Logger,
		mw *middleware.Middleware,
		h server.Handlers,
		health *healthcheck.HealthCheck,
		m *monitoring.MetricsCollector,
	) (*server.Server, error) {
		if !cfg.Monitoring.EnableMetrics {
			m = nil
		}
		return server.NewServer(cfg, log, mw, h, health, m)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks starts the HTTP server and the config watcher
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	loader *config.Loader,
	level zap.AtomicLevel,
	log *zap.Logger,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting meal planner",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
			)

			watching := loader.Watch(func(next *config.Config, e fsnotify.Event) {
				newLevel := logger.ParseLevel(next.App.LogLevel)
				if newLevel != level.Level() {
					level.SetLevel(newLevel)
					log.Info("Log level changed", zap.String("level", newLevel.String()), zap.String("file", e.Name))
				}
			}, func(err error) {
				log.Warn("Ignoring invalid configuration change", zap.Error(err))
			})
			if watching {
				log.Debug("Watching configuration file for changes")
			}

			go func() {
				if err := srv.Start(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down meal planner")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
