// Package server provides the HTTP server and route table
package server

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/kidneyplan/mealplanner/internal/infrastructure/config"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/http/handlers"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/http/middleware"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/monitoring"
	"github.com/kidneyplan/mealplanner/pkg/healthcheck"
)

// Handlers groups the route handlers the server mounts
type Handlers struct {
	MealPlans       *handlers.MealPlanHandlers
	Recommendations *handlers.RecommendationHandlers
	Catalog         *handlers.CatalogHandlers
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	engine     *gin.Engine
	server     *http.Server
	middleware *middleware.Middleware
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewServer builds the router and the underlying http.Server. metrics may be
// nil when metrics are disabled.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	mw *middleware.Middleware,
	h Handlers,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
) (*Server, error) {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidation()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:     cfg,
		logger:     logger.Named("server"),
		middleware: mw,
		ctx:        ctx,
		cancel:     cancel,
	}

	engine, err := s.setupRouter(h, health, metrics)
	if err != nil {
		cancel()
		return nil, err
	}
	s.engine = engine

	s.server = &http.Server{
		Addr:           cfg.ListenAddr(),
		Handler:        engine,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s, nil
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter(h Handlers, health *healthcheck.HealthCheck, metrics *monitoring.MetricsCollector) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		return nil, err
	}

	r.Use(s.middleware.RequestID())
	// Spans must wrap the access log so it can carry the trace id
	if s.config.Monitoring.EnableTracing {
		r.Use(otelgin.Middleware(s.config.App.Name))
	}
	r.Use(
		s.middleware.Logger(),
		s.middleware.Recovery(),
		s.middleware.ErrorHandler(),
		s.middleware.Security(),
	)
	if s.config.Server.EnableCORS {
		r.Use(cors.New(corsConfig(s.config.Server.AllowedOrigins)))
	}
	if metrics != nil {
		r.Use(metrics.HTTPMiddleware())
	}
	r.Use(s.middleware.RateLimit())

	// Probes and metrics
	mon := s.config.Monitoring
	r.GET(mon.HealthCheckPath, health.Handler())
	r.GET(mon.ReadinessPath, health.ReadinessHandler())
	r.GET(mon.LivenessPath, health.LivenessHandler())
	if metrics != nil {
		r.GET(mon.MetricsPath, gin.WrapH(metrics.Handler()))
	}

	r.GET("/", handlers.Root)

	// Meal plans
	r.POST("/create_meal_plan", h.MealPlans.CreateMealPlan)
	r.POST("/get_meal_plan", h.MealPlans.GetMealPlan)
	r.PATCH("/user_already_eat", h.MealPlans.UserAlreadyEat)
	r.PATCH("/edit_meal_plan", h.MealPlans.EditMealPlan)

	// Recommendations
	r.POST("/ai_meal_plan", h.Recommendations.AIMealPlan)
	r.POST("/update_meal_plan", h.Recommendations.UpdateMealPlan)

	// Catalog
	r.GET("/ingredients", h.Catalog.ListIngredients)
	r.POST("/create_ingredient", h.Catalog.CreateIngredient)
	r.PATCH("/update_recipe/:r_id", h.Catalog.UpdateRecipe)
	r.DELETE("/delete_recipe/:r_id", h.Catalog.DeleteRecipe)

	r.NoRoute(handlers.NotFound)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:  []string{"*"},
		ExposeHeaders: []string{"X-Request-ID"},
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	if limiter := s.middleware.Limiter(); limiter != nil {
		go limiter.RunCleanup(s.ctx, s.config.RateLimit.CleanupInterval)
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	s.cancel()
	return s.server.Shutdown(ctx)
}
