package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"manchitra-be/internal/config"
	"manchitra-be/internal/container"
	"manchitra-be/internal/handler"
	"manchitra-be/internal/metrics"
	"manchitra-be/internal/middleware"
	"manchitra-be/internal/repository"
	"manchitra-be/internal/service"
	"manchitra-be/pkg/database"
	"manchitra-be/pkg/logger"
	"manchitra-be/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	db              *database.PostgresDB
	redisClient     *redis.Client
	recomputeWorker *service.RecomputeWorker
	server          *http.Server
	log             *logger.Logger
	mu              sync.Mutex
	closed          bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	// Stop the recompute worker so in-flight snapshots finish
	if r.recomputeWorker != nil {
		if err := r.recomputeWorker.Stop(ctx); err != nil {
			r.log.WithError(err).Error("Failed to stop recompute worker")
			errs = append(errs, fmt.Errorf("recompute worker shutdown: %w", err))
		}
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		}
	}

	if r.db != nil {
		r.db.Close()
	}

	if len(errs) > 0 {
		r.log.WithField("error_count", len(errs)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting manchitra-be server")

	metrics.Register()

	c, err := container.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabaseReadURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	redisClient := c.GetRedisClient()

	repos := repository.Repositories{
		Counter:    repository.NewCounterRepository(db),
		Engagement: repository.NewEngagementRepository(db),
		Poll:       repository.NewPollRepository(db),
		Ranking:    repository.NewRankingRepository(db),
		Place:      repository.NewPlaceRepository(db),
	}

	// Services
	rankingService := service.NewRankingService(repos.Counter, repos.Engagement, repos.Ranking, repos.Place, redisClient, log)
	recomputeWorker := service.NewRecomputeWorker(rankingService, log)
	viewService := service.NewViewService(repos.Counter, redisClient, recomputeWorker, log, cfg.ViewRateLimit)
	engagementService := service.NewEngagementService(repos.Engagement, repos.Poll, recomputeWorker, log)
	suggestionService := service.NewSuggestionService(repos.Place, redisClient, log)

	if err := recomputeWorker.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start recompute worker")
	}

	router := setupRouter(c, db, viewService, rankingService, engagementService, suggestionService)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		db:              db,
		redisClient:     redisClient,
		recomputeWorker: recomputeWorker,
		server:          server,
		log:             log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(
	c *container.Container,
	db *database.PostgresDB,
	viewService service.ViewService,
	rankingService service.RankingService,
	engagementService service.EngagementService,
	suggestionService service.SuggestionService,
) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()

	r := chi.NewRouter()

	corsConfig := &middleware.CORSConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(middleware.Metrics())
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(db, c.GetRedisClient(), log)
	viewHandler := handler.NewViewHandler(viewService, log)
	rankingHandler := handler.NewRankingHandler(rankingService, log)
	engagementHandler := handler.NewEngagementHandler(engagementService, log)
	suggestionHandler := handler.NewSuggestionHandler(suggestionService, log)

	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Identity is optional on every engagement route; anonymous callers
		// get the lower-fidelity paths
		r.Use(middleware.OptionalAuth(cfg.JWTSecret, log))

		viewHandler.RegisterRoutes(r)
		rankingHandler.RegisterRoutes(r)
		engagementHandler.RegisterRoutes(r)
		suggestionHandler.RegisterRoutes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"type":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}
