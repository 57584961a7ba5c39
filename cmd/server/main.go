package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yourusername/resumatch-api/internal/ai"
	"github.com/yourusername/resumatch-api/internal/cache"
	"github.com/yourusername/resumatch-api/internal/config"
	"github.com/yourusername/resumatch-api/internal/handler"
	"github.com/yourusername/resumatch-api/internal/middleware"
	"github.com/yourusername/resumatch-api/internal/observability"
	"github.com/yourusername/resumatch-api/internal/repository"
	"github.com/yourusername/resumatch-api/internal/service"
	"github.com/yourusername/resumatch-api/internal/storage"
)

var version = "dev"

func main() {
	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Str("aiProvider", cfg.AIProvider).Msg("Starting ResuMatch API")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ── Tracing ──────────────────────────────────────────
	shutdownTracing := observability.InitTracing(ctx, observability.Config{
		Enabled:     cfg.OTelEnabled,
		Endpoint:    cfg.OTelEndpoint,
		Environment: cfg.Env,
		Version:     version,
	})

	// ── Database ─────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connected")

	// ── Repositories ─────────────────────────────────────
	profileRepo := repository.NewProfileRepo(pool)
	analysisRepo := repository.NewAnalysisRepo(pool)

	// ── Job cache (optional) ─────────────────────────────
	var jobCache service.JobCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, job cache disabled")
		} else {
			defer rdb.Close()
			jobCache = cache.NewJobCache(rdb, cfg.JobCacheTTL)
			log.Info().Str("addr", cfg.RedisAddr).Msg("Job cache connected")
		}
	}

	// ── Upload archive (optional) ────────────────────────
	var archive handler.Archiver
	if cfg.StorageBucket != "" {
		a, err := storage.NewResumeArchive(ctx, cfg.StorageBucket)
		if err != nil {
			log.Warn().Err(err).Msg("Storage unavailable, uploads will not be archived")
		} else {
			defer a.Close()
			archive = a
		}
	}

	// ── Services ─────────────────────────────────────────
	backend, err := ai.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AI backend")
	}
	analyzer := service.NewAnalyzer(backend, profileRepo, analysisRepo, jobCache, cfg.DailyAnalysisLimit)

	// ── Handlers ─────────────────────────────────────────
	profileHandler := handler.NewProfileHandler(analyzer)
	resumeHandler := handler.NewResumeHandler(archive)
	analysisHandler := handler.NewAnalysisHandler(analyzer)

	// ── Middleware ────────────────────────────────────────
	verifier, err := middleware.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase auth")
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)
	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimitRPS)

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(requestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check (unauthenticated)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": observability.ServiceName,
			"time":    time.Now().UTC(),
		})
	})

	// ── Authenticated Routes ─────────────────────────────
	api := r.Group("/", authMiddleware.Authenticate(), rateLimiter.Limit())
	handler.Register(api, profileHandler, resumeHandler, analysisHandler)

	// ── Server ───────────────────────────────────────────
	// Write timeout covers the slowest pipeline call (tailoring) plus headroom.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("ResuMatch API server running")

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Tracer shutdown failed")
	}
	stop()

	log.Info().Msg("Server stopped")
}

// requestLogger logs every request with zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}
		if sess, ok := middleware.GetSession(c); ok {
			event = event.Str("userId", sess.UserID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg(fmt.Sprintf("%s %s", c.Request.Method, path))
	}
}
