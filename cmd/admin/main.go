package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/internal/cache"
	"github.com/fetan/fetan_admin/internal/config"
	"github.com/fetan/fetan_admin/internal/database"
	"github.com/fetan/fetan_admin/internal/flash"
	"github.com/fetan/fetan_admin/internal/handler"
	"github.com/fetan/fetan_admin/internal/middleware"
	"github.com/fetan/fetan_admin/internal/repository"
	"github.com/fetan/fetan_admin/internal/service"
	"github.com/fetan/fetan_admin/internal/session"
	"github.com/fetan/fetan_admin/internal/web"
	"github.com/fetan/fetan_admin/internal/worker"
	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// main is the entrypoint of the Fetan admin console.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("api", cfg.Backend.BaseURL).Msg("starting fetan admin")

	// 3. Platform API client
	api := fetanapi.NewClient(fetanapi.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Debug:   cfg.Env == "development",
	})

	deps := map[string]handler.Pinger{"redis": nil, "database": nil}

	// 4. Session and toast storage
	var (
		persist session.Persistence
		toasts  flash.Queue
	)
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")

		persist = cache.NewSessionCache(redisClient)
		toasts = cache.NewToastQueue(redisClient)
		deps["redis"] = redisClient
	default:
		log.Warn().Msg("using in-memory sessions, sign-ins are lost on restart")
		persist = session.NewMemoryPersistence()
		toasts = flash.NewMemoryQueue()
	}

	// 5. Activity log (optional)
	var db *sqlx.DB
	activitySvc := service.NewActivityService(nil)
	if cfg.DB.Enabled() {
		db, err = database.Connect(&cfg.DB)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(db.DB, database.MigrationsSource); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")

		activitySvc = service.NewActivityService(repository.NewActivityRepository(db))
		deps["database"] = handler.PingFunc(db.PingContext)
	} else {
		log.Info().Msg("DB_HOST not set, activity log disabled")
	}

	// 6. Gallery uploads (optional)
	var mediaSvc *service.MediaService
	if cfg.S3.Enabled() {
		mediaSvc, err = service.NewMediaService(context.Background(), &cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("S3 initialization failed - gallery uploads will be disabled")
			mediaSvc = nil
		}
	}

	// 7. Templates
	tmpl, err := web.Templates()
	if err != nil {
		log.Error().Err(err).Msg("failed to parse templates")
		fmt.Fprintf(os.Stderr, "failed to parse templates: %v\n", err)
		os.Exit(1)
	}

	// 8. Initialize handlers
	limiter := middleware.NewLoginRateLimiter()
	defer limiter.Close()

	shell := handler.NewShell(toasts)
	handlers := &handler.Handlers{
		Shell:     shell,
		Health:    handler.NewHealthHandler(deps),
		Auth:      handler.NewAuthHandler(shell, limiter),
		Dashboard: handler.NewDashboardHandler(shell, service.NewDashboardService()),
		Activity:  handler.NewActivityHandler(shell, activitySvc),
		Resources: handler.NewResourceHandlers(shell, activitySvc, mediaSvc),
	}
	sessionMw := middleware.NewSessionMiddleware(api, persist, cfg.Session.TTL, cfg.Session.SecureCookie)

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.SetHTMLTemplate(tmpl)
	handler.RegisterRoutes(router, handlers, sessionMw, cfg.Session.SecureCookie)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	if activitySvc.Enabled() && cfg.Activity.Retention > 0 {
		go worker.NewActivityRetentionWorker(activitySvc, cfg.Activity.Retention, cfg.Activity.PruneInterval).Start(ctx)
	}

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
