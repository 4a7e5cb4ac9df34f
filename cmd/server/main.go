package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/featureflags"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/generator"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/handler"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/infrastructure/logger"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/infrastructure/randomuser"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/infrastructure/redis"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/observability/metrics"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/observability/tracing"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/repository"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/audit"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/auth"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/middleware"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/ratelimit"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/service"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/worker"
	"github.com/Ch4rC0M1n0U/osintgenerator/pkg/config"
	"github.com/Ch4rC0M1n0U/osintgenerator/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting osintgen server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless OTEL_EXPORTER_OTLP_ENDPOINT is set)
	shutdownTracing, err := tracing.Init(ctx, log, "osintgen", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize PostgreSQL and bootstrap schema
	db, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Bootstrap(ctx); err != nil {
		log.Error("failed to bootstrap schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Initialize Redis client
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 6. Initialize repositories
	profileRepo := repository.NewPostgresProfileRepository(db.GetDB(), log)
	tagRepo := repository.NewPostgresTagRepository(db.GetDB(), log)
	usageRepo := repository.NewPostgresUsageLogRepository(db.GetDB(), log)
	userRepo := repository.NewPostgresUserRepository(db.GetDB(), log)

	// 7. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "osintgen", time.Duration(cfg.JWTTTLHours)*time.Hour)
	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute, log)
	auditLogger := audit.NewLogger(log)

	// 8. Initialize the generation pipeline
	upstream := randomuser.NewClient(cfg.UpstreamBaseURL, time.Duration(cfg.UpstreamTimeoutSecs)*time.Second, log)
	acquirer := generator.NewAcquirer(upstream, cfg.GenerationAttempts, log)

	// 9. Initialize the activity feed (optional)
	var activityHandler *handler.ActivityHandler
	var activityPublisher service.ActivityPublisher
	if featureflags.Enabled("activity_feed") {
		activityHandler = handler.NewActivityHandler(tokenManager, log, cfg.CORSAllowedOrigins)
		activityPublisher = activityHandler
	}

	// 10. Initialize services
	profileService := service.NewProfileService(
		acquirer, profileRepo, tagRepo, usageRepo, activityPublisher, auditLogger, nil, log)
	authService := service.NewAuthService(userRepo, tokenManager, log)

	// 11. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	profilesHandler := handler.NewProfilesHandler(profileService, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// 12. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.HandleFunc("PUT /api/auth/language", authHandler.UpdateLanguage)
	mux.HandleFunc("POST /api/profiles/generate", profilesHandler.Generate)
	mux.HandleFunc("GET /api/profiles", profilesHandler.List)
	mux.HandleFunc("GET /api/profiles/{id}", profilesHandler.Get)
	mux.HandleFunc("DELETE /api/profiles/{id}", profilesHandler.Delete)
	mux.HandleFunc("POST /api/profiles/{id}/tags", profilesHandler.AttachTag)
	mux.HandleFunc("GET /api/tags", profilesHandler.ListTags)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())
	if activityHandler != nil {
		mux.Handle("GET /ws/activity", activityHandler)
	}

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> JWT -> rate limit -> audit
	// -> content type -> CORS. JWT runs before the rate limiter and audit so
	// both can key off the verified identity.
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.AuditMiddleware(auditLogger)(
						middleware.ValidateJSONContentType(log)(handlerWithCORS),
					),
				),
			),
		),
		log,
	)

	// 13. Start stats worker in background (optional)
	if featureflags.Enabled("stats_worker") {
		statsWorker := worker.NewStatsWorker(
			profileRepo, userRepo, tagRepo, log,
			time.Duration(cfg.StatsIntervalMinutes)*time.Minute,
		)
		go statsWorker.Start(ctx)
	}

	// 14. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop background workers
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
