package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/carbook/internal/domain"
	"github.com/yourorg/carbook/internal/handler"
	"github.com/yourorg/carbook/internal/infrastructure/logger"
	"github.com/yourorg/carbook/internal/infrastructure/redis"
	"github.com/yourorg/carbook/internal/observability/metrics"
	"github.com/yourorg/carbook/internal/observability/tracing"
	"github.com/yourorg/carbook/internal/repository"
	"github.com/yourorg/carbook/internal/security/audit"
	"github.com/yourorg/carbook/internal/security/auth"
	"github.com/yourorg/carbook/internal/security/middleware"
	"github.com/yourorg/carbook/internal/security/ratelimit"
	"github.com/yourorg/carbook/internal/service"
	"github.com/yourorg/carbook/internal/worker"
	"github.com/yourorg/carbook/pkg/config"
	"github.com/yourorg/carbook/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting carbook server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "carbook", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	// Storage: Postgres for users, Redis for bookings. Either falls back
	// to an in-memory store when unconfigured.
	pingers := map[string]handler.Pinger{}

	var userRepo domain.UserRepository
	if cfg.DatabaseURL != "" {
		db, err := database.Open(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
		userRepo = repository.NewPostgresUserRepository(db, log)
		pingers["database"] = dbPinger{db}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory user store")
		userRepo = repository.NewMemoryUserRepository()
	}

	var bookingRepo domain.BookingRepository
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		bookingRepo = repository.NewRedisBookingRepository(redisClient, log)
		pingers["redis"] = redisClient
	} else {
		log.Warn("REDIS_URL not set, using in-memory booking store")
		bookingRepo = repository.NewMemoryBookingRepository()
	}

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, using insecure default")
	}
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	auditLog := audit.NewLogger(log)
	authService := service.NewAuthService(userRepo, tokenManager, cfg.BcryptCost, log)
	bookingService := service.NewBookingService(bookingRepo, log)

	authHandler := handler.NewAuthHandler(authService, auditLog, log)
	bookingHandler := handler.NewBookingHandler(bookingService, auditLog, log)
	healthHandler := handler.NewHealthHandler(pingers)

	authLimiter := ratelimit.NewLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	defer authLimiter.Stop()

	limited := middleware.RateLimitMiddleware(authLimiter, log)
	protected := middleware.JWTMiddleware(tokenManager, log)

	mux := http.NewServeMux()
	mux.Handle("POST /auth/signup", limited(http.HandlerFunc(authHandler.Signup)))
	mux.Handle("POST /auth/login", limited(http.HandlerFunc(authHandler.Login)))

	mux.Handle("GET /bookings", protected(http.HandlerFunc(bookingHandler.List)))
	mux.Handle("POST /bookings", protected(http.HandlerFunc(bookingHandler.Create)))
	mux.Handle("GET /bookings/{id}", protected(http.HandlerFunc(bookingHandler.Get)))
	mux.Handle("PUT /bookings/{id}", protected(http.HandlerFunc(bookingHandler.Update)))
	mux.Handle("DELETE /bookings/{id}", protected(http.HandlerFunc(bookingHandler.Delete)))

	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)
	mux.Handle("/metrics", promhttp.Handler())

	// Chain: request ID -> metrics -> content-type -> CORS -> mux,
	// wrapped in otelhttp for tracing.
	var root http.Handler = mux
	root = withCORS(cfg.CORSAllowedOrigins, root)
	root = middleware.ValidateJSONContentType(log)(root)
	root = metrics.HTTPMetricsMiddleware(root)
	root = withRequestID(root, log)
	root = otelhttp.NewHandler(root, "carbook")

	statsWorker := worker.NewStatsWorker(bookingRepo, log, cfg.StatsInterval)
	go statsWorker.Start(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("auth_rate_limit", cfg.AuthRateLimit),
		slog.Duration("auth_rate_window", cfg.AuthRateWindow),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	log.Info("server stopped")
}

// dbPinger adapts *sql.DB to the handler.Pinger interface.
type dbPinger struct {
	db *sql.DB
}

func (p dbPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers,
// and logs each completed request.
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

func withCORS(allowed []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(allowed, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(allowed) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", allowed[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
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
