package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/soaringjerry/Raay/internal/api"
	"github.com/soaringjerry/Raay/internal/config"
	dbstore "github.com/soaringjerry/Raay/internal/db"
	"github.com/soaringjerry/Raay/internal/drafts"
	"github.com/soaringjerry/Raay/internal/metrics"
	"github.com/soaringjerry/Raay/internal/middleware"
	"github.com/soaringjerry/Raay/internal/services"
	"github.com/soaringjerry/Raay/internal/utils"
)

func main() {
	cfg, err := config.Load(utils.SafeEnv("RAAY_CONFIG", "config.yaml"))
	if err != nil {
		// No logger yet.
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger, err := initLogger(cfg.Server.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg, logger); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqliteDB, err := dbstore.Open(cfg.Database.SQLitePath, cfg.Database.MigrationsDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			logger.Warn("Failed to close sqlite db", zap.Error(cerr))
		}
	}()
	store, err := dbstore.NewSQLiteStore(sqliteDB)
	if err != nil {
		return err
	}
	logger.Info("SQLite store ready", zap.String("path", cfg.Database.SQLitePath))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegistry(reg, logger)

	draftStore, closeDrafts := initDrafts(ctx, cfg.Redis, logger, m)
	defer closeDrafts()

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if auth.UsesDevSecret() {
		logger.Warn("RAAY_JWT_SECRET not set; using development secret")
	}

	router := api.NewRouter(api.Deps{
		Surveys:     services.NewSurveyService(store, cfg.Builder.ShareBaseURL),
		Drafts:      draftStore,
		Logger:      logger,
		Metrics:     m,
		SessionIdle: cfg.Builder.SessionIdle,
	})

	mux := http.NewServeMux()
	router.Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// Logger and Metrics wrap the mux directly so they see the matched route pattern.
	var handler http.Handler = mux
	handler = middleware.Metrics(m)(handler)
	handler = middleware.Logger(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = auth.WithAuth(handler)
	handler = middleware.Locale(cfg.Builder.DefaultLocale)(handler)
	handler = middleware.NoStore(handler)
	handler = middleware.CORS(cfg.Server.AllowedOrigins)(handler)
	handler = middleware.SecureHeaders(handler)

	go sweepSessions(ctx, router, cfg.Builder.SweepInterval)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Raay server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("default_locale", cfg.Builder.DefaultLocale),
			zap.Bool("redis_drafts", cfg.Redis.Addr != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server exited")
	return nil
}

// initDrafts connects to redis when configured and falls back to in-memory drafts when it is
// unset or unreachable.
func initDrafts(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger, m *metrics.Metrics) (drafts.Store, func()) {
	if cfg.Addr == "" {
		logger.Info("Redis not configured; drafts kept in memory")
		return drafts.NewMemoryStore(cfg.DraftTTL), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		m.RecordDraftError("connect")
		logger.Warn("Redis unreachable; drafts kept in memory", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return drafts.NewMemoryStore(cfg.DraftTTL), func() {}
	}
	logger.Info("Redis draft store ready", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.DraftTTL))
	return drafts.NewRedisStore(client, cfg.DraftTTL), func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
}

func sweepSessions(ctx context.Context, router *api.Router, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			router.SweepIdle()
		}
	}
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}
