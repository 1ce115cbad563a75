// Package main is the entrypoint for the linkstats API server.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	_ "time/tzdata" // REPORT_TIMEZONE must resolve in minimal containers

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/penshort/linkstats/internal/analytics"
	"github.com/penshort/linkstats/internal/cache"
	"github.com/penshort/linkstats/internal/config"
	"github.com/penshort/linkstats/internal/handler"
	"github.com/penshort/linkstats/internal/metrics"
	"github.com/penshort/linkstats/internal/middleware"
	"github.com/penshort/linkstats/internal/repository"
	"github.com/penshort/linkstats/internal/server"
	"github.com/penshort/linkstats/internal/service"
	"github.com/penshort/linkstats/internal/stats"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog := initLogger(cfg)
	defer closeLog()

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("database unavailable")
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return errors.New("redis unavailable")
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	opts, err := reportOptions(cfg)
	if err != nil {
		return err
	}

	recorder := metrics.NewInMemory()
	engine := stats.NewEngine(repo, repo, opts, logger)
	reportService := service.NewReportService(engine, cacheClient, service.ReportConfig{
		DefaultDays: cfg.ReportDefaultDays,
		MaxDays:     cfg.ReportMaxDays,
		CacheTTL:    cfg.ReportCacheTTL,
	}, recorder, logger)
	publisher := analytics.NewPublisher(cacheClient.Client(), logger, recorder)
	clickService := service.NewClickService(repo, publisher)

	r := setupRouter(routes{
		health:  handler.NewHealthHandler(repo, cacheClient),
		metrics: handler.NewMetricsHandler(recorder),
		reports: handler.NewReportHandler(reportService, logger),
		clicks:  handler.NewClickHandler(clickService, logger),
	}, repo, cacheClient, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if cfg.AnalyticsWorkerEnabled {
		worker := analytics.NewWorker(cacheClient.Client(), repo, logger, analytics.NewConsumerID(), recorder)
		worker.SetBatchSize(cfg.AnalyticsWorkerBatchSize)
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("click ingest worker stopped", "error", err)
			}
		}()
		srv.OnShutdown("click-ingest-worker", worker.Shutdown)
	}

	if cfg.IsProduction() && !cfg.RateLimitAPIEnabled {
		logger.Warn("API rate limiting is disabled in production")
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"report_timezone", opts.Location.String(),
		"report_cache_ttl", cfg.ReportCacheTTL,
		"worker_enabled", cfg.AnalyticsWorkerEnabled,
	)

	return srv.Run(ctx)
}

func reportOptions(cfg *config.Config) (stats.Options, error) {
	loc, err := cfg.ReportLocation()
	if err != nil {
		return stats.Options{}, err
	}
	weekStart, err := cfg.WeekStart()
	if err != nil {
		return stats.Options{}, err
	}
	return stats.Options{
		Location:  loc,
		WeekStart: weekStart,
		TopN:      cfg.ReportTopN,
	}, nil
}

// initLogger builds the process logger. When LOG_FILE is set, output is
// also written to a size-rotated file.
func initLogger(cfg *config.Config) (*slog.Logger, func()) {
	var out io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closeFn = func() { _ = rotator.Close() }
	}

	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, closeFn
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routes struct {
	health  *handler.HealthHandler
	metrics *handler.MetricsHandler
	reports *handler.ReportHandler
	clicks  *handler.ClickHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h routes,
	repo *repository.Repository,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecureHeaders(cfg.IsDevelopment()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	authCfg := middleware.AuthConfig{
		Logger:      logger,
		Keys:        repo,
		Cache:       cacheClient,
		MinDuration: middleware.DefaultMinAuthDuration,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: cacheClient,
		Enabled: cfg.RateLimitAPIEnabled,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))

		r.With(middleware.RequireWrite(), middleware.MaxBodySize(cfg.MaxRequestBodySize)).
			Post("/clicks", h.clicks.Record)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRead())
			r.Get("/report", h.reports.GetAccountReport)
			r.Get("/links/{id}/report", h.reports.GetLinkReport)
			r.Get("/campaigns/{id}/report", h.reports.GetCampaignReport)
		})
	})

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
