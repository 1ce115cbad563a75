// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/penshort/linkstats/internal/cache"
	"github.com/penshort/linkstats/internal/metrics"
	"github.com/penshort/linkstats/internal/model"
	"github.com/penshort/linkstats/internal/repository"
)

// Service errors.
var (
	ErrScopeNotFound  = errors.New("report scope not found")
	ErrInvalidWindow  = errors.New("invalid report window")
	ErrLinkNotFound   = errors.New("link not found")
	ErrInvalidClick   = errors.New("invalid click event")
	ErrClickPublisher = errors.New("click stream unavailable")
)

// ReportBuilder computes a report from stored click events.
type ReportBuilder interface {
	Build(ctx context.Context, scope model.ReportScope, days int) (*model.Report, error)
}

// ReportCache stores serialized reports. Implementations return
// cache.ErrCacheMiss for absent entries.
type ReportCache interface {
	GetReport(ctx context.Context, key string) (*model.Report, error)
	SetReport(ctx context.Context, key string, report *model.Report, ttl time.Duration) error
}

// ReportConfig bounds report windows and caching.
type ReportConfig struct {
	DefaultDays int
	MaxDays     int
	CacheTTL    time.Duration
}

// ReportService serves dashboard reports, caching them briefly.
type ReportService struct {
	builder ReportBuilder
	cache   ReportCache
	cfg     ReportConfig
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewReportService creates a ReportService. A nil cache or a non-positive
// CacheTTL disables caching.
func NewReportService(builder ReportBuilder, reportCache ReportCache, cfg ReportConfig, recorder metrics.Recorder, logger *slog.Logger) *ReportService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 30
	}
	if cfg.MaxDays < cfg.DefaultDays {
		cfg.MaxDays = cfg.DefaultDays
	}
	if cfg.CacheTTL <= 0 {
		reportCache = nil
	}
	return &ReportService{
		builder: builder,
		cache:   reportCache,
		cfg:     cfg,
		metrics: recorder,
		logger:  logger.With("component", "service.report"),
	}
}

// GetReport returns the report for scope over the last days days.
// days of zero selects the configured default.
func (s *ReportService) GetReport(ctx context.Context, scope model.ReportScope, days int) (*model.Report, error) {
	if days == 0 {
		days = s.cfg.DefaultDays
	}
	if days < 1 || days > s.cfg.MaxDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidWindow, s.cfg.MaxDays)
	}
	if !scope.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown scope kind %q", ErrScopeNotFound, scope.Kind)
	}

	key := cache.ReportKey(scope, days)
	if s.cache != nil {
		report, err := s.cache.GetReport(ctx, key)
		switch {
		case err == nil:
			s.metrics.IncReportCacheHit()
			return report, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.metrics.IncReportCacheMiss()
		default:
			s.metrics.IncReportCacheMiss()
			s.logger.Warn("report cache read failed", "key", key, "error", err)
		}
	}

	start := time.Now()
	report, err := s.builder.Build(ctx, scope, days)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) || errors.Is(err, repository.ErrCampaignNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrScopeNotFound, scope.Kind, scope.ID)
		}
		return nil, fmt.Errorf("build %s report: %w", scope.Kind, err)
	}
	s.metrics.IncReportGenerated(string(scope.Kind))
	s.metrics.ObserveReportDuration(time.Since(start))
	s.metrics.ObserveReportEvents(report.TotalClicks)

	if s.cache != nil {
		if err := s.cache.SetReport(ctx, key, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("report cache write failed", "key", key, "error", err)
		}
	}

	return report, nil
}
