// Package engine orchestrates batch image validation: it normalizes and
// deduplicates the incoming URL list, sweeps the result cache, fans the
// unique URLs out to the single-URL validator under a strict concurrency
// ceiling, and aggregates the ordered results with summary counters.
package engine

import (
	"context"
	"fmt"
	"time"

	"imagecheck/internal/config"
	"imagecheck/internal/validator"
	"imagecheck/pkg/cache"
	"imagecheck/pkg/domain"
	"imagecheck/pkg/logger"
	"imagecheck/pkg/serrors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Options configure how a batch is partitioned and paced.
// These settings are typically derived from application configuration.
type Options struct {
	// Concurrency is both the group size and the ceiling on validations in
	// flight at once during a single invocation.
	Concurrency int
	// BatchPause is the pacing delay between consecutive groups.
	BatchPause time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Concurrency: cfg.Validator.Concurrency,
		BatchPause:  cfg.Validator.BatchPause,
	}
}

// engine is the concrete implementation of the Engine interface.
type engine struct {
	validator *validator.Validator
	cache     *cache.Cache
	options   Options

	results metric.Int64Counter
}

// New creates an Engine backed by the provided validator and result cache,
// reporting its metrics through meter.
func New(v *validator.Validator, resultCache *cache.Cache, options Options, meter metric.Meter) (Engine, error) {
	results, err := meter.Int64Counter("image_validation_results_total",
		metric.WithDescription("Terminal validation results by verdict"))
	if err != nil {
		return nil, fmt.Errorf("could not create results counter: %w", err)
	}

	return &engine{
		validator: v,
		cache:     resultCache,
		options:   options,
		results:   results,
	}, nil
}

// Process implements Engine.
func (e *engine) Process(ctx context.Context, requests []domain.ImageRequest) (*domain.BatchReport, error) {
	if len(requests) == 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "image list is empty")
	}

	urls := Normalize(ctx, requests)
	if len(urls) == 0 {
		return nil, serrors.With(serrors.ErrNoValidInput, "no valid image URLs in input")
	}

	// Best-effort cleanup; Lookup enforces freshness on its own.
	e.cache.Sweep()

	start := time.Now()
	results := e.dispatch(ctx, urls)

	summary := domain.BatchSummary{
		Total:   len(results),
		Elapsed: time.Since(start),
	}
	for i := range results {
		if results[i].Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}
		if results[i].Cached {
			summary.Cached++
		}
		e.results.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("valid", results[i].Valid),
			attribute.Bool("cached", results[i].Cached),
		))
	}

	logger.Info(ctx, "batch processed",
		zap.Int("requested", len(requests)),
		zap.Int("unique", summary.Total),
		zap.Int("valid", summary.Valid),
		zap.Int("invalid", summary.Invalid),
		zap.Int("cached", summary.Cached),
		zap.Duration("elapsed", summary.Elapsed))

	return &domain.BatchReport{
		Results: results,
		Summary: summary,
	}, nil
}

// ClearCache implements Engine.
func (e *engine) ClearCache() {
	e.cache.Clear()
}

// CacheStats implements Engine.
func (e *engine) CacheStats() domain.CacheStats {
	return e.cache.Stats()
}
