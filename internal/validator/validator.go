// Package validator implements the single-URL validation policy: one bounded,
// retried fetch of an image URL, classification of the outcome, and the
// write-back into the result cache.
package validator

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"imagecheck/internal/config"
	"imagecheck/pkg/cache"
	"imagecheck/pkg/domain"
	"imagecheck/pkg/imagefetch"
	"imagecheck/pkg/logger"
	"imagecheck/pkg/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ValidMessage is the message attached to a successful validation.
const ValidMessage = "image URL is valid"

// Options configure how a single URL is fetched and retried.
// These settings are typically derived from application configuration.
type Options struct {
	// AttemptTimeout bounds each individual fetch attempt. Expiry aborts
	// only that attempt and counts as a transient failure.
	AttemptTimeout time.Duration
	// MaxAttempts is the total number of fetch attempts per URL, including
	// the first. Only transient failures consume extra attempts.
	MaxAttempts int
	// BackoffBase is the base of the linear backoff between attempts: the
	// wait before attempt n+1 is BackoffBase * n.
	BackoffBase time.Duration
	// MaxContentLength rejects responses whose declared Content-Length
	// exceeds this many bytes, without downloading the body.
	MaxContentLength int64
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		AttemptTimeout:   cfg.Validator.AttemptTimeout,
		MaxAttempts:      cfg.Validator.MaxAttempts,
		BackoffBase:      cfg.Validator.BackoffBase,
		MaxContentLength: cfg.Validator.MaxContentLength,
	}
}

// Validator resolves one URL at a time to a terminal classification. Content
// failures (bad status, non-image content type, oversized payload) are never
// retried; transport-level failures are retried up to the attempt ceiling.
// Terminal outcomes are written to the cache before being returned. The
// Validator is safe for concurrent use.
type Validator struct {
	fetcher imagefetch.Client
	cache   *cache.Cache
	options Options

	fetchDuration metric.Float64Histogram
	fetchAttempts metric.Int64Counter
	cacheHits     metric.Int64Counter
}

// New creates a Validator backed by the provided fetch client and result
// cache, reporting its metrics through meter.
func New(fetcher imagefetch.Client, resultCache *cache.Cache, options Options, meter metric.Meter) (*Validator, error) {
	fetchDuration, err := meter.Float64Histogram("image_fetch_duration_seconds",
		metric.WithDescription("Duration of individual image fetch attempts"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create fetch duration histogram: %w", err)
	}

	fetchAttempts, err := meter.Int64Counter("image_fetch_attempts_total",
		metric.WithDescription("Image fetch attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("could not create fetch attempts counter: %w", err)
	}

	cacheHits, err := meter.Int64Counter("image_cache_hits_total",
		metric.WithDescription("Validations answered from the result cache"))
	if err != nil {
		return nil, fmt.Errorf("could not create cache hits counter: %w", err)
	}

	return &Validator{
		fetcher:       fetcher,
		cache:         resultCache,
		options:       options,
		fetchDuration: fetchDuration,
		fetchAttempts: fetchAttempts,
		cacheHits:     cacheHits,
	}, nil
}

// Validate resolves imageURL to exactly one terminal classification. A fresh
// cache entry short-circuits the fetch entirely; the returned result is
// flagged as cache-derived and its message notes the derivation without
// altering the stored text.
func (v *Validator) Validate(ctx context.Context, imageURL string) domain.ValidationResult {
	if entry, ok := v.cache.Lookup(imageURL); ok {
		v.cacheHits.Add(ctx, 1)
		logger.Debug(ctx, "cache hit", zap.String("url", imageURL), zap.Bool("valid", entry.Valid))

		return domain.ValidationResult{
			ImageURL: imageURL,
			Valid:    entry.Valid,
			Message:  entry.Message + " (cached)",
			Cached:   true,
		}
	}

	valid, message := v.resolve(ctx, imageURL)
	v.cache.Store(imageURL, valid, message)

	return domain.ValidationResult{
		ImageURL: imageURL,
		Valid:    valid,
		Message:  message,
	}
}

// resolve runs the bounded attempt loop for one URL and returns its terminal
// verdict and message.
func (v *Validator) resolve(ctx context.Context, imageURL string) (bool, string) {
	maxAttempts := v.options.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	attemptsMade := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptsMade = attempt
		attemptCtx, cancel := context.WithTimeout(ctx, v.options.AttemptTimeout)
		start := time.Now()
		resp, err := v.fetcher.Fetch(attemptCtx, imageURL)
		cancel()
		v.fetchDuration.Record(ctx, time.Since(start).Seconds())

		if err != nil {
			// Transport-level failures (timeout, reset, DNS) are transient
			// and eligible for retry.
			lastErr = err
			v.fetchAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "transient_error")))
			logger.Debug(ctx, "transient fetch failure",
				zap.String("url", imageURL),
				zap.Int("attempt", attempt),
				zap.Error(err))

			if attempt < maxAttempts && !v.backoff(ctx, attempt) {
				// caller gave up while we were waiting
				break
			}

			continue
		}

		if valid, message, retriable := classify(resp, v.options.MaxContentLength); !retriable {
			outcome := "rejected"
			if valid {
				outcome = "ok"
			}
			v.fetchAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

			return valid, message
		}
	}

	return false, fmt.Sprintf("fetch failed after %d attempt(s): %s", attemptsMade, lastErr)
}

// classify turns response metadata into a verdict. retriable is always false
// here: a response that arrived is a terminal classification, good or bad.
func classify(resp imagefetch.Response, maxContentLength int64) (valid bool, message string, retriable bool) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Sprintf("unexpected status %d", resp.StatusCode), false
	}

	if !isImageContentType(resp.ContentType) {
		return false, "invalid content type", false
	}

	if resp.ContentLength > maxContentLength {
		return false, fmt.Sprintf("image too large: %d bytes", resp.ContentLength), false
	}

	return true, ValidMessage, false
}

// isImageContentType reports whether the Content-Type header declares an
// image media type. A missing or unparsable header does not qualify.
func isImageContentType(contentType string) bool {
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return strings.HasPrefix(mediaType, "image/")
}

// backoff waits BackoffBase * attempt before the next try. It returns false
// when the context is canceled during the wait.
func (v *Validator) backoff(ctx context.Context, attempt int) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(v.options.BackoffBase * time.Duration(attempt)):
		return true
	}
}
