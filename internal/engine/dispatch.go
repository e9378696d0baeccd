package engine

import (
	"context"
	"fmt"
	"time"

	"imagecheck/pkg/domain"
	"imagecheck/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// dispatch validates urls in consecutive groups of Options.Concurrency,
// running each group concurrently and pausing BatchPause between groups.
// Results are collected positionally, so the output order always matches the
// input order regardless of completion order within a group.
func (e *engine) dispatch(ctx context.Context, urls []string) []domain.ValidationResult {
	results := make([]domain.ValidationResult, len(urls))

	groupSize := e.options.Concurrency
	if groupSize < 1 {
		groupSize = 1
	}

	for offset := 0; offset < len(urls); offset += groupSize {
		end := min(offset+groupSize, len(urls))

		var g errgroup.Group
		for i, imageURL := range urls[offset:end] {
			idx := offset + i
			g.Go(func() error {
				results[idx] = e.validateIsolated(ctx, imageURL)

				return nil
			})
		}
		// workers never return errors; every member settles on its own
		_ = g.Wait()

		if end == len(urls) {
			break
		}

		select {
		case <-ctx.Done():
			// Caller gave up mid-batch: keep what was computed and mark the
			// rest instead of dropping entries.
			for idx := end; idx < len(urls); idx++ {
				results[idx] = domain.ValidationResult{
					ImageURL: urls[idx],
					Valid:    false,
					Message:  "validation canceled",
				}
			}

			return results
		case <-time.After(e.options.BatchPause):
		}
	}

	return results
}

// validateIsolated shields sibling validations from an unexpected failure in
// this one: a panicking validation still yields a result for its URL instead
// of tearing down the batch.
func (e *engine) validateIsolated(ctx context.Context, imageURL string) (res domain.ValidationResult) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "unexpected validation failure",
				zap.String("url", imageURL),
				zap.Any("panic", p))

			res = domain.ValidationResult{
				ImageURL: imageURL,
				Valid:    false,
				Message:  fmt.Sprintf("unexpected validation failure: %v", p),
			}
		}
	}()

	return e.validator.Validate(ctx, imageURL)
}
