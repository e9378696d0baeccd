package engine

import (
	"context"

	"imagecheck/pkg/domain"
)

// Engine is the batch image-validation facade. Process is the single
// validation entry point; the cache operations back the administrative
// endpoints of the surrounding service.
type Engine interface {
	// Process validates a batch of candidate image URLs and returns one
	// result per unique, well-formed input URL, preserving first-occurrence
	// order. It fails only on input-shape problems (empty input, nothing
	// left after filtering); per-URL failures appear as invalid results.
	Process(ctx context.Context, requests []domain.ImageRequest) (*domain.BatchReport, error)
	// ClearCache drops all cached validation results unconditionally.
	ClearCache()
	// CacheStats reports the current state of the result cache.
	CacheStats() domain.CacheStats
}
