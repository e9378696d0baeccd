package domain

import "time"

// ImageRequest is the input unit of a validation batch: a single candidate
// image URL as supplied by the caller. The URL must parse as an absolute URI
// to be eligible for processing; entries that do not are filtered out.
type ImageRequest struct {
	URL string `json:"url"`
}

// ValidationResult is the per-URL outcome of a batch validation. Exactly one
// result is produced for every unique, well-formed input URL, in the order of
// first occurrence.
type ValidationResult struct {
	// ImageURL is the validated URL exactly as it appeared in the input.
	ImageURL string `json:"imageUrl"`
	// Valid reports whether the URL resolved to a fetchable image.
	Valid bool `json:"valid"`
	// Message is a human-readable description of the outcome: a success
	// text or a classified error description.
	Message string `json:"message"`
	// Cached is true when the result was served from the result cache
	// instead of a live fetch in the current invocation.
	Cached bool `json:"-"`
}

// BatchSummary holds aggregate counters for one engine invocation. It is
// exposed for observability; callers do not need it for correctness.
type BatchSummary struct {
	// Total is the number of unique, well-formed URLs that were processed.
	Total int `json:"total"`
	// Valid counts results with Valid == true.
	Valid int `json:"valid"`
	// Invalid counts results with Valid == false.
	Invalid int `json:"invalid"`
	// Cached counts results that were served from the result cache.
	Cached int `json:"cached"`
	// Elapsed is the wall-clock duration of the invocation.
	Elapsed time.Duration `json:"-"`
}

// BatchReport is the full output of one engine invocation: the ordered
// result list plus summary counters.
type BatchReport struct {
	Results []ValidationResult `json:"results"`
	Summary BatchSummary       `json:"summary"`
}

// CacheStats describes the state of the result cache at a point in time.
type CacheStats struct {
	// TotalEntries is the number of entries currently stored, fresh or not.
	TotalEntries int `json:"totalEntries"`
	// FreshEntries is the number of entries still within their TTL.
	FreshEntries int `json:"freshEntries"`
	// ExpiredEntries is the number of entries past their TTL that have not
	// been swept yet.
	ExpiredEntries int `json:"expiredEntries"`
	// HitRatio is the fraction of lookups answered from a fresh entry.
	// It is 0 when no lookups happened or no fresh entries remain.
	HitRatio float64 `json:"hitRatio"`
}
