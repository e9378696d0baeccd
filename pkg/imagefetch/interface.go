// Package imagefetch defines the abstraction used to probe image URLs and
// the response metadata the validation engine inspects. Only headers and
// status are reported; implementations never hand back the payload.
package imagefetch

import "context"

// Response carries the header-level metadata of a fetch attempt. The engine
// classifies outcomes from these fields alone.
type Response struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// ContentType is the value of the Content-Type header, empty when the
	// header was absent.
	ContentType string
	// ContentLength is the declared payload size in bytes, or -1 when the
	// server did not declare one.
	ContentLength int64
}

// Client is the abstraction for fetching image URLs. Implementations issue
// one network attempt per call, honor context cancellation and deadlines,
// and discard any payload without buffering it.
type Client interface {
	// Fetch performs a single bounded fetch of imageURL and returns the
	// header metadata. A non-nil error means the attempt failed at the
	// transport level (DNS, connect, reset, timeout) before any response
	// could be classified.
	Fetch(ctx context.Context, imageURL string) (Response, error)
}
