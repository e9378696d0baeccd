// Package httpfetch provides an imagefetch.Client backed by net/http.
package httpfetch

import (
	"context"
	"fmt"
	"net/http"

	"imagecheck/pkg/imagefetch"
)

// DefaultUserAgent identifies this service to image hosts when the
// configuration does not override it.
const DefaultUserAgent = "imagecheck/1.0 (+image URL validator)"

// Client fetches image URLs over HTTP. It is safe for concurrent use.
// Per-attempt deadlines are expected to arrive via the request context, so
// the underlying http.Client needs no Timeout of its own.
type Client struct {
	httpClient *http.Client // httpClient performs the actual requests
	userAgent  string       // userAgent is sent as the identifying header
}

// Fetch issues a single GET for imageURL and returns the response metadata.
// The body is closed without being read: validation only ever looks at the
// status line and headers.
func (c *Client) Fetch(ctx context.Context, imageURL string) (imagefetch.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return imagefetch.Response{}, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return imagefetch.Response{}, fmt.Errorf("could not send request: %w", err)
	}
	// Discard the payload: closing without reading lets the transport drop
	// the connection instead of draining a potentially large image.
	_ = resp.Body.Close()

	return imagefetch.Response{
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// Ensure Client conforms to the imagefetch.Client interface at compile time.
var _ imagefetch.Client = (*Client)(nil)

// New constructs a Client that uses the provided http.Client and identifies
// itself with userAgent. An empty userAgent falls back to DefaultUserAgent.
func New(httpClient *http.Client, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}
