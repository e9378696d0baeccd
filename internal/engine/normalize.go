package engine

import (
	"context"
	"net/url"

	"imagecheck/pkg/domain"
	"imagecheck/pkg/logger"

	"go.uber.org/zap"
)

// Normalize filters malformed entries out of a request batch and removes
// duplicates, preserving first-occurrence order.
//
// An entry survives iff its URL is a non-empty string that parses as an
// absolute URI. Entries that fail this are dropped silently: no error result
// is emitted for them, which is the deliberate best-effort filtering policy
// of the batch endpoint. Duplicates are compared by exact string equality;
// no canonicalization (trailing slashes, scheme case) is applied, so
// "https://a/x" and "https://a/x/" count as distinct.
func Normalize(ctx context.Context, requests []domain.ImageRequest) []string {
	seen := make(map[string]struct{}, len(requests))
	urls := make([]string, 0, len(requests))

	for _, req := range requests {
		if req.URL == "" {
			continue
		}

		u, err := url.Parse(req.URL)
		if err != nil || !u.IsAbs() {
			logger.Debug(ctx, "dropping malformed image URL", zap.String("url", req.URL))

			continue
		}

		if _, dup := seen[req.URL]; dup {
			continue
		}
		seen[req.URL] = struct{}{}
		urls = append(urls, req.URL)
	}

	return urls
}
