// Package domain contains the core domain entities and types used by the
// application. These types describe the business concepts (image validation
// requests, results and cache statistics) and are intentionally free of
// infrastructure concerns so they can be shared across packages.
package domain
