// Package v1handler implements the v1 HTTP handlers. The HTTP layer is a
// thin shim over the validation engine: it parses request bodies, maps
// engine-level error kinds to status codes and serializes responses.
package v1handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"imagecheck/internal/engine"
	"imagecheck/pkg/logger"
	"imagecheck/pkg/serrors"

	"go.uber.org/zap"
)

// Deps bundles the collaborators the handlers delegate to.
type Deps struct {
	// Engine performs batch image validation and cache administration.
	Engine engine.Engine
}

// Handler serves the v1 routes.
type Handler struct {
	deps Deps
}

// New creates a Handler with the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register mounts the v1 routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/images/validate", h.ValidateImages)
	mux.HandleFunc("POST /v1/cache/clear", h.ClearCache)
	mux.HandleFunc("GET /v1/cache/stats", h.CacheStats)
}

// errorResponse is the body returned for rejected or failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v as the response body with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(ctx, "could not write response", zap.Error(err))
	}
}

// writeError maps an error to a transport status code and a descriptive
// error record. Input-shape problems become 400; everything else is an
// internal error with the detail kept out of the response.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, serrors.ErrBadRequest), errors.Is(err, serrors.ErrNoValidInput):
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		logger.Error(ctx, "request failed", zap.Error(err))
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
