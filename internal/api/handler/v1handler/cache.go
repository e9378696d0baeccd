package v1handler

import "net/http"

// ClearCache drops all cached validation results unconditionally.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.deps.Engine.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

// CacheStats reports the current state of the result cache.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.deps.Engine.CacheStats())
}
