package v1handler

import (
	"encoding/json"
	"net/http"

	"imagecheck/pkg/domain"
	"imagecheck/pkg/serrors"
)

// validateRequest is the boundary input: an ordered sequence of records each
// carrying a candidate image URL.
type validateRequest struct {
	Images []domain.ImageRequest `json:"images"`
}

// ValidateImages runs a batch validation. A partially failing batch is still
// a 200 with a mixed-outcome list; only fully invalid input yields an error
// response.
func (h *Handler) ValidateImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

		return
	}

	report, err := h.deps.Engine.Process(ctx, req.Images)
	if err != nil {
		writeError(ctx, w, err)

		return
	}

	writeJSON(ctx, w, http.StatusOK, report)
}
