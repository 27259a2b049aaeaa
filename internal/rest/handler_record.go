package rest

import (
	"errors"
	"net/http"

	"refetch/pkg/model"
)

// handleGetRecord serves a single record from the promoted record cache.
// Records appear here only after a list fetch small enough to warm the
// cache has settled.
func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	resource := r.PathValue("resource")
	id := r.PathValue("id")

	rec, err := h.records.Get(resource, id, nil)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "Record not found")
			return
		}
		writeInternalError(w, err, "Failed to read record cache")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
