package history

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// Handler exposes lookup history endpoints.
type Handler struct {
	Store *Store
}

// List handles GET /api/v1/history/{device}.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	device := strings.TrimSpace(chi.URLParam(r, "device"))
	if device == "" {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "device is required", nil)
		return
	}
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 0)
	entries, err := h.Store.List(r.Context(), device, limit)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load history", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

// Clear handles DELETE /api/v1/history/{device}.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	device := strings.TrimSpace(chi.URLParam(r, "device"))
	if device == "" {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "device is required", nil)
		return
	}
	if err := h.Store.Clear(r.Context(), device); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to clear history", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
