package quote

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// Handler exposes the public price quote endpoint.
type Handler struct {
	Svc    *Service
	MaxQty int
}

// Price handles GET /api/v1/products/{barcode}/price?qty=N.
// qty defaults to 1; the service clamps again before resolution.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	barcode := strings.TrimSpace(chi.URLParam(r, "barcode"))
	if barcode == "" {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "barcode is required", nil)
		return
	}
	qty := 1
	if rawQty := strings.TrimSpace(r.URL.Query().Get("qty")); rawQty != "" {
		parsed, err := strconv.Atoi(rawQty)
		if err != nil || parsed < 1 {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "qty must be a positive integer", nil)
			return
		}
		qty = parsed
	}
	if h.MaxQty > 0 && qty > h.MaxQty {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "qty exceeds maximum", map[string]any{"max": h.MaxQty})
		return
	}

	device := strings.TrimSpace(r.Header.Get("X-Device-ID"))
	q, err := h.Svc.Quote(r.Context(), barcode, qty, device)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": q})
}
