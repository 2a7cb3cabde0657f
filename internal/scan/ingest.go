package scan

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-kasir/internal/common"
)

type ingestRequest struct {
	Barcode string `json:"barcode" validate:"required,max=64"`
	Device  string `json:"device" validate:"omitempty,max=64"`
}

// Publisher pushes accepted codes onto the scan channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// IngestHandler accepts scans over HTTP for terminals without a direct
// Redis bridge and publishes them onto the same channel the bridges use.
type IngestHandler struct {
	Pub      Publisher
	Channel  string
	Validate *validator.Validate
}

func (h IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	req.Barcode = NormalizeBarcode(req.Barcode)
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "barcode is required", nil)
		return
	}
	if req.Device == "" {
		req.Device = r.Header.Get("X-Device-ID")
	}

	payload, err := json.Marshal(Code{Barcode: req.Barcode, Device: req.Device})
	if err != nil {
		common.RenderError(w, err)
		return
	}
	if err := h.Pub.Publish(r.Context(), h.Channel, payload).Err(); err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusAccepted, map[string]any{
		"data": map[string]string{"barcode": req.Barcode, "status": "accepted"},
	})
}
