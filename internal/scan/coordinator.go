package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/queue"
)

// TaskKindLookup names the queue task produced for each accepted scan.
const TaskKindLookup = "lookup"

// LookupPayload is the queue payload for a scanned code.
type LookupPayload struct {
	Barcode string `json:"barcode"`
	Device  string `json:"device,omitempty"`
}

func decodeMessage(payload string) (Code, error) {
	var c Code
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Code{}, err
	}
	c.Barcode = NormalizeBarcode(c.Barcode)
	if c.Barcode == "" {
		return Code{}, errors.New("scan: empty barcode")
	}
	return c, nil
}

// NormalizeBarcode trims surrounding whitespace, including the CR/LF
// suffixes some scanner bridges append, and rejects codes with embedded
// control characters.
func NormalizeBarcode(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, r := range raw {
		if unicode.IsControl(r) {
			return ""
		}
	}
	return raw
}

// Coordinator drains a scan source into the lookup queue.
type Coordinator struct {
	Source   Source
	Enqueuer queue.Enqueuer
	Attempts int
	Logger   zerolog.Logger
}

// Run consumes codes until the context is cancelled. Each code becomes one
// lookup task with quantity one semantics downstream; repeated scans of the
// same barcode within the dedup window collapse into a single task.
func (c Coordinator) Run(ctx context.Context) error {
	if c.Source == nil {
		return errors.New("scan: coordinator source not configured")
	}
	codes, err := c.Source.Codes(ctx)
	if err != nil {
		return err
	}
	for code := range codes {
		payload, err := json.Marshal(LookupPayload{Barcode: code.Barcode, Device: code.Device})
		if err != nil {
			continue
		}
		task := queue.Task{
			Kind:           TaskKindLookup,
			Payload:        payload,
			IdempotencyKey: dedupKeyFor(code),
			MaxAttempts:    c.Attempts,
		}
		if err := c.Enqueuer.Enqueue(ctx, task); err != nil {
			c.Logger.Error().Err(err).Str("barcode", code.Barcode).Msg("enqueue lookup failed")
			continue
		}
		if obs.ScanCodesTotal != nil {
			obs.ScanCodesTotal.Inc()
		}
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func dedupKeyFor(c Code) string {
	if c.Device == "" {
		return fmt.Sprintf("scan:%s", c.Barcode)
	}
	return fmt.Sprintf("scan:%s:%s", c.Device, c.Barcode)
}
