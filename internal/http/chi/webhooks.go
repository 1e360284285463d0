package chi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/webhook"
	"github.com/rs/zerolog"
)

const MsgPayloadTooLarge = "Payload too large"

// Processor runs the ingestion pipeline; *webhook.Pipeline satisfies it
type Processor interface {
	Process(ctx context.Context, req *automation.Request) webhook.Outcome
}

// postWebhook handles POST /{prefix}/{service} and /{prefix}/{service}/{event}
func postWebhook(pipeline Processor, maxBody int64, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		service := chi.URLParam(r, "service")
		event := chi.URLParam(r, "event")

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		defer r.Body.Close()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
					"error":   MsgPayloadTooLarge,
					"service": service,
					"limit":   tooLarge.Limit,
				})
				return
			}
			logger.Warn().Err(err).Str("service", service).Msg("reading webhook body")
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "failed to read request body"})
			return
		}

		out := pipeline.Process(r.Context(), automation.NewRequest(r, service, event, body))
		if out.Err != nil {
			logger.Debug().Err(out.Err).Int("status", out.Status).Str("service", service).Msg("webhook rejected")
		}
		writeJSON(w, out.Status, out.Body)
	})
}
