package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marcelsud/automation-connect/automation"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, automation.ErrDriverNotFound):
		return http.StatusNotFound
	case errors.Is(err, automation.ErrWebhookVerification):
		return http.StatusUnauthorized
	case errors.Is(err, automation.ErrConfiguration), errors.Is(err, automation.ErrUnsupportedAction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, automation.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, automation.ErrServiceRequest):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": message}; 500s hide the message unless debug is set
func writeError(w http.ResponseWriter, err error, debug bool) {
	status := statusFor(err)
	body := map[string]any{"error": err.Error()}
	if status == http.StatusInternalServerError && !debug {
		body["error"] = "Internal server error"
	}
	var rl *automation.RateLimitError
	if errors.As(err, &rl) {
		body["limit"] = rl.Limit
	}
	var sr *automation.ServiceRequestError
	if errors.As(err, &sr) {
		body["status"] = sr.Status
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
