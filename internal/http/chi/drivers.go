package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/dispatch"
	"github.com/marcelsud/automation-connect/metrics"
)

// Catalog is the introspection side of the driver manager
type Catalog interface {
	Drivers() []string
	DefaultDriver() string
	Describe(ctx context.Context, name string) (automation.Descriptor, error)
}

// Sender dispatches outbound sends; *dispatch.Client satisfies it
type Sender interface {
	Dispatch(ctx context.Context, driver string, data map[string]any, opts automation.Options) (dispatch.Result, error)
}

// sendRequest represents the body of POST /v1/drivers/{name}/send
type sendRequest struct {
	Data    map[string]any `json:"data"`
	Options map[string]any `json:"options"`
}

type sendResponse struct {
	Success  bool   `json:"success"`
	Driver   string `json:"driver"`
	Queued   bool   `json:"queued"`
	JobID    string `json:"job_id,omitempty"`
	Response any    `json:"response,omitempty"`
}

type driversResponse struct {
	Default string                  `json:"default"`
	Drivers []automation.Descriptor `json:"drivers"`
	Errors  map[string]string       `json:"errors,omitempty"`
}

// getDrivers handles GET /v1/drivers; entries that fail to build are reported under errors
func getDrivers(catalog Catalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := driversResponse{Default: catalog.DefaultDriver(), Drivers: []automation.Descriptor{}}
		for _, name := range catalog.Drivers() {
			d, err := catalog.Describe(r.Context(), name)
			if err != nil {
				if resp.Errors == nil {
					resp.Errors = map[string]string{}
				}
				resp.Errors[name] = err.Error()
				continue
			}
			resp.Drivers = append(resp.Drivers, d)
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// getDriver handles GET /v1/drivers/{name}
func getDriver(catalog Catalog, debug bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := catalog.Describe(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, err, debug)
			return
		}
		writeJSON(w, http.StatusOK, d)
	})
}

// postSend handles POST /v1/drivers/{name}/send
func postSend(sender Sender, debug bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
			return
		}
		defer r.Body.Close()

		res, err := sender.Dispatch(r.Context(), name, req.Data, automation.Options(req.Options))
		if err != nil {
			writeError(w, err, debug)
			return
		}
		status := http.StatusOK
		if res.Queued {
			status = http.StatusAccepted
		}
		writeJSON(w, status, sendResponse{
			Success:  true,
			Driver:   name,
			Queued:   res.Queued,
			JobID:    res.JobID,
			Response: res.Response,
		})
	})
}

// getStats handles GET /v1/webhooks/stats
func getStats(collector metrics.Collector, debug bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, err := collector.Collect(r.Context())
		if err != nil {
			writeError(w, err, debug)
			return
		}
		writeJSON(w, http.StatusOK, m)
	})
}
