package chi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/automation-connect/metrics"
	"github.com/rs/zerolog"
)

const (
	DefaultPrefix       = "webhooks"
	DefaultMaxBodyBytes = 1 << 20
	DefaultTimeout      = 30 * time.Second
)

// Deps are the collaborators the router serves
type Deps struct {
	Pipeline Processor
	Catalog  Catalog
	Sender   Sender
	Stats    metrics.Collector
	// Metrics serves /metrics when set
	Metrics      http.Handler
	Logger       zerolog.Logger
	Prefix       string
	MaxBodyBytes int64
	Timeout      time.Duration
	Debug        bool
}

// Handlers sets up the inbound webhook routes and the management API
func Handlers(d Deps) *chi.Mux {
	prefix := strings.Trim(d.Prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.Timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	if d.Pipeline != nil {
		hook := postWebhook(d.Pipeline, d.MaxBodyBytes, d.Logger)
		r.Method(http.MethodPost, "/"+prefix+"/{service}", hook)
		r.Method(http.MethodPost, "/"+prefix+"/{service}/{event}", hook)
	}

	r.Route("/v1", func(r chi.Router) {
		if d.Catalog != nil {
			r.Method(http.MethodGet, "/drivers", getDrivers(d.Catalog))
			r.Method(http.MethodGet, "/drivers/{name}", getDriver(d.Catalog, d.Debug))
		}
		if d.Sender != nil {
			r.Method(http.MethodPost, "/drivers/{name}/send", postSend(d.Sender, d.Debug))
		}
		if d.Stats != nil {
			r.Method(http.MethodGet, "/webhooks/stats", getStats(d.Stats, d.Debug))
		}
	})

	return r
}
