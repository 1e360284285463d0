package automation

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

/* Driver is the capability contract every external service satisfies
 * Shared behavior (HTTP calls, logging, HMAC checks) is composed from Toolkit,
 * never inherited
 */
type Driver interface {
	// Name is the factory kind, e.g. "slack"
	Name() string

	// Send performs the outbound action. Errors are returned to the caller unmodified:
	// ConfigurationError for missing credentials, ServiceRequestError for vendor failures.
	Send(ctx context.Context, data map[string]any, opts Options) (any, error)

	// HandleWebhook turns a verified inbound request into an acknowledgment payload
	HandleWebhook(ctx context.Context, req *Request) (any, error)

	// VerifyWebhook checks authenticity; drivers without a secret return true
	VerifyWebhook(req *Request) bool

	SupportsIncomingWebhooks() bool
	SupportsOutgoingActions() bool

	AvailableActions() map[string]string
	SupportedEvents() []string

	Config() Config
	SetConfig(partial Config) error
}

// Options are per-call send options (endpoint, method, headers, vendor specific keys)
type Options map[string]any

// String returns the string option or fallback
func (o Options) String(key, fallback string) string {
	if s, ok := o[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// Factory builds a driver from its merged config bag
type Factory func(cfg Config, kit Toolkit) (Driver, error)

// HTTPCall describes one outbound vendor request
type HTTPCall struct {
	Method  string
	URL     string
	Header  http.Header
	JSON    any
	Form    map[string]string
	Body    []byte
	Query   map[string]string
	User    string
	Pass    string
	Timeout time.Duration
}

// HTTPExecutor runs vendor calls with a bounded timeout. Non-2xx responses
// come back as *ServiceRequestError; decoded JSON (or the raw text) otherwise.
type HTTPExecutor interface {
	Do(ctx context.Context, call HTTPCall) (any, error)
	Client() *http.Client
}

// Toolkit is the set of shared helpers injected into every factory
type Toolkit struct {
	HTTP   HTTPExecutor
	Logger zerolog.Logger
	Now    func() time.Time
}

// ForDriver returns a copy of the toolkit with a driver tagged logger
func (k Toolkit) ForDriver(name string) Toolkit {
	k.Logger = k.Logger.With().Str("driver", name).Logger()
	if k.Now == nil {
		k.Now = time.Now
	}
	return k
}

// Capabilities is a helper for drivers declaring static metadata
type Capabilities struct {
	Inbound  bool
	Outbound bool
	Actions  map[string]string
	Events   []string
}

func (c Capabilities) SupportsIncomingWebhooks() bool { return c.Inbound }
func (c Capabilities) SupportsOutgoingActions() bool  { return c.Outbound }

func (c Capabilities) AvailableActions() map[string]string {
	out := make(map[string]string, len(c.Actions))
	for k, v := range c.Actions {
		out[k] = v
	}
	return out
}

func (c Capabilities) SupportedEvents() []string {
	return append([]string(nil), c.Events...)
}
