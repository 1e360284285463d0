// Package hook holds the generic automation platform drivers: Zapier and Make
// catch hooks, and n8n webhooks plus its workflow API
package hook

import (
	"context"
	"net/http"
	"time"

	"github.com/marcelsud/automation-connect/automation"
)

const (
	Zapier = "zapier"
	Make   = "make"
	N8n    = "n8n"

	UserAgent = "Automation-Connect/1.0"
)

type Config struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// Driver posts data as JSON to a catch hook URL
type Driver struct {
	*automation.Base[Config]
	header http.Header
}

func NewZapier(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	return newDriver(Zapier, cfg, kit, http.Header{"User-Agent": {UserAgent}}, automation.Capabilities{
		Inbound:  true,
		Outbound: true,
		Actions:  map[string]string{"send": "Send data to Zapier webhook"},
		Events:   []string{"webhook", "trigger", "action"},
	})
}

func NewMake(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	return newDriver(Make, cfg, kit, nil, automation.Capabilities{
		Inbound:  true,
		Outbound: true,
		Actions:  map[string]string{"send": "Send data to Make webhook"},
		Events:   []string{"webhook", "scenario"},
	})
}

func newDriver(name string, cfg automation.Config, kit automation.Toolkit, header http.Header, caps automation.Capabilities) (automation.Driver, error) {
	base, err := automation.NewBase[Config](name, cfg, kit, caps)
	if err != nil {
		return nil, err
	}
	return &Driver{Base: base, header: header}, nil
}

func (d *Driver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	url := d.Typed().WebhookURL
	if url == "" {
		url = opts.String("webhook_url", "")
	}
	if url == "" {
		return nil, automation.MissingConfig(d.Name(), "webhook_url")
	}
	return d.Do(ctx, automation.HTTPCall{URL: url, Header: d.header.Clone(), JSON: data})
}

// HandleWebhook echoes the received payload back with a timestamp
func (d *Driver) HandleWebhook(_ context.Context, req *automation.Request) (any, error) {
	return received(req.Payload(), d.Now()), nil
}

func received(data map[string]any, now time.Time) map[string]any {
	return map[string]any{
		"status":    "received",
		"data":      data,
		"timestamp": now.UTC().Format(time.RFC3339Nano),
	}
}
