// Package whatsapp sends through the WhatsApp Cloud API and receives its
// message and status notifications
package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/signature"
	"github.com/marcelsud/automation-connect/drivers/format"
)

const (
	Name = "whatsapp"

	DefaultAPIBaseURL = "https://graph.facebook.com/v18.0"
	HeaderSignature   = "X-Hub-Signature-256"
)

type Config struct {
	AccessToken   string `mapstructure:"access_token"`
	PhoneNumberID string `mapstructure:"phone_number_id"`
	AppSecret     string `mapstructure:"app_secret"`
	APIBaseURL    string `mapstructure:"api_base_url"`
}

type Driver struct {
	*automation.Base[Config]
}

func New(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	base, err := automation.NewBase[Config](Name, cfg, kit, automation.Capabilities{
		Inbound:  true,
		Outbound: true,
		Actions:  map[string]string{"send": "Send WhatsApp message"},
		Events:   []string{"message", "status"},
	})
	if err != nil {
		return nil, err
	}
	return &Driver{Base: base}, nil
}

func (d *Driver) Send(ctx context.Context, data map[string]any, _ automation.Options) (any, error) {
	cfg := d.Typed()
	if cfg.AccessToken == "" {
		return nil, automation.MissingConfig(Name, "access_token")
	}
	if cfg.PhoneNumberID == "" {
		return nil, automation.MissingConfig(Name, "phone_number_id")
	}
	to, ok := data["to"]
	if !ok || to == nil || to == "" {
		return nil, fmt.Errorf("whatsapp: recipient 'to' is required")
	}
	base := cfg.APIBaseURL
	if base == "" {
		base = DefaultAPIBaseURL
	}
	return d.Do(ctx, automation.HTTPCall{
		URL:    fmt.Sprintf("%s/%s/messages", strings.TrimRight(base, "/"), cfg.PhoneNumberID),
		Header: http.Header{"Authorization": {"Bearer " + cfg.AccessToken}},
		JSON: map[string]any{
			"messaging_product": "whatsapp",
			"to":                to,
			"type":              format.Text(data, "text", "type"),
			"text":              map[string]any{"body": format.Text(data, format.DefaultMessage, "message", "text")},
		},
	})
}

// HandleWebhook collects message ids and status updates from every entry change
func (d *Driver) HandleWebhook(_ context.Context, req *automation.Request) (any, error) {
	var messages, statuses []any
	entries, _ := req.Payload()["entry"].([]any)
	for _, e := range entries {
		entry, _ := e.(map[string]any)
		changes, _ := entry["changes"].([]any)
		for _, c := range changes {
			change, _ := c.(map[string]any)
			value, _ := change["value"].(map[string]any)
			for _, m := range list(value["messages"]) {
				messages = append(messages, m["id"])
			}
			for _, s := range list(value["statuses"]) {
				statuses = append(statuses, map[string]any{"id": s["id"], "status": s["status"]})
			}
		}
	}
	d.Kit.Logger.Info().Int("messages", len(messages)).Int("statuses", len(statuses)).Msg("whatsapp notification received")
	return map[string]any{"status": "received", "messages": messages, "statuses": statuses}, nil
}

// VerifyWebhook checks the sha256= prefixed app secret signature
func (d *Driver) VerifyWebhook(req *automation.Request) bool {
	return signature.VerifyHMAC(signature.SHA256, d.Typed().AppSecret, req.Body, req.HeaderValue(HeaderSignature))
}

func list(v any) []map[string]any {
	items, _ := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
