// Package discord posts to Discord channel webhooks
package discord

import (
	"context"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/drivers/format"
)

const (
	Name            = "discord"
	DefaultUsername = "Automation Connect"
)

type Config struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Username   string `mapstructure:"username"`
}

type Driver struct {
	*automation.Base[Config]
}

func New(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	base, err := automation.NewBase[Config](Name, cfg, kit, automation.Capabilities{
		Inbound:  true,
		Outbound: true,
		Actions:  map[string]string{"send": "Send Discord message"},
		Events:   []string{"message", "member_join"},
	})
	if err != nil {
		return nil, err
	}
	return &Driver{Base: base}, nil
}

func (d *Driver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	url := cfg.WebhookURL
	if url == "" {
		url = opts.String("webhook_url", "")
	}
	if url == "" {
		return nil, automation.MissingConfig(Name, "webhook_url")
	}
	username := cfg.Username
	if username == "" {
		username = DefaultUsername
	}
	return d.Do(ctx, automation.HTTPCall{URL: url, JSON: format.Discord(data, username)})
}
