// Package openai calls the OpenAI REST API; it has no inbound side
package openai

import (
	"context"
	"maps"
	"net/http"
	"strings"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/drivers/format"
)

const (
	Name = "openai"

	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultEndpoint = "chat/completions"
	DefaultModel    = "gpt-4"
)

type Config struct {
	APIKey       string `mapstructure:"api_key"`
	Organization string `mapstructure:"organization"`
	Model        string `mapstructure:"model"`
	BaseURL      string `mapstructure:"base_url"`
}

type Driver struct {
	*automation.Base[Config]
}

func New(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	base, err := automation.NewBase[Config](Name, cfg, kit, automation.Capabilities{
		Outbound: true,
		Actions: map[string]string{
			"chat":       "Chat completion",
			"completion": "Text completion",
			"embedding":  "Generate embedding",
		},
		Events: []string{"completion"},
	})
	if err != nil {
		return nil, err
	}
	return &Driver{Base: base}, nil
}

// Send posts to the "endpoint" option (chat/completions by default). A prompt or
// message becomes the single user message; any data key overrides the defaults.
func (d *Driver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	if cfg.APIKey == "" {
		return nil, automation.MissingConfig(Name, "api_key")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	body := map[string]any{
		"model": model,
		"messages": []map[string]any{
			{"role": "user", "content": format.Text(data, "Hello", "prompt", "message")},
		},
	}
	maps.Copy(body, data)
	delete(body, "prompt")

	header := http.Header{"Authorization": {"Bearer " + cfg.APIKey}}
	if cfg.Organization != "" {
		header.Set("OpenAI-Organization", cfg.Organization)
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return d.Do(ctx, automation.HTTPCall{
		URL:    strings.TrimRight(base, "/") + "/" + strings.TrimLeft(opts.String("endpoint", DefaultEndpoint), "/"),
		Header: header,
		JSON:   body,
	})
}
