// Package hubspot creates CRM v3 objects
package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/drivers/format"
	"github.com/marcelsud/automation-connect/drivers/oauth"
)

const (
	Name = "hubspot"

	DefaultBaseURL  = "https://api.hubapi.com"
	DefaultTokenURL = "https://api.hubapi.com/oauth/v1/token"
	DefaultObject   = "contacts"
	HeaderSignature = "X-HubSpot-Signature"
)

type Config struct {
	oauth.Credentials `mapstructure:",squash"`
	BaseURL           string `mapstructure:"base_url"`
}

type Driver struct {
	*automation.Base[Config]
	tokens *oauth.Source
}

func New(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	if _, ok := cfg[automation.KeySignatureHeader]; !ok {
		cfg = cfg.Merge(automation.Config{automation.KeySignatureHeader: HeaderSignature})
	}
	base, err := automation.NewBase[Config](Name, cfg, kit, automation.Capabilities{
		Inbound:  true,
		Outbound: true,
		Actions: map[string]string{
			"createContact": "Create contact",
			"updateContact": "Update contact",
			"createDeal":    "Create deal",
		},
		Events: []string{"contact.creation", "deal.creation"},
	})
	if err != nil {
		return nil, err
	}
	var client *http.Client
	if kit.HTTP != nil {
		client = kit.HTTP.Client()
	}
	return &Driver{Base: base, tokens: oauth.NewSource(client, DefaultTokenURL)}, nil
}

// Send creates an object of the "endpoint" option type (contacts by default)
// with data as its properties
func (d *Driver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	ts, err := d.tokens.TokenSource(cfg.Credentials)
	if err != nil {
		return nil, automation.MissingConfig(Name, "access_token")
	}
	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing hubspot token: %w", err)
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	object := strings.Trim(opts.String("endpoint", DefaultObject), "/")
	return d.Do(ctx, automation.HTTPCall{
		URL:    strings.TrimRight(base, "/") + "/crm/v3/objects/" + object,
		Header: http.Header{"Authorization": {"Bearer " + token.AccessToken}},
		JSON:   map[string]any{"properties": format.Properties(data)},
	})
}
