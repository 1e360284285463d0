// Package airtable creates records in an Airtable base
package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/drivers/format"
)

const (
	Name = "airtable"

	DefaultBaseURL = "https://api.airtable.com/v0"
)

type Config struct {
	APIKey       string `mapstructure:"api_key"`
	BaseID       string `mapstructure:"base_id"`
	DefaultTable string `mapstructure:"default_table"`
	// TitleCaseFields renames snake_case keys to "Title Case" column names
	TitleCaseFields bool   `mapstructure:"title_case_fields"`
	BaseURL         string `mapstructure:"base_url"`
}

type Driver struct {
	*automation.Base[Config]
}

func New(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	if _, ok := cfg["title_case_fields"]; !ok {
		cfg = cfg.Merge(automation.Config{"title_case_fields": true})
	}
	base, err := automation.NewBase[Config](Name, cfg, kit, automation.Capabilities{
		Outbound: true,
		Actions: map[string]string{
			"create": "Create record",
			"update": "Update record",
			"delete": "Delete record",
			"list":   "List records",
		},
		Events: []string{"record_created", "record_updated"},
	})
	if err != nil {
		return nil, err
	}
	return &Driver{Base: base}, nil
}

// Send creates one record in the "table" option or the default table
func (d *Driver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	if cfg.APIKey == "" {
		return nil, automation.MissingConfig(Name, "api_key")
	}
	if cfg.BaseID == "" {
		return nil, automation.MissingConfig(Name, "base_id")
	}
	table := opts.String("table", cfg.DefaultTable)
	if table == "" {
		return nil, automation.MissingConfig(Name, "default_table")
	}

	fields := data
	if cfg.TitleCaseFields {
		fields = format.TitleCaseFields(data)
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return d.Do(ctx, automation.HTTPCall{
		URL:    fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), url.PathEscape(cfg.BaseID), url.PathEscape(table)),
		Header: http.Header{"Authorization": {"Bearer " + cfg.APIKey}},
		JSON:   map[string]any{"records": []map[string]any{{"fields": fields}}},
	})
}
