package google

import (
	"context"
	"fmt"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/drivers/format"
	"github.com/marcelsud/automation-connect/drivers/oauth"
	"google.golang.org/api/sheets/v4"
)

const DefaultSheet = "Sheet1"

type SheetsConfig struct {
	oauth.Credentials `mapstructure:",squash"`
	Pacing            `mapstructure:",squash"`
	SpreadsheetID     string   `mapstructure:"spreadsheet_id"`
	Sheet             string   `mapstructure:"sheet"`
	Columns           []string `mapstructure:"columns"`
	Endpoint          string   `mapstructure:"endpoint"`
}

type SheetsDriver struct {
	*automation.Base[SheetsConfig]
	tokens *oauth.Source
	pacer  *pacer
}

func NewSheets(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	base, err := automation.NewBase[SheetsConfig](Sheets, cfg, kit, automation.Capabilities{
		Outbound: true,
		Actions: map[string]string{
			"appendRow":   "Append row to sheet",
			"updateSheet": "Update sheet data",
			"createSheet": "Create new sheet",
		},
		Events: []string{"sheet_updated"},
	})
	if err != nil {
		return nil, err
	}
	return &SheetsDriver{Base: base, tokens: newTokens(kit), pacer: newPacer(base.Typed().Pacing)}, nil
}

/* Send appends one row. data["row"] is used verbatim when it is a list,
 * otherwise the row follows the configured columns (sorted keys without them).
 * The "range" and "spreadsheet_id" options override the configured target.
 */
func (d *SheetsDriver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	spreadsheet := opts.String("spreadsheet_id", cfg.SpreadsheetID)
	if spreadsheet == "" {
		return nil, automation.MissingConfig(Sheets, "spreadsheet_id")
	}
	sheet := cfg.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	target := opts.String("range", sheet)

	clientOpts, err := clientOptions(ctx, d.tokens, Sheets, cfg.Credentials, cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	row, ok := data["row"].([]any)
	if !ok {
		row = format.Row(data, cfg.Columns)
	}
	if err := d.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for sheets quota: %w", err)
	}
	resp, err := svc.Spreadsheets.Values.
		Append(spreadsheet, target, &sheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		d.pacer.Observe(err)
		return nil, vendorError(err)
	}

	out := map[string]any{"spreadsheet_id": resp.SpreadsheetId, "table_range": resp.TableRange}
	if resp.Updates != nil {
		out["updated_range"] = resp.Updates.UpdatedRange
		out["updated_rows"] = resp.Updates.UpdatedRows
	}
	return out, nil
}
