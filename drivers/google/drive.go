package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/drivers/format"
	"github.com/marcelsud/automation-connect/drivers/oauth"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	DefaultMimeType = "text/plain"
	FolderMimeType  = "application/vnd.google-apps.folder"
)

type DriveConfig struct {
	oauth.Credentials `mapstructure:",squash"`
	Pacing            `mapstructure:",squash"`
	FolderID          string `mapstructure:"folder_id"`
	Endpoint          string `mapstructure:"endpoint"`
}

type DriveDriver struct {
	*automation.Base[DriveConfig]
	tokens *oauth.Source
	pacer  *pacer
}

func NewDrive(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	base, err := automation.NewBase[DriveConfig](Drive, cfg, kit, automation.Capabilities{
		Outbound: true,
		Actions: map[string]string{
			"upload":       "Upload file",
			"createFolder": "Create folder",
			"share":        "Share file",
		},
		Events: []string{"file_created", "file_updated"},
	})
	if err != nil {
		return nil, err
	}
	return &DriveDriver{Base: base, tokens: newTokens(kit), pacer: newPacer(base.Typed().Pacing)}, nil
}

// Send creates a file named data["name"] in the configured folder. Text in
// data["content"] is uploaded as its body; without it only metadata is created.
func (d *DriveDriver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	name := format.Text(data, "", "name", "title")
	if name == "" {
		return nil, fmt.Errorf("google drive: file 'name' is required")
	}

	clientOpts, err := clientOptions(ctx, d.tokens, Drive, cfg.Credentials, cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	svc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}

	file := &drive.File{Name: name, MimeType: format.Text(data, DefaultMimeType, "mime_type")}
	if folder := opts.String("folder_id", cfg.FolderID); folder != "" {
		file.Parents = []string{folder}
	}
	call := svc.Files.Create(file).Fields("id", "name", "mimeType", "webViewLink").Context(ctx)
	if content := format.Text(data, "", "content"); content != "" && file.MimeType != FolderMimeType {
		call = call.Media(strings.NewReader(content), googleapi.ContentType(file.MimeType))
	}
	if err := d.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for drive quota: %w", err)
	}
	created, err := call.Do()
	if err != nil {
		d.pacer.Observe(err)
		return nil, vendorError(err)
	}
	return map[string]any{
		"id":            created.Id,
		"name":          created.Name,
		"mime_type":     created.MimeType,
		"web_view_link": created.WebViewLink,
	}, nil
}
