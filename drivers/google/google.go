// Package google holds the Google Sheets and Google Drive drivers. Both
// authorize through an OAuth2 refresh token and call the generated API clients.
package google

import (
	"context"
	"errors"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/drivers/oauth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	Sheets = "google_sheets"
	Drive  = "google_drive"

	DefaultTokenURL = "https://oauth2.googleapis.com/token"
)

// clientOptions authorizes calls with creds; endpoint overrides the API base URL
func clientOptions(ctx context.Context, tokens *oauth.Source, driver string, creds oauth.Credentials, endpoint string) ([]option.ClientOption, error) {
	client, err := tokens.HTTPClient(ctx, creds)
	if errors.Is(err, oauth.ErrNoCredentials) {
		return nil, automation.MissingConfig(driver, "refresh_token")
	}
	if err != nil {
		return nil, err
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts, nil
}

// vendorError maps API errors onto ServiceRequestError so callers see one shape
func vendorError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := gerr.Message
		if body == "" {
			body = gerr.Body
		}
		return &automation.ServiceRequestError{Status: gerr.Code, Body: body}
	}
	return err
}

func newTokens(kit automation.Toolkit) *oauth.Source {
	if kit.HTTP == nil {
		return oauth.NewSource(nil, DefaultTokenURL)
	}
	return oauth.NewSource(kit.HTTP.Client(), DefaultTokenURL)
}
