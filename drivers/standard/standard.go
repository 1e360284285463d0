// Package standard sends and receives Standard Webhooks
// (https://www.standardwebhooks.com) signed with whsec_ secrets
package standard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/signature"
)

const (
	Name = "standard"

	DefaultType = "automation.message"
)

type Config struct {
	Secret string `mapstructure:"secret"`
	// PreviousSecrets keep verifying during a rotation
	PreviousSecrets []string      `mapstructure:"previous_secrets"`
	TargetURL       string        `mapstructure:"target_url"`
	EventTypes      []string      `mapstructure:"event_types"`
	DefaultType     string        `mapstructure:"default_type"`
	Tolerance       time.Duration `mapstructure:"tolerance"`
}

type Driver struct {
	*automation.Base[Config]
}

func New(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	base, err := automation.NewBase[Config](Name, cfg, kit, automation.Capabilities{
		Inbound:  true,
		Outbound: true,
		Actions:  map[string]string{"send": "Send a signed Standard Webhooks event"},
	})
	if err != nil {
		return nil, err
	}
	typed := base.Typed()
	if _, err := secrets(typed); err != nil {
		return nil, err
	}
	for _, et := range typed.EventTypes {
		if err := ValidateEventType(et); err != nil {
			return nil, fmt.Errorf("standard event_types: %w", err)
		}
	}
	base.Capabilities.Events = []string{"*"}
	if len(typed.EventTypes) > 0 {
		base.Capabilities.Events = typed.EventTypes
	}
	return &Driver{Base: base}, nil
}

func secrets(cfg Config) ([]signature.Secret, error) {
	var out []signature.Secret
	for _, raw := range append([]string{cfg.Secret}, cfg.PreviousSecrets...) {
		if raw == "" {
			continue
		}
		s, err := signature.ParseSecret(raw)
		if err != nil {
			return nil, fmt.Errorf("standard secret: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

/* Send wraps data in a {type, timestamp, data} envelope and POSTs it signed to
 * the target URL. Options: "type", "target_url", "message_id".
 */
func (d *Driver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	target := opts.String("target_url", cfg.TargetURL)
	if target == "" {
		return nil, automation.MissingConfig(Name, "target_url")
	}
	if cfg.Secret == "" {
		return nil, automation.MissingConfig(Name, "secret")
	}
	secret, err := signature.ParseSecret(cfg.Secret)
	if err != nil {
		return nil, err
	}

	defaultType := cfg.DefaultType
	if defaultType == "" {
		defaultType = DefaultType
	}
	now := d.Now()
	payload, err := NewPayload(opts.String("type", defaultType), data, now)
	if err != nil {
		return nil, err
	}
	body, err := payload.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	msgID := opts.String("message_id", "msg_"+uuid.NewString())
	header, err := signature.Headers(secret, msgID, now, body)
	if err != nil {
		return nil, err
	}
	header.Set("Content-Type", "application/json")
	return d.Do(ctx, automation.HTTPCall{Method: http.MethodPost, URL: target, Header: header, Body: body})
}

// VerifyWebhook checks the webhook-id/-timestamp/-signature headers against the
// current and previous secrets
func (d *Driver) VerifyWebhook(req *automation.Request) bool {
	cfg := d.Typed()
	keys, err := secrets(cfg)
	if err != nil {
		return false
	}
	if len(keys) == 0 {
		return true
	}
	tolerance := cfg.Tolerance
	if tolerance <= 0 {
		tolerance = signature.DefaultTolerance
	}
	return signature.VerifyHeaders(keys, req.Header, req.Body, d.Now(), tolerance) == nil
}

// HandleWebhook validates the envelope and applies the event_types filter
func (d *Driver) HandleWebhook(_ context.Context, req *automation.Request) (any, error) {
	payload, err := ParsePayload(req.Body)
	if err != nil {
		return nil, err
	}
	if !payload.Matches(d.Typed().EventTypes) {
		d.Kit.Logger.Debug().Str("type", payload.Type).Msg("standard webhook filtered out")
		return map[string]any{"status": "ignored", "type": payload.Type}, nil
	}
	d.Kit.Logger.Info().Str("type", payload.Type).Str("webhook_id", req.HeaderValue(signature.HeaderID)).Msg("standard webhook received")
	return map[string]any{
		"status":     "received",
		"type":       payload.Type,
		"webhook_id": req.HeaderValue(signature.HeaderID),
	}, nil
}
