// Package slack sends through incoming webhooks or the Web API and
// receives Events API, slash command and interactivity requests
package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/signature"
	"github.com/marcelsud/automation-connect/drivers/format"
)

const (
	Name = "slack"

	DefaultAPIBaseURL = "https://slack.com/api"
	DefaultChannel    = "#general"
	DefaultEndpoint   = "chat.postMessage"

	HeaderSignature = "X-Slack-Signature"
	HeaderTimestamp = "X-Slack-Request-Timestamp"
)

type Config struct {
	WebhookURL     string `mapstructure:"webhook_url"`
	BotToken       string `mapstructure:"bot_token"`
	SigningSecret  string `mapstructure:"signing_secret"`
	DefaultChannel string `mapstructure:"default_channel"`
	APIBaseURL     string `mapstructure:"api_base_url"`
}

type Driver struct {
	*automation.Base[Config]
}

func New(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	base, err := automation.NewBase[Config](Name, cfg, kit, automation.Capabilities{
		Inbound:  true,
		Outbound: true,
		Actions: map[string]string{
			"send":           "Send message to Slack",
			"post_message":   "Post message to channel",
			"upload_file":    "Upload file to channel",
			"create_channel": "Create new channel",
			"invite_user":    "Invite user to channel",
		},
		Events: []string{
			"message", "app_mention", "channel_created", "channel_deleted",
			"member_joined_channel", "member_left_channel", "reaction_added",
			"reaction_removed", "file_shared", "slash_command", "interactive_component",
		},
	})
	if err != nil {
		return nil, err
	}
	return &Driver{Base: base}, nil
}

// Send prefers the incoming webhook URL and falls back to the bot token
func (d *Driver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	switch {
	case cfg.WebhookURL != "":
		return d.Do(ctx, automation.HTTPCall{URL: cfg.WebhookURL, JSON: format.Slack(data)})
	case cfg.BotToken != "":
		endpoint := opts.String("endpoint", DefaultEndpoint)
		extra := make(map[string]any, len(opts))
		for k, v := range opts {
			if k != "endpoint" {
				extra[k] = v
			}
		}
		channel := cfg.DefaultChannel
		if channel == "" {
			channel = DefaultChannel
		}
		base := cfg.APIBaseURL
		if base == "" {
			base = DefaultAPIBaseURL
		}
		return d.Do(ctx, automation.HTTPCall{
			URL:    strings.TrimRight(base, "/") + "/" + endpoint,
			Header: http.Header{"Authorization": {"Bearer " + cfg.BotToken}},
			JSON:   format.SlackAPI(data, extra, channel),
		})
	default:
		return nil, automation.MissingConfig(Name, "webhook_url")
	}
}

func (d *Driver) HandleWebhook(_ context.Context, req *automation.Request) (any, error) {
	payload := req.Payload()
	logger := d.Kit.Logger

	if challenge, ok := payload["challenge"]; ok {
		return map[string]any{"challenge": challenge}, nil
	}
	if event, ok := payload["event"].(map[string]any); ok {
		logger.Info().Any("event_type", event["type"]).Msg("slack event received")
		return map[string]any{"status": "event_processed"}, nil
	}
	if command, ok := payload["command"].(string); ok {
		logger.Info().Str("command", command).Any("user_id", payload["user_id"]).Msg("slack slash command received")
		return map[string]any{
			"response_type": "ephemeral",
			"text":          "Command received and processed!",
		}, nil
	}
	if raw, ok := payload["payload"].(string); ok {
		var interaction map[string]any
		if err := json.Unmarshal([]byte(raw), &interaction); err != nil {
			return nil, err
		}
		logger.Info().Any("type", interaction["type"]).Any("callback_id", interaction["callback_id"]).Msg("slack interaction received")
		return map[string]any{"status": "interaction_processed"}, nil
	}

	logger.Info().Msg("slack webhook received")
	return map[string]any{"status": "received"}, nil
}

// VerifyWebhook checks the v0 request signature and its 5 minute timestamp window
func (d *Driver) VerifyWebhook(req *automation.Request) bool {
	secret := d.Typed().SigningSecret
	err := signature.Slack.Verify(secret, req.HeaderValue(HeaderTimestamp), req.Body, req.HeaderValue(HeaderSignature), d.Now())
	return err == nil
}
