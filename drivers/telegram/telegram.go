// Package telegram talks to the Bot API
package telegram

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/drivers/format"
)

const (
	Name = "telegram"

	DefaultAPIBaseURL = "https://api.telegram.org"
	DefaultMethod     = "sendMessage"
	HeaderSecretToken = "X-Telegram-Bot-Api-Secret-Token"
)

type Config struct {
	BotToken      string `mapstructure:"bot_token"`
	DefaultChatID string `mapstructure:"default_chat_id"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	APIBaseURL    string `mapstructure:"api_base_url"`
}

type Driver struct {
	*automation.Base[Config]
}

func New(cfg automation.Config, kit automation.Toolkit) (automation.Driver, error) {
	base, err := automation.NewBase[Config](Name, cfg, kit, automation.Capabilities{
		Inbound:  true,
		Outbound: true,
		Actions: map[string]string{
			"send":         "Send message",
			"sendMessage":  "Send text message",
			"sendPhoto":    "Send photo",
			"sendDocument": "Send document",
			"sendLocation": "Send location",
		},
		Events: []string{"message", "edited_message", "callback_query", "inline_query", "chosen_inline_result"},
	})
	if err != nil {
		return nil, err
	}
	return &Driver{Base: base}, nil
}

// Send calls the Bot API method named by the "method" option; sendMessage
// bodies are built from data, other methods receive data as is
func (d *Driver) Send(ctx context.Context, data map[string]any, opts automation.Options) (any, error) {
	cfg := d.Typed()
	if cfg.BotToken == "" {
		return nil, automation.MissingConfig(Name, "bot_token")
	}
	method := opts.String("method", DefaultMethod)
	body := data
	if method == DefaultMethod {
		body = format.Telegram(data, cfg.DefaultChatID)
	}
	base := cfg.APIBaseURL
	if base == "" {
		base = DefaultAPIBaseURL
	}
	return d.Do(ctx, automation.HTTPCall{
		URL:  fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(base, "/"), cfg.BotToken, method),
		JSON: body,
	})
}

func (d *Driver) HandleWebhook(_ context.Context, req *automation.Request) (any, error) {
	update := req.Payload()
	if msg, ok := update["message"].(map[string]any); ok {
		from, _ := msg["from"].(map[string]any)
		d.Kit.Logger.Info().Any("message_id", msg["message_id"]).Any("from", from["id"]).Msg("telegram message received")
		return map[string]any{"status": "message_processed"}, nil
	}
	if cb, ok := update["callback_query"].(map[string]any); ok {
		d.Kit.Logger.Info().Any("callback_id", cb["id"]).Msg("telegram callback query received")
		return map[string]any{"status": "callback_processed"}, nil
	}
	return map[string]any{"status": "received"}, nil
}

// VerifyWebhook compares the secret token Telegram echoes on every update
func (d *Driver) VerifyWebhook(req *automation.Request) bool {
	secret := d.Typed().WebhookSecret
	if secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(req.HeaderValue(HeaderSecretToken)), []byte(secret)) == 1
}
