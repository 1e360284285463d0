package format_test

import (
	"testing"

	"github.com/marcelsud/automation-connect/drivers/format"
	"github.com/stretchr/testify/assert"
)

func TestSlack(t *testing.T) {
	assert.Equal(t, map[string]any{"text": "hi", "channel": "#x"}, format.Slack(map[string]any{"text": "hi", "channel": "#x"}))
	assert.Equal(t, map[string]any{"text": "hello"}, format.Slack(map[string]any{"message": "hello"}))

	out := format.Slack(map[string]any{"blocks": []any{"b"}})
	assert.Equal(t, format.DefaultMessage, out["text"])
	assert.Equal(t, []any{"b"}, out["blocks"])
	assert.NotContains(t, out, "attachments")
}

func TestSlackAPI(t *testing.T) {
	out := format.SlackAPI(map[string]any{"message": "deploy done"}, map[string]any{"thread_ts": "1.2"}, "#general")
	assert.Equal(t, "#general", out["channel"])
	assert.Equal(t, "deploy done", out["text"])
	assert.Equal(t, "1.2", out["thread_ts"])
}

func TestDiscord(t *testing.T) {
	out := format.Discord(map[string]any{"text": "hi", "embeds": []any{}}, "Bot")
	assert.Equal(t, "hi", out["content"])
	assert.Equal(t, "Bot", out["username"])
	assert.Contains(t, out, "embeds")
}

func TestTelegram(t *testing.T) {
	out := format.Telegram(map[string]any{"message": "<b>hi</b>"}, "42")
	assert.Equal(t, map[string]any{"chat_id": "42", "text": "<b>hi</b>", "parse_mode": "HTML"}, out)

	out = format.Telegram(map[string]any{"chat_id": 7, "text": "x", "parse_mode": "MarkdownV2"}, "42")
	assert.Equal(t, 7, out["chat_id"])
	assert.Equal(t, "MarkdownV2", out["parse_mode"])
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "First Name", format.TitleCase("first_name"))
	assert.Equal(t, "Email", format.TitleCase("email"))
	assert.Equal(t, "Order Total Usd", format.TitleCase("order-total usd"))
	assert.Equal(t, map[string]any{"Last Name": "Doe"}, format.TitleCaseFields(map[string]any{"last_name": "Doe"}))
}

func TestProperties(t *testing.T) {
	out := format.Properties(map[string]any{"email": "a@b.c", "age": 30, "gone": nil})
	assert.Equal(t, map[string]string{"email": "a@b.c", "age": "30"}, out)
}

func TestRow(t *testing.T) {
	data := map[string]any{"b": 2, "a": "x", "c": nil}
	assert.Equal(t, []any{"x", 2, ""}, format.Row(data, nil))
	assert.Equal(t, []any{2, "", "x"}, format.Row(data, []string{"b", "missing", "a"}))
}
