package connections_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marcelsud/automation-connect/connections"
	"github.com/marcelsud/automation-connect/drivers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
default: slack
rate_limiting:
  enabled: true
  default_limit: 60
  driver_limits:
    slack: 100
    telegram: 30
drivers:
  slack:
    webhook_url: ${TEST_SLACK_WEBHOOK_URL}
    signing_secret: ${TEST_SLACK_SIGNING_SECRET}
  telegram:
    bot_token: "123:abc"
    default_chat_id: 42
  alerts:
    driver: discord
    webhook_url: https://discord.example/hook
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "automation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	t.Run("success - valid connections file", func(t *testing.T) {
		t.Setenv("TEST_SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")
		t.Setenv("TEST_SLACK_SIGNING_SECRET", "shh")

		loader := connections.NewLoader(drivers.Known)
		require.NoError(t, loader.Load(writeFile(t, sample)))

		all := loader.List()
		require.Len(t, all, 3)
		assert.Equal(t, []string{"alerts", "slack", "telegram"}, []string{all[0].Name, all[1].Name, all[2].Name})

		slack, err := loader.Get("slack")
		require.NoError(t, err)
		assert.Equal(t, "slack", slack.Driver)
		assert.Equal(t, "https://hooks.slack.com/services/T/B/X", slack.Config["webhook_url"])
		assert.Equal(t, "shh", slack.Config["signing_secret"])

		alerts, err := loader.Get("alerts")
		require.NoError(t, err)
		assert.Equal(t, "discord", alerts.Driver)

		assert.Equal(t, "slack", loader.Default("telegram"))
		assert.True(t, loader.Policy().Enabled)
		assert.Equal(t, 100, loader.Policy().LimitFor("slack"))
		assert.Equal(t, 60, loader.Policy().LimitFor("alerts"))

		cfgs := loader.Configs()
		assert.Equal(t, 42, cfgs["telegram"]["default_chat_id"])
		assert.True(t, loader.Exists("telegram"))
		assert.False(t, loader.Exists("discord"))
	})

	t.Run("success - unset variables become empty values", func(t *testing.T) {
		t.Setenv("TEST_SLACK_WEBHOOK_URL", "")
		loader := connections.NewLoader(drivers.Known)
		require.NoError(t, loader.Load(writeFile(t, sample)))
		slack, err := loader.Get("slack")
		require.NoError(t, err)
		assert.Nil(t, slack.Config["webhook_url"])
	})

	t.Run("success - environment values are not parsed as YAML", func(t *testing.T) {
		t.Setenv("TEST_SLACK_SIGNING_SECRET", "s3cret #tail")
		t.Setenv("TEST_SLACK_WEBHOOK_URL", "https://hooks.example/a: b")
		t.Setenv("TEST_HOST", "n8n.internal")
		content := `
drivers:
  slack:
    webhook_url: ${TEST_SLACK_WEBHOOK_URL}
    signing_secret: ${TEST_SLACK_SIGNING_SECRET}
    bot_token: pa$$word
    channels: ["${TEST_HOST}", "$HOME"]
  n8n:
    base_url: https://${TEST_HOST}:5678/api
    api_key: ${TEST_UNSET_API_KEY}
    extra: "x-${TEST_UNSET_API_KEY}-y"
`
		loader := connections.NewLoader(drivers.Known)
		require.NoError(t, loader.Parse([]byte(content)))

		slack, err := loader.Get("slack")
		require.NoError(t, err)
		assert.Equal(t, "s3cret #tail", slack.Config["signing_secret"])
		assert.Equal(t, "https://hooks.example/a: b", slack.Config["webhook_url"])
		assert.Equal(t, "pa$$word", slack.Config["bot_token"])
		assert.Equal(t, []any{"n8n.internal", "$HOME"}, slack.Config["channels"])

		n8n, err := loader.Get("n8n")
		require.NoError(t, err)
		assert.Equal(t, "https://n8n.internal:5678/api", n8n.Config["base_url"])
		assert.Nil(t, n8n.Config["api_key"])
		assert.Equal(t, "x--y", n8n.Config["extra"])
	})

	t.Run("error - file not found", func(t *testing.T) {
		err := connections.NewLoader(nil).Load("nonexistent.yaml")
		assert.ErrorContains(t, err, "reading connections file")
	})

	t.Run("error - invalid YAML", func(t *testing.T) {
		err := connections.NewLoader(nil).Load(writeFile(t, `invalid yaml content: [[[`))
		assert.ErrorContains(t, err, "parsing connections YAML")
	})

	t.Run("error - not found", func(t *testing.T) {
		_, err := connections.NewLoader(nil).Get("missing")
		assert.ErrorContains(t, err, "connection not found")
	})
}

func TestLoader_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown driver",
			content: "drivers:\n  fax:\n    number: 1\n",
			wantErr: "unknown driver fax for connection fax",
		},
		{
			name:    "empty driver key",
			content: "drivers:\n  alerts:\n    driver: \"\"\n",
			wantErr: "driver cannot be empty for connection alerts",
		},
		{
			name:    "empty url",
			content: "drivers:\n  zapier:\n    webhook_url: \"\"\n",
			wantErr: "webhook_url cannot be empty for driver zapier",
		},
		{
			name:    "bad standard secret",
			content: "drivers:\n  standard:\n    secret: plain\n",
			wantErr: "invalid secret for driver standard",
		},
		{
			name:    "negative limit",
			content: "rate_limiting:\n  default_limit: -1\ndrivers:\n  slack: {}\n",
			wantErr: "default_limit cannot be negative",
		},
		{
			name:    "default not configured",
			content: "default: hubspot\ndrivers:\n  slack: {}\n",
			wantErr: "default connection hubspot is not configured",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := connections.NewLoader(drivers.Known).Parse([]byte(tc.content))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
