package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/executor"
	"github.com/marcelsud/automation-connect/automation/signature"
	"github.com/marcelsud/automation-connect/drivers/slack"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDriver(t *testing.T, cfg automation.Config, now time.Time) automation.Driver {
	t.Helper()
	kit := automation.Toolkit{
		HTTP:   executor.New(time.Second, zerolog.Nop()),
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return now },
	}
	d, err := slack.New(cfg, kit)
	require.NoError(t, err)
	return d
}

func TestDriver_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("success - incoming webhook", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		d := newDriver(t, automation.Config{"webhook_url": srv.URL}, time.Now())
		resp, err := d.Send(ctx, map[string]any{"message": "hello"}, nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
		assert.Equal(t, map[string]any{"text": "hello"}, got)
	})

	t.Run("success - bot token with endpoint option", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat.postEphemeral", r.URL.Path)
			assert.Equal(t, "Bearer xoxb-1", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		d := newDriver(t, automation.Config{"bot_token": "xoxb-1", "api_base_url": srv.URL}, time.Now())
		_, err := d.Send(ctx, map[string]any{"text": "hi"}, automation.Options{"endpoint": "chat.postEphemeral", "user": "U1"})

		require.NoError(t, err)
		assert.Equal(t, "#general", got["channel"])
		assert.Equal(t, "U1", got["user"])
		assert.NotContains(t, got, "endpoint")
	})

	t.Run("error - vendor failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("invalid_token"))
		}))
		defer srv.Close()

		d := newDriver(t, automation.Config{"webhook_url": srv.URL}, time.Now())
		_, err := d.Send(ctx, map[string]any{"text": "hi"}, nil)

		var sre *automation.ServiceRequestError
		require.ErrorAs(t, err, &sre)
		assert.Equal(t, http.StatusForbidden, sre.Status)
		assert.Equal(t, "invalid_token", sre.Body)
	})

	t.Run("error - nothing configured", func(t *testing.T) {
		d := newDriver(t, automation.Config{}, time.Now())
		_, err := d.Send(ctx, map[string]any{"text": "hi"}, nil)
		assert.ErrorIs(t, err, automation.ErrConfiguration)
	})
}

func request(body string, header http.Header) *automation.Request {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return &automation.Request{Service: "slack", Header: header, Body: []byte(body)}
}

func TestDriver_HandleWebhook(t *testing.T) {
	ctx := context.Background()
	d := newDriver(t, automation.Config{}, time.Now())

	cases := []struct {
		name string
		body string
		want map[string]any
	}{
		{"url verification", `{"type":"url_verification","challenge":"abc"}`, map[string]any{"challenge": "abc"}},
		{"event callback", `{"type":"event_callback","event":{"type":"message"}}`, map[string]any{"status": "event_processed"}},
		{"slash command", `{"command":"/deploy","text":"prod"}`, map[string]any{"response_type": "ephemeral", "text": "Command received and processed!"}},
		{"interaction", `{"payload":"{\"type\":\"block_actions\"}"}`, map[string]any{"status": "interaction_processed"}},
		{"other", `{"foo":"bar"}`, map[string]any{"status": "received"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := d.HandleWebhook(ctx, request(tc.body, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp)
		})
	}

	t.Run("error - malformed interaction payload", func(t *testing.T) {
		_, err := d.HandleWebhook(ctx, request(`{"payload":"{not json"}`, nil))
		assert.Error(t, err)
	})
}

func TestDriver_VerifyWebhook(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := `{"type":"event_callback"}`
	sign := func(ts time.Time) http.Header {
		stamp := strconv.FormatInt(ts.Unix(), 10)
		sig, err := signature.Slack.Sign("shh", stamp, []byte(body))
		require.NoError(t, err)
		return http.Header{slack.HeaderTimestamp: {stamp}, slack.HeaderSignature: {sig}}
	}
	d := newDriver(t, automation.Config{"signing_secret": "shh"}, now)

	assert.True(t, d.VerifyWebhook(request(body, sign(now))))
	assert.False(t, d.VerifyWebhook(request(body, sign(now.Add(-6*time.Minute)))), "stale timestamp")
	assert.False(t, d.VerifyWebhook(request(body+" ", sign(now))), "mutated body")
	assert.False(t, d.VerifyWebhook(request(body, nil)), "missing headers")
	assert.True(t, newDriver(t, automation.Config{}, now).VerifyWebhook(request(body, nil)), "no secret")
}
