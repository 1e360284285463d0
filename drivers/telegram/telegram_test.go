package telegram_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/executor"
	"github.com/marcelsud/automation-connect/drivers/telegram"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDriver(t *testing.T, cfg automation.Config) automation.Driver {
	t.Helper()
	d, err := telegram.New(cfg, automation.Toolkit{HTTP: executor.New(time.Second, zerolog.Nop()), Logger: zerolog.Nop()})
	require.NoError(t, err)
	return d
}

func TestDriver_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("success - sendMessage defaults", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"ok":true,"result":{"message_id":9}}`))
		}))
		defer srv.Close()

		d := newDriver(t, automation.Config{"bot_token": "123:abc", "default_chat_id": "42", "api_base_url": srv.URL})
		resp, err := d.Send(ctx, map[string]any{"text": "hi"}, nil)

		require.NoError(t, err)
		assert.Equal(t, true, resp.(map[string]any)["ok"])
		assert.Equal(t, map[string]any{"chat_id": "42", "text": "hi", "parse_mode": "HTML"}, got)
	})

	t.Run("success - other methods pass data through", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/bot1/sendLocation", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		d := newDriver(t, automation.Config{"bot_token": "1", "api_base_url": srv.URL})
		_, err := d.Send(ctx, map[string]any{"chat_id": "42", "latitude": 1.5}, automation.Options{"method": "sendLocation"})

		require.NoError(t, err)
		assert.Equal(t, map[string]any{"chat_id": "42", "latitude": 1.5}, got)
	})

	t.Run("error - missing token", func(t *testing.T) {
		_, err := newDriver(t, automation.Config{}).Send(ctx, nil, nil)
		var cfgErr *automation.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "bot_token", cfgErr.Key)
	})
}

func TestDriver_HandleWebhook(t *testing.T) {
	d := newDriver(t, automation.Config{})
	ctx := context.Background()

	resp, err := d.HandleWebhook(ctx, &automation.Request{Body: []byte(`{"message":{"message_id":1,"from":{"id":5},"text":"hi"}}`)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "message_processed"}, resp)

	resp, err = d.HandleWebhook(ctx, &automation.Request{Body: []byte(`{"callback_query":{"id":"cb","data":"x"}}`)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "callback_processed"}, resp)

	resp, err = d.HandleWebhook(ctx, &automation.Request{Body: []byte(`{"inline_query":{}}`)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "received"}, resp)
}

func TestDriver_VerifyWebhook(t *testing.T) {
	d := newDriver(t, automation.Config{"webhook_secret": "tok"})
	assert.True(t, d.VerifyWebhook(&automation.Request{Header: http.Header{telegram.HeaderSecretToken: {"tok"}}}))
	assert.False(t, d.VerifyWebhook(&automation.Request{Header: http.Header{telegram.HeaderSecretToken: {"nope"}}}))
	assert.False(t, d.VerifyWebhook(&automation.Request{}))
	assert.True(t, newDriver(t, automation.Config{}).VerifyWebhook(&automation.Request{}))
}
