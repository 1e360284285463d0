package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/executor"
	"github.com/marcelsud/automation-connect/drivers/openai"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_Send(t *testing.T) {
	ctx := context.Background()
	kit := automation.Toolkit{HTTP: executor.New(time.Second, zerolog.Nop()), Logger: zerolog.Nop()}

	var path string
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	d, err := openai.New(automation.Config{"api_key": "sk-test", "base_url": srv.URL}, kit)
	require.NoError(t, err)
	assert.False(t, d.SupportsIncomingWebhooks())

	t.Run("success - prompt becomes user message", func(t *testing.T) {
		_, err := d.Send(ctx, map[string]any{"prompt": "summarize"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "/chat/completions", path)
		assert.Equal(t, "gpt-4", got["model"])
		assert.Equal(t, []any{map[string]any{"role": "user", "content": "summarize"}}, got["messages"])
		assert.NotContains(t, got, "prompt")
	})

	t.Run("success - endpoint option and data overrides", func(t *testing.T) {
		_, err := d.Send(ctx, map[string]any{"model": "text-embedding-3-small", "input": "x"}, automation.Options{"endpoint": "embeddings"})
		require.NoError(t, err)
		assert.Equal(t, "/embeddings", path)
		assert.Equal(t, "text-embedding-3-small", got["model"])
	})

	t.Run("error - missing api key", func(t *testing.T) {
		bare, err := openai.New(automation.Config{}, kit)
		require.NoError(t, err)
		_, err = bare.Send(ctx, nil, nil)
		assert.ErrorIs(t, err, automation.ErrConfiguration)
	})
}
