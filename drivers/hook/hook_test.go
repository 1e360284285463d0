package hook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/executor"
	"github.com/marcelsud/automation-connect/drivers/hook"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func kit() automation.Toolkit {
	return automation.Toolkit{
		HTTP:   executor.New(time.Second, zerolog.Nop()),
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return fixed },
	}
}

func TestCatchHooks_Send(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name    string
		factory automation.Factory
		agent   bool
	}{
		{hook.Zapier, hook.NewZapier, true},
		{hook.Make, hook.NewMake, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.agent {
					assert.Equal(t, hook.UserAgent, r.Header.Get("User-Agent"))
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.Write([]byte(`{"status":"success"}`))
			}))
			defer srv.Close()

			d, err := tc.factory(automation.Config{"webhook_url": srv.URL}, kit())
			require.NoError(t, err)
			assert.Equal(t, tc.name, d.Name())

			resp, err := d.Send(ctx, map[string]any{"order": "A-1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"status": "success"}, resp)
			assert.Equal(t, map[string]any{"order": "A-1"}, got)

			empty, err := tc.factory(automation.Config{}, kit())
			require.NoError(t, err)
			_, err = empty.Send(ctx, nil, nil)
			assert.ErrorIs(t, err, automation.ErrConfiguration)
		})
	}
}

func TestCatchHooks_HandleWebhook(t *testing.T) {
	d, err := hook.NewZapier(automation.Config{}, kit())
	require.NoError(t, err)

	resp, err := d.HandleWebhook(context.Background(), &automation.Request{Body: []byte(`{"a":1}`)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"status":    "received",
		"data":      map[string]any{"a": float64(1)},
		"timestamp": "2026-01-02T03:04:05Z",
	}, resp)
}

func TestN8n_Send(t *testing.T) {
	ctx := context.Background()

	type hit struct {
		method, path, apiKey, user string
		body                       string
	}
	var (
		mu   sync.Mutex
		hits []hit
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, _ := r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		hits = append(hits, hit{r.Method, r.URL.Path, r.Header.Get(hook.HeaderAPIKey), user, string(body)})
		mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	d, err := hook.NewN8n(automation.Config{
		"webhook_url": srv.URL + "/webhook/default",
		"base_url":    srv.URL + "/",
		"api_key":     "key",
		"basic_auth":  map[string]any{"username": "u", "password": "p"},
	}, kit())
	require.NoError(t, err)

	t.Run("success - webhook and workflow actions", func(t *testing.T) {
		hits = nil
		_, err := d.Send(ctx, map[string]any{"x": 1}, nil)
		require.NoError(t, err)
		_, err = d.Send(ctx, map[string]any{"x": 2}, automation.Options{"action": "trigger_workflow", "workflow_id": "wf1"})
		require.NoError(t, err)
		_, err = d.Send(ctx, map[string]any{"x": 3}, automation.Options{"action": "execute_workflow", "workflow_id": "wf1"})
		require.NoError(t, err)
		_, err = d.Send(ctx, nil, automation.Options{"action": "get_workflow", "workflow_id": "wf1"})
		require.NoError(t, err)
		_, err = d.Send(ctx, nil, automation.Options{"action": "list_workflows"})
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, hits, 5)
		assert.Equal(t, hit{"POST", "/webhook/default", "key", "u", `{"x":1}`}, hits[0])
		assert.Equal(t, "/webhook/wf1", hits[1].path)
		assert.Equal(t, hit{"POST", "/api/v1/workflows/wf1/execute", "key", "", `{"data":{"x":3}}`}, hits[2])
		assert.Equal(t, hit{"GET", "/api/v1/workflows/wf1", "key", "", ""}, hits[3])
		assert.Equal(t, "/api/v1/workflows", hits[4].path)
	})

	t.Run("error - unknown action and missing workflow id", func(t *testing.T) {
		_, err := d.Send(ctx, nil, automation.Options{"action": "delete_everything"})
		assert.ErrorIs(t, err, automation.ErrUnsupportedAction)
		_, err = d.Send(ctx, nil, automation.Options{"action": "get_workflow"})
		assert.ErrorContains(t, err, "workflow_id")
	})

	t.Run("error - api actions need base url", func(t *testing.T) {
		bare, err := hook.NewN8n(automation.Config{"webhook_url": srv.URL}, kit())
		require.NoError(t, err)
		_, err = bare.Send(ctx, nil, automation.Options{"action": "list_workflows"})
		var cfgErr *automation.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "base_url", cfgErr.Key)
	})
}

func TestN8n_HandleWebhook(t *testing.T) {
	d, err := hook.NewN8n(automation.Config{}, kit())
	require.NoError(t, err)

	req := &automation.Request{
		Method: http.MethodPost,
		Header: http.Header{"X-N8n-Workflow-Id": {"wf9"}},
		Body:   []byte(`{"workflowId":"ignored","executionId":"ex1"}`),
	}
	resp, err := d.HandleWebhook(context.Background(), req)
	require.NoError(t, err)
	out := resp.(map[string]any)
	assert.Equal(t, "received", out["status"])
	assert.Equal(t, "wf9", out["workflow_id"])
	assert.Equal(t, "ex1", out["execution_id"])
}
