package airtable_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/executor"
	"github.com/marcelsud/automation-connect/drivers/airtable"
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
		path = r.URL.EscapedPath()
		assert.Equal(t, "Bearer pat", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"records":[{"id":"rec1"}]}`))
	}))
	defer srv.Close()

	t.Run("success - title case fields in default table", func(t *testing.T) {
		d, err := airtable.New(automation.Config{"api_key": "pat", "base_id": "app1", "default_table": "Leads", "base_url": srv.URL}, kit)
		require.NoError(t, err)

		_, err = d.Send(ctx, map[string]any{"first_name": "Ada"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "/app1/Leads", path)
		assert.Equal(t, map[string]any{"records": []any{map[string]any{"fields": map[string]any{"First Name": "Ada"}}}}, got)
	})

	t.Run("success - table option and raw field names", func(t *testing.T) {
		d, err := airtable.New(automation.Config{"api_key": "pat", "base_id": "app1", "title_case_fields": false, "base_url": srv.URL}, kit)
		require.NoError(t, err)

		_, err = d.Send(ctx, map[string]any{"first_name": "Ada"}, automation.Options{"table": "Sales Leads"})
		require.NoError(t, err)
		assert.Equal(t, "/app1/Sales%20Leads", path)
		assert.Equal(t, map[string]any{"records": []any{map[string]any{"fields": map[string]any{"first_name": "Ada"}}}}, got)
	})

	t.Run("error - table required", func(t *testing.T) {
		d, err := airtable.New(automation.Config{"api_key": "pat", "base_id": "app1"}, kit)
		require.NoError(t, err)
		_, err = d.Send(ctx, nil, nil)
		var cfgErr *automation.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "default_table", cfgErr.Key)
	})
}
