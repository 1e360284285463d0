package hubspot_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/automation/executor"
	"github.com/marcelsud/automation-connect/automation/signature"
	"github.com/marcelsud/automation-connect/drivers/hubspot"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kit() automation.Toolkit {
	return automation.Toolkit{HTTP: executor.New(time.Second, zerolog.Nop()), Logger: zerolog.Nop()}
}

func TestDriver_Send(t *testing.T) {
	ctx := context.Background()

	var auth, path string
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"refreshed","token_type":"bearer","expires_in":1800}`))
	})
	mux.HandleFunc("/crm/v3/objects/", func(w http.ResponseWriter, r *http.Request) {
		auth, path = r.Header.Get("Authorization"), r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"101"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("success - static token creates contact", func(t *testing.T) {
		d, err := hubspot.New(automation.Config{"access_token": "pat", "base_url": srv.URL}, kit())
		require.NoError(t, err)

		resp, err := d.Send(ctx, map[string]any{"email": "a@b.c", "age": 30}, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "101"}, resp)
		assert.Equal(t, "Bearer pat", auth)
		assert.Equal(t, "/crm/v3/objects/contacts", path)
		assert.Equal(t, map[string]any{"properties": map[string]any{"email": "a@b.c", "age": "30"}}, got)
	})

	t.Run("success - refresh token grant and endpoint option", func(t *testing.T) {
		d, err := hubspot.New(automation.Config{
			"refresh_token": "rt",
			"client_id":     "cid",
			"client_secret": "cs",
			"token_url":     srv.URL + "/oauth/v1/token",
			"base_url":      srv.URL,
		}, kit())
		require.NoError(t, err)

		_, err = d.Send(ctx, map[string]any{"dealname": "Q3"}, automation.Options{"endpoint": "deals"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer refreshed", auth)
		assert.Equal(t, "/crm/v3/objects/deals", path)
	})

	t.Run("error - no credentials", func(t *testing.T) {
		d, err := hubspot.New(automation.Config{}, kit())
		require.NoError(t, err)
		_, err = d.Send(ctx, nil, nil)
		assert.ErrorIs(t, err, automation.ErrConfiguration)
	})
}

func TestDriver_VerifyWebhook(t *testing.T) {
	body := []byte(`[{"eventId":1}]`)
	digest, err := signature.Compute(signature.SHA256, "hs", body)
	require.NoError(t, err)
	d, err := hubspot.New(automation.Config{"webhook_secret": "hs"}, kit())
	require.NoError(t, err)

	signed := http.Header{}
	signed.Set(hubspot.HeaderSignature, digest)
	assert.True(t, d.VerifyWebhook(&automation.Request{Header: signed, Body: body}))
	assert.False(t, d.VerifyWebhook(&automation.Request{Header: http.Header{"X-Signature": {digest}}, Body: body}))
}
