package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/webhook"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestOTelExporter(t *testing.T) {
	stats := fakeStats{"slack": {Total: 2, Successful: 1, Failed: 1}}
	collector := NewStoreCollector(stats, func() []string { return []string{"slack"} }, WithQueue(fakeQueue(5)))

	oe, err := NewOTelExporter(collector, zerolog.Nop())
	require.NoError(t, err)
	defer oe.Shutdown(context.Background())

	ctx := context.Background()
	oe.ObserveWebhook(ctx, "slack", http.StatusOK, 12*time.Millisecond)
	oe.ObserveWebhook(ctx, "slack", http.StatusUnauthorized, time.Millisecond)
	oe.ObserveSend(ctx, "discord", "success")

	body := scrape(t, oe.ServeHTTP())
	assert.Contains(t, body, "automation_webhook_requests")
	assert.Contains(t, body, `status_code="401"`)
	assert.Contains(t, body, "automation_webhook_duration")
	assert.Contains(t, body, "automation_send_requests")
	assert.Contains(t, body, `outcome="success"`)
	assert.Contains(t, body, "automation_webhook_success_rate")
	assert.Contains(t, body, `service="slack"`)
	assert.Contains(t, body, "automation_queue_length")
	assert.Contains(t, body, "automation_workers_active")
}

func TestNewServiceStats(t *testing.T) {
	s := NewServiceStats(webhook.Stats{Total: 0})
	assert.Zero(t, s.SuccessRate)
	assert.Zero(t, s.AverageProcessingTime)
}
