package standard_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/marcelsud/automation-connect/drivers/standard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayload(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success - hierarchical type", func(t *testing.T) {
		p, err := standard.NewPayload("order.item.updated", map[string]any{"id": "123"}, now)
		require.NoError(t, err)
		assert.Equal(t, "order.item.updated", p.Type)
		assert.JSONEq(t, `{"id":"123"}`, string(p.Data))

		b, err := p.MarshalJSON()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"order.item.updated","timestamp":"2024-01-01T12:00:00Z","data":{"id":"123"}}`, string(b))
	})

	t.Run("error - invalid type", func(t *testing.T) {
		_, err := standard.NewPayload("invalid-type-with-dashes", nil, now)
		assert.ErrorContains(t, err, "validating payload")
		_, err = standard.NewPayload("", nil, now)
		assert.ErrorContains(t, err, "type is required")
	})

	t.Run("error - data cannot be marshaled", func(t *testing.T) {
		_, err := standard.NewPayload("test.event", make(chan int), now)
		assert.ErrorContains(t, err, "marshaling data")
	})
}

func TestParsePayload(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"type":"user.created","timestamp":"2024-01-01T12:00:00Z","data":{"user_id":123}}`, ""},
		{"nanoseconds", `{"type":"test.event","timestamp":"2024-01-01T12:00:00.123456789Z","data":{}}`, ""},
		{"invalid json", `{invalid json}`, "unmarshaling payload"},
		{"missing type", `{"timestamp":"2024-01-01T12:00:00Z","data":{}}`, "type is required"},
		{"missing timestamp", `{"type":"test.event","data":{}}`, "timestamp is required"},
		{"bad timestamp", `{"type":"test.event","timestamp":"yesterday","data":{}}`, "parsing timestamp"},
		{"missing data", `{"type":"test.event","timestamp":"2024-01-01T12:00:00Z"}`, "data is required"},
		{"bad type", `{"type":"invalid-type","timestamp":"2024-01-01T12:00:00Z","data":{}}`, "hierarchical"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := standard.ParsePayload([]byte(tc.body))
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, json.Valid(p.Data))
			assert.Equal(t, 2024, p.Timestamp.Year())
		})
	}
}

func TestPayload_Matches(t *testing.T) {
	p := standard.Payload{Type: "user.created"}
	assert.True(t, p.Matches(nil))
	assert.True(t, p.Matches([]string{"user.*"}))
	assert.True(t, p.Matches([]string{"invoice.paid", "user.created"}))
	assert.False(t, p.Matches([]string{"users.*", "user"}))
}

func TestValidateEventType(t *testing.T) {
	for _, ok := range []string{"user.created", "user.*", "*", "a_b.c_d"} {
		assert.NoError(t, standard.ValidateEventType(ok), ok)
	}
	for _, bad := range []string{"", "user-created", "user..created", ".*"} {
		assert.Error(t, standard.ValidateEventType(bad), bad)
	}
}
