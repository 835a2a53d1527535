package actions

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

func webhookEvent() *events.BusinessEvent {
	return &events.BusinessEvent{
		ID:        "evt-1",
		Type:      models.TriggerOrderPlaced,
		Data:      map[string]any{"orderId": "ord-1"},
		Timestamp: time.Now(),
	}
}

func webhookConfig(url string) *models.ActionConfig {
	return &models.ActionConfig{
		Type: models.ActionWebhook,
		Webhook: &models.WebhookAction{
			URL:    url,
			Method: http.MethodPost,
			Body:   `{"orderId":"ord-1"}`,
		},
	}
}

func TestWebhookSuccess(t *testing.T) {
	t.Parallel()

	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	handler := NewWebhookHandler(server.Client())

	output, err := handler.Invoke(t.Context(), webhookConfig(server.URL), webhookEvent())
	require.NoError(t, err)

	result, ok := output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, result["status_code"])
	assert.Equal(t, `{"ok":true}`, result["response"])
	assert.Equal(t, "application/json", gotContentType)
}

func TestWebhookStatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"server error retries", http.StatusInternalServerError, true},
		{"bad gateway retries", http.StatusBadGateway, true},
		{"rate limit retries", http.StatusTooManyRequests, true},
		{"bad request is permanent", http.StatusBadRequest, false},
		{"not found is permanent", http.StatusNotFound, false},
		{"unauthorized is permanent", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			handler := NewWebhookHandler(server.Client())

			_, err := handler.Invoke(t.Context(), webhookConfig(server.URL), webhookEvent())
			require.Error(t, err)
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestWebhookConnectionFailureIsTransient(t *testing.T) {
	t.Parallel()

	handler := NewWebhookHandler(&http.Client{Timeout: 100 * time.Millisecond})

	// Reserved TEST-NET address; nothing listens there.
	_, err := handler.Invoke(t.Context(), webhookConfig("http://192.0.2.1:9"), webhookEvent())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}
