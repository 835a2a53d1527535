package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

const maxWebhookResponseBytes = 64 * 1024

// WebhookHandler calls an external HTTP endpoint with the resolved body
// template.
type WebhookHandler struct {
	client *http.Client
}

// NewWebhookHandler creates the webhook handler. A nil client falls back to
// http.DefaultClient.
func NewWebhookHandler(client *http.Client) *WebhookHandler {
	if client == nil {
		client = http.DefaultClient
	}

	return &WebhookHandler{client: client}
}

func (h *WebhookHandler) Type() models.ActionType {
	return models.ActionWebhook
}

// Invoke performs the HTTP call. 5xx and 429 responses are transient; other
// non-2xx responses are permanent.
func (h *WebhookHandler) Invoke(ctx context.Context, config *models.ActionConfig, event *events.BusinessEvent) (any, error) {
	cfg := config.Webhook
	if cfg == nil {
		return nil, MarkPermanent(errors.New("webhook config missing"))
	}

	var body io.Reader
	if cfg.Body != "" {
		body = strings.NewReader(cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, body)
	if err != nil {
		return nil, MarkPermanent(fmt.Errorf("build webhook request: %w", err))
	}

	for name, value := range cfg.Headers {
		req.Header.Set(name, value)
	}

	if req.Header.Get("Content-Type") == "" && cfg.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, MarkTransient(fmt.Errorf("webhook call failed: %w", err))
	}

	defer func() { _ = resp.Body.Close() }()

	responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxWebhookResponseBytes))

	result := map[string]any{
		"status_code": resp.StatusCode,
		"url":         cfg.URL,
		"method":      cfg.Method,
		"response":    string(responseBody),
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return result, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return result, MarkTransient(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	default:
		return result, MarkPermanent(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
}
