package executor

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendura/automation/pkg/actions"
	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

// scriptedHandler fails a fixed number of times before succeeding.
type scriptedHandler struct {
	actionType models.ActionType
	failures   int
	failWith   func(error) error
	calls      int
	lastConfig *models.ActionConfig
}

func (h *scriptedHandler) Type() models.ActionType { return h.actionType }

func (h *scriptedHandler) Invoke(_ context.Context, config *models.ActionConfig, _ *events.BusinessEvent) (any, error) {
	h.calls++
	h.lastConfig = config

	if h.calls <= h.failures {
		return nil, h.failWith(errors.New("boom"))
	}

	return map[string]any{"delivered": true}, nil
}

func instantWaiter(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)

		return nil
	}
}

func notificationConfig() *models.ActionConfig {
	return &models.ActionConfig{
		Type: models.ActionCreateNotification,
		CreateNotification: &models.CreateNotificationAction{
			Message:  "Order {{orderId}} needs review",
			Priority: models.PriorityHigh,
		},
	}
}

func orderEvent() *events.BusinessEvent {
	return &events.BusinessEvent{
		ID:        "evt-1",
		Type:      models.TriggerOrderPlaced,
		Data:      map[string]any{"orderId": "ord-1", "customer": map[string]any{"email": "anna@example.com"}},
		Timestamp: time.Now(),
	}
}

func newTestExecutor(t *testing.T, handler actions.Handler, waits *[]time.Duration) *Executor {
	t.Helper()

	registry := actions.NewRegistry(slog.Default())
	registry.Register(handler)

	return NewExecutor(registry, slog.Default(), WithWaiter(instantWaiter(waits)))
}

func TestExecuteRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	handler := &scriptedHandler{
		actionType: models.ActionCreateNotification,
		failures:   2,
		failWith:   actions.MarkTransient,
	}

	var waits []time.Duration

	exec := newTestExecutor(t, handler, &waits)

	output, err := exec.Execute(t.Context(), notificationConfig(), orderEvent(), models.ModeLive)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"delivered": true}, output)
	assert.Equal(t, 3, handler.calls)

	// Attempt 1 waits nothing; attempts 2 and 3 follow the backoff schedule.
	assert.Equal(t, []time.Duration{0, time.Second, 2 * time.Second}, waits)
}

func TestExecuteGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	handler := &scriptedHandler{
		actionType: models.ActionCreateNotification,
		failures:   10,
		failWith:   actions.MarkTransient,
	}

	var waits []time.Duration

	exec := newTestExecutor(t, handler, &waits)

	_, err := exec.Execute(t.Context(), notificationConfig(), orderEvent(), models.ModeLive)
	require.Error(t, err)
	assert.Equal(t, 3, handler.calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestExecutePermanentFailureSkipsRetry(t *testing.T) {
	t.Parallel()

	handler := &scriptedHandler{
		actionType: models.ActionCreateNotification,
		failures:   10,
		failWith:   actions.MarkPermanent,
	}

	var waits []time.Duration

	exec := newTestExecutor(t, handler, &waits)

	_, err := exec.Execute(t.Context(), notificationConfig(), orderEvent(), models.ModeLive)
	require.Error(t, err)
	assert.Equal(t, 1, handler.calls)
}

func TestExecuteResolvesTemplates(t *testing.T) {
	t.Parallel()

	handler := &scriptedHandler{actionType: models.ActionCreateNotification}

	var waits []time.Duration

	exec := newTestExecutor(t, handler, &waits)

	original := notificationConfig()

	_, err := exec.Execute(t.Context(), original, orderEvent(), models.ModeLive)
	require.NoError(t, err)

	require.NotNil(t, handler.lastConfig.CreateNotification)
	assert.Equal(t, "Order ord-1 needs review", handler.lastConfig.CreateNotification.Message)

	// The caller's config is never mutated.
	assert.Equal(t, "Order {{orderId}} needs review", original.CreateNotification.Message)
}

func TestExecuteUnresolvedTemplateIsPermanent(t *testing.T) {
	t.Parallel()

	handler := &scriptedHandler{actionType: models.ActionCreateNotification}

	var waits []time.Duration

	exec := newTestExecutor(t, handler, &waits)

	config := &models.ActionConfig{
		Type: models.ActionCreateNotification,
		CreateNotification: &models.CreateNotificationAction{
			Message:  "Order {{missingField}} needs review",
			Priority: models.PriorityLow,
		},
	}

	_, err := exec.Execute(t.Context(), config, orderEvent(), models.ModeLive)
	require.Error(t, err)
	assert.False(t, actions.IsTransient(err))
	assert.Zero(t, handler.calls)
}

func TestExecuteSimulateNeverInvokesHandler(t *testing.T) {
	t.Parallel()

	handler := &scriptedHandler{actionType: models.ActionSendEmail}

	var waits []time.Duration

	exec := newTestExecutor(t, handler, &waits)

	config := &models.ActionConfig{
		Type: models.ActionSendEmail,
		SendEmail: &models.SendEmailAction{
			Template:       "order-review",
			Subject:        "Order {{orderId}}",
			RecipientField: "customer.email",
		},
	}

	output, err := exec.Execute(t.Context(), config, orderEvent(), models.ModeSimulate)
	require.NoError(t, err)
	assert.Zero(t, handler.calls)

	result, ok := output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["simulated"])
	assert.Equal(t, `would send email to anna@example.com with subject "Order ord-1"`, result["description"])
}

func TestExecuteUnknownActionType(t *testing.T) {
	t.Parallel()

	registry := actions.NewRegistry(slog.Default())
	exec := NewExecutor(registry, slog.Default())

	_, err := exec.Execute(t.Context(), notificationConfig(), orderEvent(), models.ModeLive)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}
