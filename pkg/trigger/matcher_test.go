package trigger

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

func floatPtr(f float64) *float64 { return &f }

func activeWorkflow(id string, triggerType models.TriggerType, config models.TriggerConfig) *models.Workflow {
	return &models.Workflow{
		ID:            id,
		Name:          "Workflow " + id,
		Status:        models.WorkflowStatusActive,
		TriggerType:   triggerType,
		TriggerConfig: config,
	}
}

func businessEvent(triggerType models.TriggerType, data map[string]any) *events.BusinessEvent {
	return &events.BusinessEvent{
		ID:        "evt-1",
		Type:      triggerType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func TestMatcherSkipsInactiveWorkflows(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(slog.Default())

	workflows := []*models.Workflow{}

	for _, status := range []models.WorkflowStatus{
		models.WorkflowStatusDraft,
		models.WorkflowStatusPaused,
		models.WorkflowStatusArchived,
	} {
		workflows = append(workflows, &models.Workflow{
			ID:          "wf-" + string(status),
			Status:      status,
			TriggerType: models.TriggerOrderPlaced,
			TriggerConfig: models.TriggerConfig{
				Type:        models.TriggerOrderPlaced,
				OrderPlaced: &models.OrderPlacedTrigger{},
			},
		})
	}

	event := businessEvent(models.TriggerOrderPlaced, map[string]any{"totalAmount": 50.0})

	assert.Empty(t, matcher.Match(event, workflows))
}

func TestMatcherTypeMismatch(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(slog.Default())

	workflows := []*models.Workflow{
		activeWorkflow("wf-1", models.TriggerCustomerSignedUp, models.TriggerConfig{
			Type:             models.TriggerCustomerSignedUp,
			CustomerSignedUp: &models.CustomerSignedUpTrigger{},
		}),
	}

	event := businessEvent(models.TriggerOrderPlaced, map[string]any{"totalAmount": 50.0})

	assert.Empty(t, matcher.Match(event, workflows))
}

func TestMatcherOrderPlacedAmountBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter models.OrderPlacedTrigger
		amount any
		want   bool
	}{
		{"no bounds", models.OrderPlacedTrigger{}, 10.0, true},
		{"above min", models.OrderPlacedTrigger{MinAmount: floatPtr(100)}, 150.0, true},
		{"below min", models.OrderPlacedTrigger{MinAmount: floatPtr(100)}, 99.0, false},
		{"at min", models.OrderPlacedTrigger{MinAmount: floatPtr(100)}, 100.0, true},
		{"below max", models.OrderPlacedTrigger{MaxAmount: floatPtr(500)}, 150.0, true},
		{"above max", models.OrderPlacedTrigger{MaxAmount: floatPtr(500)}, 501.0, false},
		{"within range", models.OrderPlacedTrigger{MinAmount: floatPtr(100), MaxAmount: floatPtr(500)}, 300.0, true},
		{"bounded but amount missing", models.OrderPlacedTrigger{MinAmount: floatPtr(100)}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			matcher := NewMatcher(slog.Default())

			filter := tt.filter
			workflows := []*models.Workflow{
				activeWorkflow("wf-1", models.TriggerOrderPlaced, models.TriggerConfig{
					Type:        models.TriggerOrderPlaced,
					OrderPlaced: &filter,
				}),
			}

			data := map[string]any{}
			if tt.amount != nil {
				data["totalAmount"] = tt.amount
			}

			matched := matcher.Match(businessEvent(models.TriggerOrderPlaced, data), workflows)

			if tt.want {
				assert.Equal(t, []string{"wf-1"}, matched)
			} else {
				assert.Empty(t, matched)
			}
		})
	}
}

func TestMatcherLowStockThreshold(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(slog.Default())

	workflows := []*models.Workflow{
		activeWorkflow("wf-1", models.TriggerInventoryLowStock, models.TriggerConfig{
			Type:     models.TriggerInventoryLowStock,
			LowStock: &models.LowStockTrigger{Threshold: 5},
		}),
	}

	atThreshold := businessEvent(models.TriggerInventoryLowStock, map[string]any{"stockLevel": 5.0})
	assert.Equal(t, []string{"wf-1"}, matcher.Match(atThreshold, workflows))

	above := businessEvent(models.TriggerInventoryLowStock, map[string]any{"stockLevel": 6.0})
	assert.Empty(t, matcher.Match(above, workflows))
}

func TestMatcherProductUpdated(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(slog.Default())

	workflows := []*models.Workflow{
		activeWorkflow("wf-any", models.TriggerProductUpdated, models.TriggerConfig{
			Type:           models.TriggerProductUpdated,
			ProductUpdated: &models.ProductUpdatedTrigger{},
		}),
		activeWorkflow("wf-specific", models.TriggerProductUpdated, models.TriggerConfig{
			Type:           models.TriggerProductUpdated,
			ProductUpdated: &models.ProductUpdatedTrigger{ProductID: "prod-42"},
		}),
	}

	matched := matcher.Match(businessEvent(models.TriggerProductUpdated, map[string]any{"productId": "prod-42"}), workflows)
	assert.Equal(t, []string{"wf-any", "wf-specific"}, matched)

	matched = matcher.Match(businessEvent(models.TriggerProductUpdated, map[string]any{"productId": "prod-7"}), workflows)
	assert.Equal(t, []string{"wf-any"}, matched)
}

func TestMatcherCartAbandoned(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(slog.Default())

	workflows := []*models.Workflow{
		activeWorkflow("wf-1", models.TriggerCartAbandoned, models.TriggerConfig{
			Type:          models.TriggerCartAbandoned,
			CartAbandoned: &models.CartAbandonedTrigger{MinValue: floatPtr(50)},
		}),
	}

	rich := businessEvent(models.TriggerCartAbandoned, map[string]any{"cartValue": 80.0})
	assert.Equal(t, []string{"wf-1"}, matcher.Match(rich, workflows))

	poor := businessEvent(models.TriggerCartAbandoned, map[string]any{"cartValue": 20.0})
	assert.Empty(t, matcher.Match(poor, workflows))
}

func TestMatcherManualNeverAutoMatches(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(slog.Default())

	workflows := []*models.Workflow{
		activeWorkflow("wf-1", models.TriggerManual, models.TriggerConfig{
			Type:   models.TriggerManual,
			Manual: &models.ManualTrigger{},
		}),
	}

	event := businessEvent(models.TriggerManual, map[string]any{})

	assert.Empty(t, matcher.Match(event, workflows))
}
