// Package trigger matches incoming business events against workflow trigger
// configurations.
package trigger

import (
	"log/slog"

	"github.com/vendura/automation/pkg/condition"
	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

// Matcher selects the workflows a business event should activate. It is
// read-only: it never executes workflows, only returns candidate IDs for the
// execution engine.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher creates a trigger matcher.
func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{
		logger: logger.With("module", "trigger_matcher"),
	}
}

// Match returns the IDs of every active workflow whose trigger type equals
// the event type and whose declared filters the event payload satisfies. An
// unset filter field matches anything. Draft, paused and archived workflows
// never match, and manual triggers never match automatically.
func (m *Matcher) Match(event *events.BusinessEvent, workflows []*models.Workflow) []string {
	var matched []string

	for _, workflow := range workflows {
		if !workflow.IsExecutable() {
			continue
		}

		if workflow.TriggerType != event.Type {
			continue
		}

		if m.matchFilters(&workflow.TriggerConfig, event) {
			matched = append(matched, workflow.ID)

			m.logger.Debug("Event matched workflow",
				"event_type", event.Type,
				"event_id", event.ID,
				"workflow_id", workflow.ID,
				"workflow_name", workflow.Name)
		}
	}

	m.logger.Info("Completed trigger matching",
		"event_type", event.Type,
		"event_id", event.ID,
		"candidates", len(workflows),
		"matches", len(matched))

	return matched
}

func (m *Matcher) matchFilters(config *models.TriggerConfig, event *events.BusinessEvent) bool {
	switch config.Type {
	case models.TriggerOrderPlaced:
		return matchOrderPlaced(config.OrderPlaced, event)
	case models.TriggerInventoryLowStock:
		return matchLowStock(config.LowStock, event)
	case models.TriggerCustomerSignedUp:
		return true
	case models.TriggerProductUpdated:
		return matchProductUpdated(config.ProductUpdated, event)
	case models.TriggerCartAbandoned:
		return matchCartAbandoned(config.CartAbandoned, event)
	case models.TriggerManual:
		// Manual workflows run only on explicit operator request.
		return false
	default:
		m.logger.Warn("Unknown trigger type in workflow config", "trigger_type", config.Type)

		return false
	}
}

func matchOrderPlaced(filter *models.OrderPlacedTrigger, event *events.BusinessEvent) bool {
	if filter == nil {
		return true
	}

	amount, ok := eventNumber(event, "totalAmount")

	if filter.MinAmount != nil {
		if !ok || amount < *filter.MinAmount {
			return false
		}
	}

	if filter.MaxAmount != nil {
		if !ok || amount > *filter.MaxAmount {
			return false
		}
	}

	return true
}

func matchLowStock(filter *models.LowStockTrigger, event *events.BusinessEvent) bool {
	if filter == nil {
		return true
	}

	stock, ok := eventNumber(event, "stockLevel")
	if !ok {
		return false
	}

	return stock <= float64(filter.Threshold)
}

func matchProductUpdated(filter *models.ProductUpdatedTrigger, event *events.BusinessEvent) bool {
	if filter == nil || filter.ProductID == "" {
		return true
	}

	productID, found := condition.Lookup(event.Data, "productId")
	if !found {
		return false
	}

	id, ok := productID.(string)

	return ok && id == filter.ProductID
}

func matchCartAbandoned(filter *models.CartAbandonedTrigger, event *events.BusinessEvent) bool {
	if filter == nil || filter.MinValue == nil {
		return true
	}

	value, ok := eventNumber(event, "cartValue")
	if !ok {
		return false
	}

	return value >= *filter.MinValue
}

func eventNumber(event *events.BusinessEvent, field string) (float64, bool) {
	value, found := condition.Lookup(event.Data, field)
	if !found {
		return 0, false
	}

	switch typed := value.(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	default:
		return 0, false
	}
}
