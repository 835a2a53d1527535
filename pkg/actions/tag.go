package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/vendura/automation/pkg/condition"
	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

// entityIDFields maps each tag action to the event data field holding the
// target entity's ID.
var entityIDFields = map[models.ActionType]string{
	models.ActionTagCustomer: "customerId",
	models.ActionTagOrder:    "orderId",
	models.ActionTagProduct:  "productId",
}

// TagHandler attaches a tag to the customer, order or product named by the
// event. One instance serves a single action type.
type TagHandler struct {
	actionType models.ActionType
	tags       TagStore
}

// NewTagHandler creates a tag handler for one of the three tag action types.
func NewTagHandler(actionType models.ActionType, tags TagStore) *TagHandler {
	return &TagHandler{actionType: actionType, tags: tags}
}

func (h *TagHandler) Type() models.ActionType {
	return h.actionType
}

// Invoke resolves the target entity ID from the event and writes the tag.
// A missing entity ID is a permanent failure.
func (h *TagHandler) Invoke(ctx context.Context, config *models.ActionConfig, event *events.BusinessEvent) (any, error) {
	cfg := config.Tag
	if cfg == nil {
		return nil, MarkPermanent(errors.New("tag config missing"))
	}

	field := entityIDFields[h.actionType]

	entityID, ok := lookupString(event.Data, field)
	if !ok {
		return nil, MarkPermanent(fmt.Errorf("event data has no %q field to tag", field))
	}

	var err error

	switch h.actionType {
	case models.ActionTagCustomer:
		err = h.tags.TagCustomer(ctx, entityID, cfg.Tag)
	case models.ActionTagOrder:
		err = h.tags.TagOrder(ctx, entityID, cfg.Tag)
	case models.ActionTagProduct:
		err = h.tags.TagProduct(ctx, entityID, cfg.Tag)
	default:
		return nil, MarkPermanent(fmt.Errorf("tag handler cannot serve action type %q", h.actionType))
	}

	if err != nil {
		return nil, fmt.Errorf("apply tag %q to %s: %w", cfg.Tag, entityID, err)
	}

	return map[string]any{
		"tag":    cfg.Tag,
		"entity": entityID,
	}, nil
}

func lookupString(data map[string]any, field string) (string, bool) {
	value, found := condition.Lookup(data, field)
	if !found {
		return "", false
	}

	str, ok := value.(string)
	if !ok || str == "" {
		return "", false
	}

	return str, true
}
