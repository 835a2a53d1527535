package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

// ProductStatusHandler flips the status of the product named by the event.
type ProductStatusHandler struct {
	products ProductStore
}

// NewProductStatusHandler creates the update_product_status handler.
func NewProductStatusHandler(products ProductStore) *ProductStatusHandler {
	return &ProductStatusHandler{products: products}
}

func (h *ProductStatusHandler) Type() models.ActionType {
	return models.ActionUpdateProductStatus
}

func (h *ProductStatusHandler) Invoke(ctx context.Context, config *models.ActionConfig, event *events.BusinessEvent) (any, error) {
	cfg := config.UpdateProductStatus
	if cfg == nil {
		return nil, MarkPermanent(errors.New("update_product_status config missing"))
	}

	productID, ok := lookupString(event.Data, "productId")
	if !ok {
		return nil, MarkPermanent(errors.New(`event data has no "productId" field`))
	}

	if err := h.products.UpdateStatus(ctx, productID, cfg.Status); err != nil {
		return nil, fmt.Errorf("update product %s status to %q: %w", productID, cfg.Status, err)
	}

	return map[string]any{
		"product_id": productID,
		"status":     cfg.Status,
	}, nil
}
