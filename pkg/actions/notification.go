package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

// NotificationHandler raises an operator-facing notification.
type NotificationHandler struct {
	notifications NotificationStore
}

// NewNotificationHandler creates the create_notification handler.
func NewNotificationHandler(notifications NotificationStore) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) Type() models.ActionType {
	return models.ActionCreateNotification
}

func (h *NotificationHandler) Invoke(ctx context.Context, config *models.ActionConfig, _ *events.BusinessEvent) (any, error) {
	cfg := config.CreateNotification
	if cfg == nil {
		return nil, MarkPermanent(errors.New("create_notification config missing"))
	}

	if err := h.notifications.Create(ctx, cfg.Message, cfg.Priority); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	return map[string]any{
		"message":  cfg.Message,
		"priority": string(cfg.Priority),
	}, nil
}
