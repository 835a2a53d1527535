// Package actions provides the action handler protocol and the built-in
// handlers for every supported action type.
package actions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

// Handler performs the real side effect for one action type. Handlers
// receive configs with all {{field}} placeholders already resolved; their
// output becomes the step's recorded output.
type Handler interface {
	Type() models.ActionType
	Invoke(ctx context.Context, config *models.ActionConfig, event *events.BusinessEvent) (any, error)
}

// Registry looks handlers up by action type. Registration happens at start
// time; lookups are read-only afterwards, so no locking is needed.
type Registry struct {
	logger   *slog.Logger
	handlers map[models.ActionType]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger.With("module", "action_registry"),
		handlers: make(map[models.ActionType]Handler),
	}
}

// Register adds a handler, replacing any previous handler for the same type.
func (r *Registry) Register(handler Handler) {
	r.handlers[handler.Type()] = handler
	r.logger.Debug("Registered action handler", "action_type", handler.Type())
}

// Handler returns the handler for an action type.
func (r *Registry) Handler(actionType models.ActionType) (Handler, error) {
	handler, ok := r.handlers[actionType]
	if !ok {
		return nil, MarkPermanent(fmt.Errorf("action type %q not registered", actionType))
	}

	return handler, nil
}

// RegisterDefaults wires every built-in handler against the given
// collaborators.
func (r *Registry) RegisterDefaults(deps Collaborators) {
	r.Register(NewSendEmailHandler(deps.Mailer))
	r.Register(NewTagHandler(models.ActionTagCustomer, deps.Tags))
	r.Register(NewTagHandler(models.ActionTagOrder, deps.Tags))
	r.Register(NewTagHandler(models.ActionTagProduct, deps.Tags))
	r.Register(NewWebhookHandler(deps.HTTPClient))
	r.Register(NewProductStatusHandler(deps.Products))
	r.Register(NewNotificationHandler(deps.Notifications))
}
