// Package eventbus provides publish/subscribe messaging for business events
// and execution lifecycle notifications.
package eventbus

import (
	"context"

	"github.com/vendura/automation/pkg/events"
)

// BusinessHandler consumes one incoming business event.
type BusinessHandler func(ctx context.Context, event *events.BusinessEvent) error

// EventBus carries store events in and execution lifecycle notifications
// out.
type EventBus interface {
	GenerateID() string
	PublishBusiness(ctx context.Context, event *events.BusinessEvent) error
	PublishLifecycle(ctx context.Context, key string, event events.Event) error
	SubscribeBusiness(ctx context.Context, handler BusinessHandler) error
	Close() error
}
