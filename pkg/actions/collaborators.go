package actions

import (
	"context"
	"net/http"

	"github.com/vendura/automation/pkg/models"
)

// Mailer delivers rendered emails. Implemented by the surrounding
// application's email service.
type Mailer interface {
	Send(ctx context.Context, to, template, subject, body string) error
}

// TagStore attaches tags to customers, orders and products.
type TagStore interface {
	TagCustomer(ctx context.Context, customerID, tag string) error
	TagOrder(ctx context.Context, orderID, tag string) error
	TagProduct(ctx context.Context, productID, tag string) error
}

// ProductStore mutates product state.
type ProductStore interface {
	UpdateStatus(ctx context.Context, productID, status string) error
}

// NotificationStore records operator-facing notifications.
type NotificationStore interface {
	Create(ctx context.Context, message string, priority models.NotificationPriority) error
}

// Collaborators bundles every external dependency the built-in handlers need.
type Collaborators struct {
	Mailer        Mailer
	Tags          TagStore
	Products      ProductStore
	Notifications NotificationStore
	HTTPClient    *http.Client
}
