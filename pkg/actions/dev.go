package actions

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vendura/automation/pkg/models"
)

// DevCollaborators returns collaborators that log every side effect instead
// of performing it. Used by the standalone binary when the surrounding
// platform services are not wired in.
func DevCollaborators(logger *slog.Logger) Collaborators {
	logger = logger.With("module", "dev_collaborators")

	return Collaborators{
		Mailer:        &logMailer{logger: logger},
		Tags:          &logTagStore{logger: logger},
		Products:      &logProductStore{logger: logger},
		Notifications: &logNotificationStore{logger: logger},
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) Send(ctx context.Context, to, template, subject, _ string) error {
	m.logger.InfoContext(ctx, "Sending email", "to", to, "template", template, "subject", subject)

	return nil
}

type logTagStore struct {
	logger *slog.Logger
}

func (s *logTagStore) TagCustomer(ctx context.Context, customerID, tag string) error {
	s.logger.InfoContext(ctx, "Tagging customer", "customer_id", customerID, "tag", tag)

	return nil
}

func (s *logTagStore) TagOrder(ctx context.Context, orderID, tag string) error {
	s.logger.InfoContext(ctx, "Tagging order", "order_id", orderID, "tag", tag)

	return nil
}

func (s *logTagStore) TagProduct(ctx context.Context, productID, tag string) error {
	s.logger.InfoContext(ctx, "Tagging product", "product_id", productID, "tag", tag)

	return nil
}

type logProductStore struct {
	logger *slog.Logger
}

func (s *logProductStore) UpdateStatus(ctx context.Context, productID, status string) error {
	s.logger.InfoContext(ctx, "Updating product status", "product_id", productID, "status", status)

	return nil
}

type logNotificationStore struct {
	logger *slog.Logger
}

func (s *logNotificationStore) Create(ctx context.Context, message string, priority models.NotificationPriority) error {
	s.logger.InfoContext(ctx, "Creating notification", "message", message, "priority", priority)

	return nil
}
