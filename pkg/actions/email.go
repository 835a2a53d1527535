package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/vendura/automation/pkg/condition"
	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

// SendEmailHandler delivers a templated email to an address resolved from
// the event payload.
type SendEmailHandler struct {
	mailer Mailer
}

// NewSendEmailHandler creates the send_email handler.
func NewSendEmailHandler(mailer Mailer) *SendEmailHandler {
	return &SendEmailHandler{mailer: mailer}
}

func (h *SendEmailHandler) Type() models.ActionType {
	return models.ActionSendEmail
}

// Invoke sends the email. The recipient address comes from the dot-path
// named by recipientField; an event without it is a permanent failure.
func (h *SendEmailHandler) Invoke(ctx context.Context, config *models.ActionConfig, event *events.BusinessEvent) (any, error) {
	cfg := config.SendEmail
	if cfg == nil {
		return nil, MarkPermanent(errors.New("send_email config missing"))
	}

	recipient, ok := recipientAddress(cfg.RecipientField, event)
	if !ok {
		return nil, MarkPermanent(fmt.Errorf("recipient field %q not present in event data", cfg.RecipientField))
	}

	if err := h.mailer.Send(ctx, recipient, cfg.Template, cfg.Subject, cfg.Body); err != nil {
		return nil, fmt.Errorf("send email to %s: %w", recipient, err)
	}

	return map[string]any{
		"recipient": recipient,
		"template":  cfg.Template,
		"subject":   cfg.Subject,
	}, nil
}

func recipientAddress(field string, event *events.BusinessEvent) (string, bool) {
	value, found := condition.Lookup(event.Data, field)
	if !found {
		return "", false
	}

	address, ok := value.(string)
	if !ok || address == "" {
		return "", false
	}

	return address, true
}
