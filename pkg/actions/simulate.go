package actions

import (
	"fmt"

	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

// Simulate returns the deterministic synthetic output for an action without
// invoking its handler. Test runs record these outputs so operators can see
// what a live run would have done, with zero side effects.
func Simulate(config *models.ActionConfig, event *events.BusinessEvent) map[string]any {
	out := map[string]any{
		"simulated":   true,
		"action_type": string(config.Type),
	}

	switch config.Type {
	case models.ActionSendEmail:
		recipient := "<unresolved>"
		if config.SendEmail != nil {
			if address, ok := recipientAddress(config.SendEmail.RecipientField, event); ok {
				recipient = address
			}

			out["description"] = fmt.Sprintf("would send email to %s with subject %q", recipient, config.SendEmail.Subject)
		}
	case models.ActionTagCustomer, models.ActionTagOrder, models.ActionTagProduct:
		if config.Tag != nil {
			entity := "<unresolved>"
			if id, ok := lookupString(event.Data, entityIDFields[config.Type]); ok {
				entity = id
			}

			out["description"] = fmt.Sprintf("would apply tag %q to %s", config.Tag.Tag, entity)
		}
	case models.ActionWebhook:
		if config.Webhook != nil {
			out["description"] = fmt.Sprintf("would call %s %s", config.Webhook.Method, config.Webhook.URL)
		}
	case models.ActionUpdateProductStatus:
		if config.UpdateProductStatus != nil {
			product := "<unresolved>"
			if id, ok := lookupString(event.Data, "productId"); ok {
				product = id
			}

			out["description"] = fmt.Sprintf("would set product %s status to %q", product, config.UpdateProductStatus.Status)
		}
	case models.ActionCreateNotification:
		if config.CreateNotification != nil {
			out["description"] = fmt.Sprintf("would create %s-priority notification %q",
				config.CreateNotification.Priority, config.CreateNotification.Message)
		}
	}

	if _, ok := out["description"]; !ok {
		out["description"] = "would execute " + string(config.Type)
	}

	return out
}
