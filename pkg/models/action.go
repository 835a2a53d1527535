package models

import (
	"encoding/json"
	"fmt"
)

// ActionType enumerates the closed set of side effects an action node can
// perform.
type ActionType string

const (
	ActionSendEmail           ActionType = "send_email"
	ActionTagCustomer         ActionType = "tag_customer"
	ActionTagOrder            ActionType = "tag_order"
	ActionTagProduct          ActionType = "tag_product"
	ActionWebhook             ActionType = "webhook"
	ActionUpdateProductStatus ActionType = "update_product_status"
	ActionCreateNotification  ActionType = "create_notification"
)

// ValidActionTypes lists every supported action type.
var ValidActionTypes = []ActionType{
	ActionSendEmail,
	ActionTagCustomer,
	ActionTagOrder,
	ActionTagProduct,
	ActionWebhook,
	ActionUpdateProductStatus,
	ActionCreateNotification,
}

// IsValidActionType reports whether t names a supported action type.
func IsValidActionType(t ActionType) bool {
	for _, valid := range ValidActionTypes {
		if t == valid {
			return true
		}
	}

	return false
}

// NotificationPriority grades create_notification actions.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// SendEmailAction renders and sends an email. Subject and Body support
// {{field}} placeholders resolved from the triggering event. RecipientField
// is a dot-path into the event data yielding the destination address.
type SendEmailAction struct {
	Template       string `json:"template"       validate:"required"`
	Subject        string `json:"subject"        validate:"required,max=200"`
	Body           string `json:"body"`
	RecipientField string `json:"recipientField" validate:"required"`
}

// TagAction attaches a tag to a customer, order or product. The target
// entity is implied by the surrounding action type.
type TagAction struct {
	Tag string `json:"tag" validate:"required,min=1,max=50"`
}

// WebhookAction posts to an external URL. Body supports {{field}}
// placeholders resolved from the triggering event.
type WebhookAction struct {
	URL     string            `json:"url"               validate:"required,url"`
	Method  string            `json:"method"            validate:"required,oneof=GET POST PUT PATCH DELETE"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// UpdateProductStatusAction flips a product's status.
type UpdateProductStatusAction struct {
	Status string `json:"status" validate:"required,min=1,max=50"`
}

// CreateNotificationAction raises an operator-facing notification. Message
// supports {{field}} placeholders.
type CreateNotificationAction struct {
	Message  string               `json:"message"  validate:"required,min=1,max=500"`
	Priority NotificationPriority `json:"priority" validate:"required,oneof=low medium high"`
}

// ActionConfig is a tagged union keyed by Type. Exactly one payload field is
// populated, matching the discriminator.
type ActionConfig struct {
	Type                ActionType                 `json:"type"`
	SendEmail           *SendEmailAction           `json:"-"`
	Tag                 *TagAction                 `json:"-"` // tag_customer, tag_order, tag_product
	Webhook             *WebhookAction             `json:"-"`
	UpdateProductStatus *UpdateProductStatusAction `json:"-"`
	CreateNotification  *CreateNotificationAction  `json:"-"`
}

// MarshalJSON flattens the populated payload next to the type discriminator.
func (c ActionConfig) MarshalJSON() ([]byte, error) {
	payload, err := c.payload()
	if err != nil {
		return nil, err
	}

	return marshalTagged(string(c.Type), payload)
}

// UnmarshalJSON resolves the payload shape from the type discriminator.
func (c *ActionConfig) UnmarshalJSON(data []byte) error {
	var head struct {
		Type ActionType `json:"type"`
	}

	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	c.Type = head.Type

	switch head.Type {
	case ActionSendEmail:
		c.SendEmail = &SendEmailAction{}
		return json.Unmarshal(data, c.SendEmail)
	case ActionTagCustomer, ActionTagOrder, ActionTagProduct:
		c.Tag = &TagAction{}
		return json.Unmarshal(data, c.Tag)
	case ActionWebhook:
		c.Webhook = &WebhookAction{}
		return json.Unmarshal(data, c.Webhook)
	case ActionUpdateProductStatus:
		c.UpdateProductStatus = &UpdateProductStatusAction{}
		return json.Unmarshal(data, c.UpdateProductStatus)
	case ActionCreateNotification:
		c.CreateNotification = &CreateNotificationAction{}
		return json.Unmarshal(data, c.CreateNotification)
	default:
		return fmt.Errorf("unknown action type %q", head.Type)
	}
}

func (c ActionConfig) payload() (any, error) {
	switch c.Type {
	case ActionSendEmail:
		return c.SendEmail, nil
	case ActionTagCustomer, ActionTagOrder, ActionTagProduct:
		return c.Tag, nil
	case ActionWebhook:
		return c.Webhook, nil
	case ActionUpdateProductStatus:
		return c.UpdateProductStatus, nil
	case ActionCreateNotification:
		return c.CreateNotification, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", c.Type)
	}
}
