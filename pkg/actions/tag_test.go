package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

type recordedTag struct {
	entity string
	tag    string
}

type fakeTagStore struct {
	customers []recordedTag
	orders    []recordedTag
	products  []recordedTag
}

func (s *fakeTagStore) TagCustomer(_ context.Context, customerID, tag string) error {
	s.customers = append(s.customers, recordedTag{customerID, tag})

	return nil
}

func (s *fakeTagStore) TagOrder(_ context.Context, orderID, tag string) error {
	s.orders = append(s.orders, recordedTag{orderID, tag})

	return nil
}

func (s *fakeTagStore) TagProduct(_ context.Context, productID, tag string) error {
	s.products = append(s.products, recordedTag{productID, tag})

	return nil
}

func tagEvent(data map[string]any) *events.BusinessEvent {
	return &events.BusinessEvent{
		ID:        "evt-1",
		Type:      models.TriggerOrderPlaced,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func TestTagHandlerRoutesByActionType(t *testing.T) {
	t.Parallel()

	store := &fakeTagStore{}

	config := &models.ActionConfig{
		Type: models.ActionTagCustomer,
		Tag:  &models.TagAction{Tag: "vip"},
	}

	handler := NewTagHandler(models.ActionTagCustomer, store)

	output, err := handler.Invoke(t.Context(), config, tagEvent(map[string]any{"customerId": "cust-7"}))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"tag": "vip", "entity": "cust-7"}, output)
	require.Len(t, store.customers, 1)
	assert.Equal(t, recordedTag{"cust-7", "vip"}, store.customers[0])
	assert.Empty(t, store.orders)
}

func TestTagHandlerMissingEntityIsPermanent(t *testing.T) {
	t.Parallel()

	handler := NewTagHandler(models.ActionTagOrder, &fakeTagStore{})

	config := &models.ActionConfig{
		Type: models.ActionTagOrder,
		Tag:  &models.TagAction{Tag: "review"},
	}

	_, err := handler.Invoke(t.Context(), config, tagEvent(map[string]any{"customerId": "cust-7"}))
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.Contains(t, err.Error(), "orderId")
}

func TestSimulateDescriptions(t *testing.T) {
	t.Parallel()

	event := tagEvent(map[string]any{
		"customer": map[string]any{"email": "anna@example.com"},
		"orderId":  "ord-1",
	})

	tests := []struct {
		name   string
		config *models.ActionConfig
		want   string
	}{
		{
			"send email",
			&models.ActionConfig{
				Type: models.ActionSendEmail,
				SendEmail: &models.SendEmailAction{
					Subject:        "Thanks!",
					RecipientField: "customer.email",
				},
			},
			`would send email to anna@example.com with subject "Thanks!"`,
		},
		{
			"tag order",
			&models.ActionConfig{
				Type: models.ActionTagOrder,
				Tag:  &models.TagAction{Tag: "review"},
			},
			`would apply tag "review" to ord-1`,
		},
		{
			"webhook",
			&models.ActionConfig{
				Type: models.ActionWebhook,
				Webhook: &models.WebhookAction{
					URL:    "https://hooks.example.com/x",
					Method: "POST",
				},
			},
			"would call POST https://hooks.example.com/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			output := Simulate(tt.config, event)
			assert.Equal(t, true, output["simulated"])
			assert.Equal(t, tt.want, output["description"])
		})
	}
}
