package models

import (
	"encoding/json"
	"fmt"
)

// TriggerType enumerates the closed set of business events a workflow can be
// activated by.
type TriggerType string

const (
	TriggerOrderPlaced       TriggerType = "order.placed"
	TriggerInventoryLowStock TriggerType = "inventory.low_stock"
	TriggerCustomerSignedUp  TriggerType = "customer.signed_up"
	TriggerProductUpdated    TriggerType = "product.updated"
	TriggerCartAbandoned     TriggerType = "cart.abandoned"
	TriggerManual            TriggerType = "manual"
)

// ValidTriggerTypes lists every supported trigger type.
var ValidTriggerTypes = []TriggerType{
	TriggerOrderPlaced,
	TriggerInventoryLowStock,
	TriggerCustomerSignedUp,
	TriggerProductUpdated,
	TriggerCartAbandoned,
	TriggerManual,
}

// IsValidTriggerType reports whether t names a supported trigger type.
func IsValidTriggerType(t TriggerType) bool {
	for _, valid := range ValidTriggerTypes {
		if t == valid {
			return true
		}
	}

	return false
}

// OrderPlacedTrigger filters order.placed events by total amount. An unset
// bound matches anything.
type OrderPlacedTrigger struct {
	MinAmount *float64 `json:"minAmount,omitempty"`
	MaxAmount *float64 `json:"maxAmount,omitempty"`
}

// LowStockTrigger fires when a product's stock drops to or below Threshold.
type LowStockTrigger struct {
	Threshold int `json:"threshold"`
}

// CustomerSignedUpTrigger carries no filters: every sign-up matches.
type CustomerSignedUpTrigger struct{}

// ProductUpdatedTrigger optionally restricts matching to a single product.
type ProductUpdatedTrigger struct {
	ProductID string `json:"productId,omitempty"`
}

// CartAbandonedTrigger optionally filters by minimum cart value.
type CartAbandonedTrigger struct {
	MinValue *float64 `json:"minValue,omitempty"`
}

// ManualTrigger carries no fields; manual workflows only run on explicit
// operator request and never match live events.
type ManualTrigger struct{}

// TriggerConfig is a tagged union keyed by Type. Exactly one payload field is
// populated, matching the discriminator. The zero value is invalid.
type TriggerConfig struct {
	Type             TriggerType              `json:"type"`
	OrderPlaced      *OrderPlacedTrigger      `json:"-"`
	LowStock         *LowStockTrigger         `json:"-"`
	CustomerSignedUp *CustomerSignedUpTrigger `json:"-"`
	ProductUpdated   *ProductUpdatedTrigger   `json:"-"`
	CartAbandoned    *CartAbandonedTrigger    `json:"-"`
	Manual           *ManualTrigger           `json:"-"`
}

// MarshalJSON flattens the populated payload next to the type discriminator.
func (c TriggerConfig) MarshalJSON() ([]byte, error) {
	payload, err := c.payload()
	if err != nil {
		return nil, err
	}

	return marshalTagged(string(c.Type), payload)
}

// UnmarshalJSON resolves the payload shape from the type discriminator.
func (c *TriggerConfig) UnmarshalJSON(data []byte) error {
	var head struct {
		Type TriggerType `json:"type"`
	}

	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	c.Type = head.Type

	switch head.Type {
	case TriggerOrderPlaced:
		c.OrderPlaced = &OrderPlacedTrigger{}
		return json.Unmarshal(data, c.OrderPlaced)
	case TriggerInventoryLowStock:
		c.LowStock = &LowStockTrigger{}
		return json.Unmarshal(data, c.LowStock)
	case TriggerCustomerSignedUp:
		c.CustomerSignedUp = &CustomerSignedUpTrigger{}
		return nil
	case TriggerProductUpdated:
		c.ProductUpdated = &ProductUpdatedTrigger{}
		return json.Unmarshal(data, c.ProductUpdated)
	case TriggerCartAbandoned:
		c.CartAbandoned = &CartAbandonedTrigger{}
		return json.Unmarshal(data, c.CartAbandoned)
	case TriggerManual:
		c.Manual = &ManualTrigger{}
		return nil
	default:
		return fmt.Errorf("unknown trigger type %q", head.Type)
	}
}

func (c TriggerConfig) payload() (any, error) {
	switch c.Type {
	case TriggerOrderPlaced:
		return c.OrderPlaced, nil
	case TriggerInventoryLowStock:
		return c.LowStock, nil
	case TriggerCustomerSignedUp:
		return c.CustomerSignedUp, nil
	case TriggerProductUpdated:
		return c.ProductUpdated, nil
	case TriggerCartAbandoned:
		return c.CartAbandoned, nil
	case TriggerManual:
		return c.Manual, nil
	default:
		return nil, fmt.Errorf("unknown trigger type %q", c.Type)
	}
}

// marshalTagged merges a payload struct with its type discriminator into a
// single flat JSON object.
func marshalTagged(typ string, payload any) ([]byte, error) {
	merged := map[string]any{"type": typ}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		fields := map[string]any{}
		if err := json.Unmarshal(raw, &fields); err == nil {
			for k, v := range fields {
				merged[k] = v
			}
		}
	}

	return json.Marshal(merged)
}
