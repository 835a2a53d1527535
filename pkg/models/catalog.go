package models

// CatalogEntry is static UI metadata for one trigger or action type. The
// graph editor renders its palette from these tables; they are fixed at
// compile time and never derived at runtime.
type CatalogEntry struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`
}

// TriggerCatalog maps every trigger type to its editor metadata.
var TriggerCatalog = map[TriggerType]CatalogEntry{
	TriggerOrderPlaced: {
		Type:        string(TriggerOrderPlaced),
		Name:        "Order Placed",
		Description: "Fires when a customer places an order, optionally filtered by order total.",
		Category:    "orders",
		Icon:        "shopping-cart",
	},
	TriggerInventoryLowStock: {
		Type:        string(TriggerInventoryLowStock),
		Name:        "Low Stock",
		Description: "Fires when a product's stock level drops to or below a threshold.",
		Category:    "inventory",
		Icon:        "package",
	},
	TriggerCustomerSignedUp: {
		Type:        string(TriggerCustomerSignedUp),
		Name:        "Customer Signed Up",
		Description: "Fires when a new customer account is created.",
		Category:    "customers",
		Icon:        "user-plus",
	},
	TriggerProductUpdated: {
		Type:        string(TriggerProductUpdated),
		Name:        "Product Updated",
		Description: "Fires when a product changes, optionally restricted to one product.",
		Category:    "catalog",
		Icon:        "edit",
	},
	TriggerCartAbandoned: {
		Type:        string(TriggerCartAbandoned),
		Name:        "Cart Abandoned",
		Description: "Fires when a cart is left inactive, optionally filtered by cart value.",
		Category:    "orders",
		Icon:        "shopping-bag",
	},
	TriggerManual: {
		Type:        string(TriggerManual),
		Name:        "Manual",
		Description: "Runs only when started explicitly by an operator.",
		Category:    "manual",
		Icon:        "play",
	},
}

// ActionCatalog maps every action type to its editor metadata.
var ActionCatalog = map[ActionType]CatalogEntry{
	ActionSendEmail: {
		Type:        string(ActionSendEmail),
		Name:        "Send Email",
		Description: "Sends a templated email to an address taken from the event.",
		Category:    "messaging",
		Icon:        "mail",
	},
	ActionTagCustomer: {
		Type:        string(ActionTagCustomer),
		Name:        "Tag Customer",
		Description: "Attaches a tag to the customer on the event.",
		Category:    "customers",
		Icon:        "tag",
	},
	ActionTagOrder: {
		Type:        string(ActionTagOrder),
		Name:        "Tag Order",
		Description: "Attaches a tag to the order on the event.",
		Category:    "orders",
		Icon:        "tag",
	},
	ActionTagProduct: {
		Type:        string(ActionTagProduct),
		Name:        "Tag Product",
		Description: "Attaches a tag to the product on the event.",
		Category:    "catalog",
		Icon:        "tag",
	},
	ActionWebhook: {
		Type:        string(ActionWebhook),
		Name:        "Webhook",
		Description: "Calls an external HTTP endpoint with a templated body.",
		Category:    "integrations",
		Icon:        "globe",
	},
	ActionUpdateProductStatus: {
		Type:        string(ActionUpdateProductStatus),
		Name:        "Update Product Status",
		Description: "Changes the status of the product on the event.",
		Category:    "catalog",
		Icon:        "refresh-cw",
	},
	ActionCreateNotification: {
		Type:        string(ActionCreateNotification),
		Name:        "Create Notification",
		Description: "Raises an operator-facing notification.",
		Category:    "messaging",
		Icon:        "bell",
	},
}
