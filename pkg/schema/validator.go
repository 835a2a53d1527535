// Package schema validates workflow definitions structurally and semantically
// before they can be activated or executed.
package schema

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vendura/automation/pkg/models"
)

var graphIDPattern = regexp.MustCompile(`^[A-Za-z0-9-_]+$`)

// Result is the outcome of validating a workflow. Errors is a flat list of
// "path: message" strings so a UI can highlight every problem at once.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validator checks workflow definitions. It is stateless and safe for
// concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a workflow validator with the graphid rule registered
// and json tag names used in error paths.
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("graphid", func(fl validator.FieldLevel) bool {
		return graphIDPattern.MatchString(fl.Field().String())
	})

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{validate: v}
}

// Validate checks the workflow in order: field shapes, node and edge
// uniqueness and referential integrity, trigger/condition/action config
// unions, condition branch completeness, acyclicity. All errors are
// collected, never short-circuited. It never mutates the workflow.
func (v *Validator) Validate(w *models.Workflow) Result {
	var errs []string

	if w == nil {
		return Result{Valid: false, Errors: []string{"workflow: must not be nil"}}
	}

	errs = append(errs, v.fieldErrors(w)...)
	errs = append(errs, v.uniquenessErrors(w)...)
	errs = append(errs, v.referenceErrors(w)...)
	errs = append(errs, v.triggerErrors(w)...)
	errs = append(errs, v.nodeConfigErrors(w)...)
	errs = append(errs, v.branchErrors(w)...)
	errs = append(errs, v.cycleErrors(w)...)

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// fieldErrors covers lengths, regexes, enum membership and numeric bounds via
// struct tags.
func (v *Validator) fieldErrors(w *models.Workflow) []string {
	var errs []string

	if err := v.validate.Struct(w); err != nil {
		var invalid validator.ValidationErrors
		if ok := asValidationErrors(err, &invalid); ok {
			for _, fe := range invalid {
				errs = append(errs, fieldPath(fe)+": "+fieldMessage(fe))
			}
		} else {
			errs = append(errs, "workflow: "+err.Error())
		}
	}

	for _, node := range w.Nodes {
		if err := v.validate.Struct(node); err != nil {
			var invalid validator.ValidationErrors
			if ok := asValidationErrors(err, &invalid); ok {
				for _, fe := range invalid {
					errs = append(errs, nodePath(node.ID, fieldPath(fe))+": "+fieldMessage(fe))
				}
			}
		}
	}

	for _, edge := range w.Edges {
		if err := v.validate.Struct(edge); err != nil {
			var invalid validator.ValidationErrors
			if ok := asValidationErrors(err, &invalid); ok {
				for _, fe := range invalid {
					errs = append(errs, edgePath(edge.ID, fieldPath(fe))+": "+fieldMessage(fe))
				}
			}
		}

		if edge.Branch != nil && *edge.Branch != models.BranchTrue && *edge.Branch != models.BranchFalse {
			errs = append(errs, edgePath(edge.ID, "branch")+": must be \"true\" or \"false\"")
		}
	}

	return errs
}

func (v *Validator) uniquenessErrors(w *models.Workflow) []string {
	var errs []string

	seenNodes := make(map[string]bool, len(w.Nodes))
	for _, node := range w.Nodes {
		if node.ID == "" {
			continue
		}

		if seenNodes[node.ID] {
			errs = append(errs, nodePath(node.ID, "id")+": duplicate node id")
		}

		seenNodes[node.ID] = true
	}

	seenEdges := make(map[string]bool, len(w.Edges))
	for _, edge := range w.Edges {
		if edge.ID == "" {
			continue
		}

		if seenEdges[edge.ID] {
			errs = append(errs, edgePath(edge.ID, "id")+": duplicate edge id")
		}

		seenEdges[edge.ID] = true
	}

	return errs
}

func (v *Validator) referenceErrors(w *models.Workflow) []string {
	var errs []string

	nodeIDs := make(map[string]bool, len(w.Nodes))
	for _, node := range w.Nodes {
		nodeIDs[node.ID] = true
	}

	for _, edge := range w.Edges {
		if edge.Source != "" && !nodeIDs[edge.Source] {
			errs = append(errs, edgePath(edge.ID, "source")+": references unknown node "+quote(edge.Source))
		}

		if edge.Target != "" && !nodeIDs[edge.Target] {
			errs = append(errs, edgePath(edge.ID, "target")+": references unknown node "+quote(edge.Target))
		}
	}

	return errs
}

// triggerErrors checks the single-trigger invariant and the workflow-level
// trigger configuration.
func (v *Validator) triggerErrors(w *models.Workflow) []string {
	var errs []string

	adj := models.BuildAdjacency(w)

	var triggers []*models.WorkflowNode

	for _, node := range w.Nodes {
		if node.IsTrigger() {
			triggers = append(triggers, node)
		}
	}

	switch len(triggers) {
	case 0:
		errs = append(errs, "nodes: workflow must have exactly one trigger node")
	case 1:
		trigger := triggers[0]
		if len(adj.Incoming(trigger.ID)) > 0 {
			errs = append(errs, nodePath(trigger.ID, "")+": trigger node must not have incoming edges")
		}

		if trigger.Condition != nil || trigger.Action != nil {
			errs = append(errs, nodePath(trigger.ID, "")+": trigger node must not carry condition or action config")
		}
	default:
		for _, trigger := range triggers[1:] {
			errs = append(errs, nodePath(trigger.ID, "kind")+": workflow already has a trigger node")
		}
	}

	if !models.IsValidTriggerType(w.TriggerType) {
		errs = append(errs, fmt.Sprintf("trigger_type: unknown trigger type %q", w.TriggerType))

		return errs
	}

	if w.TriggerConfig.Type != w.TriggerType {
		errs = append(errs, fmt.Sprintf("trigger_config.type: %q does not match workflow trigger type %q",
			w.TriggerConfig.Type, w.TriggerType))
	}

	for _, msg := range validateTriggerPayload(&w.TriggerConfig) {
		errs = append(errs, "trigger_config: "+msg)
	}

	return errs
}

// nodeConfigErrors resolves each node's config union by kind and validates
// the payload against its type.
func (v *Validator) nodeConfigErrors(w *models.Workflow) []string {
	var errs []string

	for _, node := range w.Nodes {
		switch node.Kind {
		case models.NodeKindCondition:
			if node.Action != nil {
				errs = append(errs, nodePath(node.ID, "action")+": condition node must not carry action config")
			}

			if node.Condition == nil {
				errs = append(errs, nodePath(node.ID, "condition")+": condition node requires condition config")

				continue
			}

			if err := v.validate.Struct(node.Condition); err != nil {
				var invalid validator.ValidationErrors
				if ok := asValidationErrors(err, &invalid); ok {
					for _, fe := range invalid {
						errs = append(errs, nodePath(node.ID, "condition."+jsonName(fe))+": "+fieldMessage(fe))
					}
				}
			}
		case models.NodeKindAction:
			if node.Condition != nil {
				errs = append(errs, nodePath(node.ID, "condition")+": action node must not carry condition config")
			}

			if node.Action == nil {
				errs = append(errs, nodePath(node.ID, "action")+": action node requires action config")

				continue
			}

			for _, msg := range v.validateActionPayload(node.Action) {
				errs = append(errs, nodePath(node.ID, "action")+": "+msg)
			}
		case models.NodeKindTrigger:
			// Covered by triggerErrors.
		}
	}

	return errs
}

// branchErrors enforces condition branch completeness: exactly two outgoing
// edges per condition node, one true and one false, and branch labels only on
// edges leaving condition nodes.
func (v *Validator) branchErrors(w *models.Workflow) []string {
	var errs []string

	adj := models.BuildAdjacency(w)

	for _, node := range w.Nodes {
		outgoing := adj.Outgoing(node.ID)

		if !node.IsCondition() {
			for _, edge := range outgoing {
				if edge.Branch != nil {
					errs = append(errs, edgePath(edge.ID, "branch")+": branch label only allowed on edges leaving a condition node")
				}
			}

			// Only condition nodes branch; everything else is a straight line.
			if len(outgoing) > 1 {
				errs = append(errs, nodePath(node.ID, "")+": only condition nodes may have more than one outgoing edge")
			}

			continue
		}

		var hasTrue, hasFalse bool

		for _, edge := range outgoing {
			switch {
			case edge.Branch == nil:
				errs = append(errs, edgePath(edge.ID, "branch")+": edge leaving condition node requires a branch label")
			case *edge.Branch == models.BranchTrue:
				if hasTrue {
					errs = append(errs, edgePath(edge.ID, "branch")+": duplicate true branch")
				}

				hasTrue = true
			case *edge.Branch == models.BranchFalse:
				if hasFalse {
					errs = append(errs, edgePath(edge.ID, "branch")+": duplicate false branch")
				}

				hasFalse = true
			}
		}

		if !hasTrue {
			errs = append(errs, nodePath(node.ID, "")+": condition node is missing a true branch edge")
		}

		if !hasFalse {
			errs = append(errs, nodePath(node.ID, "")+": condition node is missing a false branch edge")
		}
	}

	return errs
}

func (v *Validator) cycleErrors(w *models.Workflow) []string {
	adj := models.BuildAdjacency(w)

	if adj.HasCycle(w.Nodes) {
		return []string{"edges: graph contains a cycle; workflows must be acyclic"}
	}

	return nil
}

// validateTriggerPayload applies the semantic checks struct tags cannot
// express to a resolved trigger config.
func validateTriggerPayload(c *models.TriggerConfig) []string {
	var errs []string

	switch c.Type {
	case models.TriggerOrderPlaced:
		if c.OrderPlaced == nil {
			return []string{"missing order.placed payload"}
		}

		if c.OrderPlaced.MinAmount != nil && *c.OrderPlaced.MinAmount < 0 {
			errs = append(errs, "minAmount: must not be negative")
		}

		if c.OrderPlaced.MaxAmount != nil && *c.OrderPlaced.MaxAmount < 0 {
			errs = append(errs, "maxAmount: must not be negative")
		}

		if c.OrderPlaced.MinAmount != nil && c.OrderPlaced.MaxAmount != nil &&
			*c.OrderPlaced.MinAmount > *c.OrderPlaced.MaxAmount {
			errs = append(errs, "minAmount: must not exceed maxAmount")
		}
	case models.TriggerInventoryLowStock:
		if c.LowStock == nil {
			return []string{"missing inventory.low_stock payload"}
		}

		if c.LowStock.Threshold <= 0 {
			errs = append(errs, "threshold: must be a positive integer")
		}
	case models.TriggerCartAbandoned:
		if c.CartAbandoned == nil {
			return []string{"missing cart.abandoned payload"}
		}

		if c.CartAbandoned.MinValue != nil && *c.CartAbandoned.MinValue < 0 {
			errs = append(errs, "minValue: must not be negative")
		}
	case models.TriggerCustomerSignedUp, models.TriggerProductUpdated, models.TriggerManual:
		// No bounds to check.
	default:
		errs = append(errs, fmt.Sprintf("unknown trigger type %q", c.Type))
	}

	return errs
}

// validateActionPayload applies the semantic checks struct tags cannot
// express to a resolved action config.
func (v *Validator) validateActionPayload(c *models.ActionConfig) []string {
	if !models.IsValidActionType(c.Type) {
		return []string{fmt.Sprintf("unknown action type %q", c.Type)}
	}

	var errs []string

	switch c.Type {
	case models.ActionSendEmail:
		if c.SendEmail == nil {
			return []string{"missing send_email payload"}
		}

		errs = append(errs, payloadFieldErrors(v, c.SendEmail)...)
	case models.ActionTagCustomer, models.ActionTagOrder, models.ActionTagProduct:
		if c.Tag == nil {
			return []string{fmt.Sprintf("missing %s payload", c.Type)}
		}

		errs = append(errs, payloadFieldErrors(v, c.Tag)...)
	case models.ActionWebhook:
		if c.Webhook == nil {
			return []string{"missing webhook payload"}
		}

		errs = append(errs, payloadFieldErrors(v, c.Webhook)...)

		if !isHTTPURL(c.Webhook.URL) {
			errs = append(errs, "url: URL must be a valid HTTP(S) URL")
		}
	case models.ActionUpdateProductStatus:
		if c.UpdateProductStatus == nil {
			return []string{"missing update_product_status payload"}
		}

		errs = append(errs, payloadFieldErrors(v, c.UpdateProductStatus)...)
	case models.ActionCreateNotification:
		if c.CreateNotification == nil {
			return []string{"missing create_notification payload"}
		}

		errs = append(errs, payloadFieldErrors(v, c.CreateNotification)...)
	}

	return errs
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func nodePath(nodeID, field string) string {
	if field == "" {
		return "nodes[" + nodeID + "]"
	}

	return "nodes[" + nodeID + "]." + field
}

func edgePath(edgeID, field string) string {
	return "edges[" + edgeID + "]." + field
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
