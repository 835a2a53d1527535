// Package web provides the HTTP API for workflow management and execution.
package web

import "github.com/vendura/automation/pkg/models"

// SaveWorkflowRequest is the body for creating or replacing a workflow.
// The graph travels whole; nodes and edges are not managed piecemeal.
type SaveWorkflowRequest struct {
	Name          string                 `json:"name"           validate:"required,min=1,max=100"`
	Description   string                 `json:"description"    validate:"max=500"`
	TriggerType   models.TriggerType     `json:"trigger_type"   validate:"required"`
	TriggerConfig *models.TriggerConfig  `json:"trigger_config"`
	Nodes         []*models.WorkflowNode `json:"nodes"`
	Edges         []*models.WorkflowEdge `json:"edges"`
}

// Workflow builds the model the service layer operates on.
func (r *SaveWorkflowRequest) Workflow() *models.Workflow {
	workflow := &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		TriggerType: r.TriggerType,
		Nodes:       r.Nodes,
		Edges:       r.Edges,
	}

	if r.TriggerConfig != nil {
		workflow.TriggerConfig = *r.TriggerConfig
	}

	return workflow
}

// SetStatusRequest is the body for status transitions.
type SetStatusRequest struct {
	Status models.WorkflowStatus `json:"status" validate:"required,oneof=draft active paused archived"`
}

// RunRequest is the body for the manual run endpoint. Payload is the sample
// business event data the run is fed.
type RunRequest struct {
	Mode    models.ExecutionMode `json:"mode"    validate:"required,oneof=live simulate"`
	Payload map[string]any       `json:"payload"`
}
