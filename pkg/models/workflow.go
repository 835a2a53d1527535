// Package models defines the core domain models for the workflow automation engine.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, test-runnable, never matched live
	WorkflowStatusActive   WorkflowStatus = "active"   // Matched against live events
	WorkflowStatusPaused   WorkflowStatus = "paused"   // Temporarily excluded from matching
	WorkflowStatusArchived WorkflowStatus = "archived" // Read-only, excluded from matching
)

// ValidWorkflowStatuses lists every status a workflow may carry.
var ValidWorkflowStatuses = []WorkflowStatus{
	WorkflowStatusDraft,
	WorkflowStatusActive,
	WorkflowStatusPaused,
	WorkflowStatusArchived,
}

// Workflow is the persisted aggregate: a directed graph of one trigger node,
// condition nodes and action nodes, plus the trigger configuration that
// decides which business events activate it.
type Workflow struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"           validate:"required,min=1,max=100"`
	Description   string          `json:"description"    validate:"max=500"`
	Status        WorkflowStatus  `json:"status"         validate:"required,oneof=draft active paused archived"`
	TriggerType   TriggerType     `json:"trigger_type"   validate:"required"`
	TriggerConfig TriggerConfig   `json:"trigger_config" validate:"-"`
	Nodes         []*WorkflowNode `json:"nodes"          validate:"required,min=1,max=100"`
	Edges         []*WorkflowEdge `json:"edges"          validate:"max=200"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CreatedBy     string          `json:"created_by"`
}

// TriggerNode returns the single trigger node, or nil when the graph has none.
// Validation guarantees exactly one on any workflow that reaches execution.
func (w *Workflow) TriggerNode() *WorkflowNode {
	for _, node := range w.Nodes {
		if node.Kind == NodeKindTrigger {
			return node
		}
	}

	return nil
}

// NodeByID looks a node up by its workflow-unique ID.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// IsExecutable reports whether live event matching may select this workflow.
func (w *Workflow) IsExecutable() bool {
	return w.Status == WorkflowStatusActive
}

// Snapshot returns a deep copy of the node and edge set so an in-flight
// execution is unaffected by concurrent edits to the workflow.
func (w *Workflow) Snapshot() *Workflow {
	snapshot := *w

	snapshot.Nodes = make([]*WorkflowNode, len(w.Nodes))
	for i, node := range w.Nodes {
		nodeCopy := *node
		snapshot.Nodes[i] = &nodeCopy
	}

	snapshot.Edges = make([]*WorkflowEdge, len(w.Edges))
	for i, edge := range w.Edges {
		edgeCopy := *edge
		snapshot.Edges[i] = &edgeCopy
	}

	return &snapshot
}
