package models

// NodeKind discriminates the three node shapes a workflow graph is built from.
type NodeKind string

const (
	NodeKindTrigger   NodeKind = "trigger"   // Entry point, exactly one per workflow
	NodeKindCondition NodeKind = "condition" // Binary branch point
	NodeKindAction    NodeKind = "action"    // Side-effecting step
)

// BranchLabel labels an edge leaving a condition node.
type BranchLabel string

const (
	BranchTrue  BranchLabel = "true"
	BranchFalse BranchLabel = "false"
)

// WorkflowNode is one step in the graph. Config is kind-specific: trigger
// nodes carry none (the workflow-level trigger config applies), condition
// nodes carry a ConditionConfig and action nodes an ActionConfig.
type WorkflowNode struct {
	ID        string           `json:"id"                  validate:"required,graphid"`
	Kind      NodeKind         `json:"kind"                validate:"required,oneof=trigger condition action"`
	Label     string           `json:"label"               validate:"required,min=1,max=100"`
	Condition *ConditionConfig `json:"condition,omitempty" validate:"-"`
	Action    *ActionConfig    `json:"action,omitempty"    validate:"-"`
}

func (n *WorkflowNode) IsTrigger() bool   { return n.Kind == NodeKindTrigger }
func (n *WorkflowNode) IsCondition() bool { return n.Kind == NodeKindCondition }
func (n *WorkflowNode) IsAction() bool    { return n.Kind == NodeKindAction }

// WorkflowEdge is a directed connection between two nodes. Branch is set only
// on edges leaving a condition node.
type WorkflowEdge struct {
	ID     string       `json:"id"               validate:"required"`
	Source string       `json:"source"           validate:"required"`
	Target string       `json:"target"           validate:"required"`
	Branch *BranchLabel `json:"branch,omitempty"`
	Label  string       `json:"label,omitempty"  validate:"max=100"`
}
