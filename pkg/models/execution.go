package models

import "time"

// ExecutionMode selects live dispatch or side-effect-free simulation.
type ExecutionMode string

const (
	ModeLive     ExecutionMode = "live"
	ModeSimulate ExecutionMode = "simulate"
)

// ExecutionStatus is the lifecycle state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusQueued    ExecutionStatus = "queued"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// StepStatus is the lifecycle state of a single node within an execution.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// Engine-level failure codes. These mark faults of the walk itself rather
// than of an individual action handler.
const (
	ErrCodeMissingBranch    = "MISSING_BRANCH"
	ErrCodeInvalidNode      = "INVALID_NODE"
	ErrCodeCancelled        = "CANCELLED"
	ErrCodeExecutionTimeout = "EXECUTION_TIMEOUT"
	ErrCodeActionFailed     = "ACTION_FAILED"
)

// TriggeredByManual and TriggeredByTest are the reserved TriggeredBy values
// for operator-initiated runs. Anything else is a business event ID.
const (
	TriggeredByManual = "manual"
	TriggeredByTest   = "test"
)

// StepResult records the outcome of one node in an execution. Once the step
// reaches completed or failed it is never mutated again.
type StepResult struct {
	NodeID   string         `json:"node_id"`
	Label    string         `json:"label"`
	Status   StepStatus     `json:"status"`
	Input    map[string]any `json:"input,omitempty"`
	Output   any            `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Execution is one run of a workflow graph, live or simulated. Steps are
// appended in graph-traversal order; nodes never reached stay pending.
type Execution struct {
	ID          string          `json:"id"`
	WorkflowID  string          `json:"workflow_id"`
	TriggeredBy string          `json:"triggered_by"`
	Mode        ExecutionMode   `json:"mode"`
	Status      ExecutionStatus `json:"status"`
	ErrorCode   string          `json:"error_code,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Steps       []*StepResult   `json:"steps"`
}

// IsFinished reports whether the execution has reached a terminal status.
func (e *Execution) IsFinished() bool {
	return e.Status == ExecutionStatusCompleted || e.Status == ExecutionStatusFailed
}

// IsTestRun reports whether this execution was started by a test run.
// Test runs are retrievable like any other but excluded from success-rate
// statistics.
func (e *Execution) IsTestRun() bool {
	return e.TriggeredBy == TriggeredByTest
}

// Clone returns a deep copy so ledger reads never leak internal state to
// callers who might mutate it.
func (e *Execution) Clone() *Execution {
	clone := *e

	if e.CompletedAt != nil {
		completedAt := *e.CompletedAt
		clone.CompletedAt = &completedAt
	}

	clone.Steps = make([]*StepResult, len(e.Steps))
	for i, step := range e.Steps {
		stepCopy := *step
		clone.Steps[i] = &stepCopy
	}

	return &clone
}

// StepByNodeID finds the step recorded for a node, or nil.
func (e *Execution) StepByNodeID(nodeID string) *StepResult {
	for _, step := range e.Steps {
		if step.NodeID == nodeID {
			return step
		}
	}

	return nil
}
