package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func branchPtr(b BranchLabel) *BranchLabel { return &b }

func floatPtr(f float64) *float64 { return &f }

func TestTriggerConfigJSONFlat(t *testing.T) {
	t.Parallel()

	config := TriggerConfig{
		Type:        TriggerOrderPlaced,
		OrderPlaced: &OrderPlacedTrigger{MinAmount: floatPtr(100)},
	}

	raw, err := json.Marshal(config)
	require.NoError(t, err)

	// The payload sits flat next to the discriminator, no nested object.
	var flat map[string]any

	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "order.placed", flat["type"])
	assert.InDelta(t, 100.0, flat["minAmount"], 0.001)

	var decoded TriggerConfig

	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, TriggerOrderPlaced, decoded.Type)
	require.NotNil(t, decoded.OrderPlaced)
	require.NotNil(t, decoded.OrderPlaced.MinAmount)
	assert.InDelta(t, 100.0, *decoded.OrderPlaced.MinAmount, 0.001)
	assert.Nil(t, decoded.LowStock)
}

func TestActionConfigJSONByDiscriminator(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"type":"tag_customer","tag":"vip"}`)

	var decoded ActionConfig

	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ActionTagCustomer, decoded.Type)
	require.NotNil(t, decoded.Tag)
	assert.Equal(t, "vip", decoded.Tag.Tag)

	encoded, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"tag_customer","tag":"vip"}`, string(encoded))
}

func TestAdjacencyOutgoingBranch(t *testing.T) {
	t.Parallel()

	w := &Workflow{
		Nodes: []*WorkflowNode{
			{ID: "a", Kind: NodeKindTrigger},
			{ID: "b", Kind: NodeKindCondition},
			{ID: "c", Kind: NodeKindAction},
			{ID: "d", Kind: NodeKindAction},
		},
		Edges: []*WorkflowEdge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "c", Branch: branchPtr(BranchTrue)},
			{ID: "e3", Source: "b", Target: "d", Branch: branchPtr(BranchFalse)},
		},
	}

	adj := BuildAdjacency(w)

	assert.Len(t, adj.Outgoing("b"), 2)
	assert.Len(t, adj.Incoming("b"), 1)
	assert.Empty(t, adj.Outgoing("c"))

	trueEdge := adj.OutgoingBranch("b", BranchTrue)
	require.NotNil(t, trueEdge)
	assert.Equal(t, "c", trueEdge.Target)

	assert.Nil(t, adj.OutgoingBranch("a", BranchTrue))
}

func TestHasCycle(t *testing.T) {
	t.Parallel()

	w := &Workflow{
		Nodes: []*WorkflowNode{
			{ID: "a"}, {ID: "b"}, {ID: "c"},
		},
		Edges: []*WorkflowEdge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "c"},
		},
	}

	assert.False(t, BuildAdjacency(w).HasCycle(w.Nodes))

	w.Edges = append(w.Edges, &WorkflowEdge{ID: "e3", Source: "c", Target: "a"})
	assert.True(t, BuildAdjacency(w).HasCycle(w.Nodes))

	// Self-loop.
	w.Edges = []*WorkflowEdge{{ID: "e1", Source: "a", Target: "a"}}
	assert.True(t, BuildAdjacency(w).HasCycle(w.Nodes))
}

func TestWorkflowSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()

	w := &Workflow{
		ID:     "wf-1",
		Name:   "Original",
		Status: WorkflowStatusActive,
		Nodes: []*WorkflowNode{
			{ID: "trigger-1", Kind: NodeKindTrigger, Label: "Start"},
		},
		Edges: []*WorkflowEdge{},
	}

	snapshot := w.Snapshot()

	w.Nodes[0].Label = "Renamed"
	w.Name = "Renamed workflow"

	assert.Equal(t, "Start", snapshot.Nodes[0].Label)
	assert.Equal(t, "Original", snapshot.Name)
}

func TestExecutionClone(t *testing.T) {
	t.Parallel()

	execution := &Execution{
		ID:     "exec-1",
		Status: ExecutionStatusRunning,
		Steps: []*StepResult{
			{NodeID: "n1", Status: StepStatusRunning},
		},
	}

	clone := execution.Clone()
	clone.Steps[0].Status = StepStatusFailed

	assert.Equal(t, StepStatusRunning, execution.Steps[0].Status)
}

func TestExecutionHelpers(t *testing.T) {
	t.Parallel()

	execution := &Execution{Status: ExecutionStatusRunning, TriggeredBy: TriggeredByTest}
	assert.False(t, execution.IsFinished())
	assert.True(t, execution.IsTestRun())

	execution.Status = ExecutionStatusFailed
	assert.True(t, execution.IsFinished())

	execution.Steps = []*StepResult{{NodeID: "n1"}}
	assert.NotNil(t, execution.StepByNodeID("n1"))
	assert.Nil(t, execution.StepByNodeID("ghost"))
}
