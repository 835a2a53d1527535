package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vendura/automation/pkg/actions"
	"github.com/vendura/automation/pkg/channels/gochannel"
	"github.com/vendura/automation/pkg/engine"
	"github.com/vendura/automation/pkg/eventbus"
	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/executor"
	"github.com/vendura/automation/pkg/ledger"
	"github.com/vendura/automation/pkg/mocks"
	"github.com/vendura/automation/pkg/models"
)

type countingHandler struct {
	actionType models.ActionType

	mu    sync.Mutex
	calls int
}

func (h *countingHandler) Type() models.ActionType { return h.actionType }

func (h *countingHandler) Invoke(context.Context, *models.ActionConfig, *events.BusinessEvent) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls++

	return map[string]any{"done": true}, nil
}

func (h *countingHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.calls
}

func signupWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:          "wf-welcome",
		Name:        "Welcome tag",
		Status:      models.WorkflowStatusActive,
		TriggerType: models.TriggerCustomerSignedUp,
		TriggerConfig: models.TriggerConfig{
			Type: models.TriggerCustomerSignedUp,
		},
		Nodes: []*models.WorkflowNode{
			{ID: "trigger-1", Kind: models.NodeKindTrigger, Label: "Customer signed up"},
			{
				ID:    "tag-1",
				Label: "Tag new customer",
				Kind:  models.NodeKindAction,
				Action: &models.ActionConfig{
					Type: models.ActionTagCustomer,
					Tag:  &models.TagAction{Tag: "new"},
				},
			},
		},
		Edges: []*models.WorkflowEdge{
			{ID: "e1", Source: "trigger-1", Target: "tag-1"},
		},
	}
}

func newEngine(store *mocks.MockPersistence, memLedger *ledger.MemoryLedger, handler actions.Handler) *engine.Engine {
	registry := actions.NewRegistry(slog.Default())
	registry.Register(handler)

	exec := executor.NewExecutor(registry, slog.Default(),
		executor.WithWaiter(func(context.Context, time.Duration) error { return nil }))

	return engine.NewEngine(store, memLedger, exec, slog.Default())
}

func TestDispatcherRunsMatchedWorkflow(t *testing.T) {
	t.Parallel()

	workflow := signupWorkflow()

	store := &mocks.MockPersistence{}
	store.On("ActiveWorkflows", mock.Anything).Return([]*models.Workflow{workflow}, nil)
	store.On("WorkflowByID", mock.Anything, "wf-welcome").Return(workflow, nil)

	handler := &countingHandler{actionType: models.ActionTagCustomer}
	memLedger := ledger.NewMemoryLedger()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	d := NewDispatcher(store, bus, newEngine(store, memLedger, handler), slog.Default())
	require.NoError(t, d.Start(t.Context()))

	event := &events.BusinessEvent{
		ID:        "evt-signup-1",
		Type:      models.TriggerCustomerSignedUp,
		Data:      map[string]any{"customerId": "cust-1"},
		Timestamp: time.Now(),
	}
	require.NoError(t, bus.PublishBusiness(t.Context(), event))

	require.Eventually(t, func() bool {
		executions, listErr := memLedger.ListByWorkflow(t.Context(), "wf-welcome", 10)

		return listErr == nil && len(executions) == 1 && executions[0].IsFinished()
	}, 2*time.Second, 10*time.Millisecond)

	d.Stop()

	executions, err := memLedger.ListByWorkflow(t.Context(), "wf-welcome", 10)
	require.NoError(t, err)
	require.Len(t, executions, 1)

	execution := executions[0]
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, models.ModeLive, execution.Mode)
	assert.Equal(t, "evt-signup-1", execution.TriggeredBy)
	assert.Equal(t, 1, handler.Calls())
}

func TestDispatcherIgnoresUnmatchedEvent(t *testing.T) {
	t.Parallel()

	store := &mocks.MockPersistence{}
	store.On("ActiveWorkflows", mock.Anything).Return([]*models.Workflow{signupWorkflow()}, nil)

	handler := &countingHandler{actionType: models.ActionTagCustomer}
	memLedger := ledger.NewMemoryLedger()

	d := NewDispatcher(store, nil, newEngine(store, memLedger, handler), slog.Default())

	err := d.handle(t.Context(), &events.BusinessEvent{
		ID:        "evt-order-1",
		Type:      models.TriggerOrderPlaced,
		Data:      map[string]any{"totalAmount": 10.0},
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	d.Stop()

	executions, err := memLedger.ListByWorkflow(t.Context(), "wf-welcome", 10)
	require.NoError(t, err)
	assert.Empty(t, executions)
	assert.Zero(t, handler.Calls())
}

func TestDispatcherReturnsStoreErrorForRedelivery(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("store down")

	store := &mocks.MockPersistence{}
	store.On("ActiveWorkflows", mock.Anything).Return(nil, storeErr)

	d := NewDispatcher(store, nil, nil, slog.Default())

	err := d.handle(t.Context(), &events.BusinessEvent{
		ID:   "evt-1",
		Type: models.TriggerCustomerSignedUp,
	})
	require.ErrorIs(t, err, storeErr)
}
