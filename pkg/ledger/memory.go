package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vendura/automation/pkg/models"
)

// MemoryLedger is an in-process ledger used by tests and single-node
// deployments.
type MemoryLedger struct {
	mu         sync.RWMutex
	executions map[string]*models.Execution
	byWorkflow map[string][]string
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		executions: make(map[string]*models.Execution),
		byWorkflow: make(map[string][]string),
	}
}

func (l *MemoryLedger) Append(_ context.Context, execution *models.Execution) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.executions[execution.ID]; exists {
		return ErrDuplicateExecution
	}

	l.executions[execution.ID] = execution.Clone()
	l.byWorkflow[execution.WorkflowID] = append(l.byWorkflow[execution.WorkflowID], execution.ID)

	return nil
}

func (l *MemoryLedger) Update(_ context.Context, execution *models.Execution) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.executions[execution.ID]
	if !ok {
		return ErrExecutionNotFound
	}

	if existing.IsFinished() {
		return ErrExecutionFinished
	}

	l.executions[execution.ID] = execution.Clone()

	return nil
}

func (l *MemoryLedger) Get(_ context.Context, executionID string) (*models.Execution, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	execution, ok := l.executions[executionID]
	if !ok {
		return nil, ErrExecutionNotFound
	}

	return execution.Clone(), nil
}

func (l *MemoryLedger) ListByWorkflow(_ context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.byWorkflow[workflowID]

	executions := make([]*models.Execution, 0, len(ids))
	for _, id := range ids {
		if execution, ok := l.executions[id]; ok {
			executions = append(executions, execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	if limit > 0 && len(executions) > limit {
		executions = executions[:limit]
	}

	cloned := make([]*models.Execution, len(executions))
	for i, execution := range executions {
		cloned[i] = execution.Clone()
	}

	return cloned, nil
}

func (l *MemoryLedger) Stats(_ context.Context, workflowID string) (*Stats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.byWorkflow[workflowID]

	executions := make([]*models.Execution, 0, len(ids))
	for _, id := range ids {
		if execution, ok := l.executions[id]; ok {
			executions = append(executions, execution)
		}
	}

	return computeStats(executions), nil
}

func (l *MemoryLedger) Prune(_ context.Context, olderThan time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := 0

	for id, execution := range l.executions {
		if !execution.IsFinished() || !execution.StartedAt.Before(olderThan) {
			continue
		}

		delete(l.executions, id)

		ids := l.byWorkflow[execution.WorkflowID]
		for i, candidate := range ids {
			if candidate == id {
				l.byWorkflow[execution.WorkflowID] = append(ids[:i], ids[i+1:]...)

				break
			}
		}

		pruned++
	}

	return pruned, nil
}

func (l *MemoryLedger) Close(_ context.Context) error {
	return nil
}
