// Package ledger provides the append-only record of workflow executions.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/vendura/automation/pkg/models"
)

var (
	// ErrExecutionNotFound is returned when no execution has the given ID.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrExecutionFinished is returned on an attempt to update an execution
	// that already completed or failed. Finished executions are immutable.
	ErrExecutionFinished = errors.New("execution already finished")

	// ErrDuplicateExecution is returned when an execution ID is appended twice.
	ErrDuplicateExecution = errors.New("execution already recorded")
)

// IsExecutionNotFound reports whether err is an execution-not-found error.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// Stats aggregates a workflow's execution history. Test runs are excluded:
// only live events and manual runs count toward the success rate shown on
// dashboards.
type Stats struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// Ledger stores execution records. Appends insert, updates are only allowed
// while an execution is unfinished, and finished records are never mutated.
type Ledger interface {
	Append(ctx context.Context, execution *models.Execution) error
	Update(ctx context.Context, execution *models.Execution) error
	Get(ctx context.Context, executionID string) (*models.Execution, error)
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error)
	Stats(ctx context.Context, workflowID string) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Time) (int, error)
	Close(ctx context.Context) error
}

func computeStats(executions []*models.Execution) *Stats {
	stats := &Stats{}

	for _, execution := range executions {
		if execution.IsTestRun() {
			continue
		}

		stats.Total++

		switch execution.Status {
		case models.ExecutionStatusCompleted:
			stats.Completed++
		case models.ExecutionStatusFailed:
			stats.Failed++
		}
	}

	if finished := stats.Completed + stats.Failed; finished > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(finished)
	}

	return stats
}
