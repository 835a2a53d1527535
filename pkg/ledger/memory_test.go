package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendura/automation/pkg/models"
)

func execution(id, workflowID string, status models.ExecutionStatus, startedAt time.Time) *models.Execution {
	return &models.Execution{
		ID:          id,
		WorkflowID:  workflowID,
		TriggeredBy: models.TriggeredByManual,
		Mode:        models.ModeLive,
		Status:      status,
		StartedAt:   startedAt,
	}
}

func TestMemoryLedgerAppendAndGet(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()

	original := execution("exec-1", "wf-1", models.ExecutionStatusQueued, time.Now())
	require.NoError(t, ledger.Append(t.Context(), original))

	stored, err := ledger.Get(t.Context(), "exec-1")
	require.NoError(t, err)
	assert.Equal(t, "exec-1", stored.ID)

	// Reads return clones; mutating them never touches the stored record.
	stored.Status = models.ExecutionStatusFailed

	again, err := ledger.Get(t.Context(), "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusQueued, again.Status)
}

func TestMemoryLedgerAppendDuplicate(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()

	require.NoError(t, ledger.Append(t.Context(), execution("exec-1", "wf-1", models.ExecutionStatusQueued, time.Now())))

	err := ledger.Append(t.Context(), execution("exec-1", "wf-1", models.ExecutionStatusQueued, time.Now()))
	assert.ErrorIs(t, err, ErrDuplicateExecution)
}

func TestMemoryLedgerGetUnknown(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()

	_, err := ledger.Get(t.Context(), "exec-missing")
	assert.ErrorIs(t, err, ErrExecutionNotFound)
}

func TestMemoryLedgerUpdateGuardsFinished(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()

	record := execution("exec-1", "wf-1", models.ExecutionStatusRunning, time.Now())
	require.NoError(t, ledger.Append(t.Context(), record))

	// The update that finishes the execution is the last one allowed.
	record.Status = models.ExecutionStatusCompleted
	require.NoError(t, ledger.Update(t.Context(), record))

	record.Status = models.ExecutionStatusFailed
	err := ledger.Update(t.Context(), record)
	assert.ErrorIs(t, err, ErrExecutionFinished)

	stored, err := ledger.Get(t.Context(), "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, stored.Status)
}

func TestMemoryLedgerUpdateUnknown(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()

	err := ledger.Update(t.Context(), execution("exec-ghost", "wf-1", models.ExecutionStatusRunning, time.Now()))
	assert.ErrorIs(t, err, ErrExecutionNotFound)
}

func TestMemoryLedgerListByWorkflow(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	base := time.Now()

	for i, id := range []string{"exec-1", "exec-2", "exec-3"} {
		record := execution(id, "wf-1", models.ExecutionStatusCompleted, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, ledger.Append(t.Context(), record))
	}

	require.NoError(t, ledger.Append(t.Context(), execution("exec-other", "wf-2", models.ExecutionStatusCompleted, base)))

	listed, err := ledger.ListByWorkflow(t.Context(), "wf-1", 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "exec-3", listed[0].ID)
	assert.Equal(t, "exec-1", listed[2].ID)

	limited, err := ledger.ListByWorkflow(t.Context(), "wf-1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "exec-3", limited[0].ID)
}

func TestMemoryLedgerStatsExcludesTestRuns(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	now := time.Now()

	completed := execution("exec-1", "wf-1", models.ExecutionStatusCompleted, now)
	failed := execution("exec-2", "wf-1", models.ExecutionStatusFailed, now)
	testRun := execution("exec-3", "wf-1", models.ExecutionStatusCompleted, now)
	testRun.TriggeredBy = models.TriggeredByTest
	testRun.Mode = models.ModeSimulate

	for _, record := range []*models.Execution{completed, failed, testRun} {
		require.NoError(t, ledger.Append(t.Context(), record))
	}

	stats, err := ledger.Stats(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.InDelta(t, 0.5, stats.SuccessRate, 0.001)
}

func TestMemoryLedgerPrune(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	now := time.Now()

	old := execution("exec-old", "wf-1", models.ExecutionStatusCompleted, now.Add(-48*time.Hour))
	oldRunning := execution("exec-old-running", "wf-1", models.ExecutionStatusRunning, now.Add(-48*time.Hour))
	recent := execution("exec-recent", "wf-1", models.ExecutionStatusCompleted, now)

	for _, record := range []*models.Execution{old, oldRunning, recent} {
		require.NoError(t, ledger.Append(t.Context(), record))
	}

	pruned, err := ledger.Prune(t.Context(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	_, err = ledger.Get(t.Context(), "exec-old")
	assert.ErrorIs(t, err, ErrExecutionNotFound)

	// Unfinished executions are never pruned, however old.
	_, err = ledger.Get(t.Context(), "exec-old-running")
	require.NoError(t, err)

	_, err = ledger.Get(t.Context(), "exec-recent")
	require.NoError(t, err)
}
