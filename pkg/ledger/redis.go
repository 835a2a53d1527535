package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/vendura/automation/pkg/models"
)

const (
	executionKeyPrefix = "vendura:execution:"
	workflowIndexKey   = "vendura:executions:workflow:"
)

// RedisLedger stores executions as JSON values with a per-workflow sorted
// set indexed by start time for history queries.
type RedisLedger struct {
	client redis.UniversalClient
}

// NewRedisLedger creates a ledger over an existing redis client.
func NewRedisLedger(client redis.UniversalClient) *RedisLedger {
	return &RedisLedger{client: client}
}

func executionKey(id string) string {
	return executionKeyPrefix + id
}

func indexKey(workflowID string) string {
	return workflowIndexKey + workflowID
}

func (l *RedisLedger) Append(ctx context.Context, execution *models.Execution) error {
	payload, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("marshal execution: %w", err)
	}

	created, err := l.client.SetNX(ctx, executionKey(execution.ID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store execution: %w", err)
	}

	if !created {
		return ErrDuplicateExecution
	}

	err = l.client.ZAdd(ctx, indexKey(execution.WorkflowID), redis.Z{
		Score:  float64(execution.StartedAt.UnixNano()),
		Member: execution.ID,
	}).Err()
	if err != nil {
		return fmt.Errorf("index execution: %w", err)
	}

	return nil
}

func (l *RedisLedger) Update(ctx context.Context, execution *models.Execution) error {
	existing, err := l.Get(ctx, execution.ID)
	if err != nil {
		return err
	}

	if existing.IsFinished() {
		return ErrExecutionFinished
	}

	payload, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("marshal execution: %w", err)
	}

	if err := l.client.Set(ctx, executionKey(execution.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("store execution: %w", err)
	}

	return nil
}

func (l *RedisLedger) Get(ctx context.Context, executionID string) (*models.Execution, error) {
	payload, err := l.client.Get(ctx, executionKey(executionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrExecutionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("fetch execution: %w", err)
	}

	var execution models.Execution
	if err := json.Unmarshal(payload, &execution); err != nil {
		return nil, fmt.Errorf("decode execution: %w", err)
	}

	return &execution, nil
}

func (l *RedisLedger) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := l.client.ZRevRange(ctx, indexKey(workflowID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}

	executions := make([]*models.Execution, 0, len(ids))

	for _, id := range ids {
		execution, err := l.Get(ctx, id)
		if errors.Is(err, ErrExecutionNotFound) {
			continue // pruned between index read and fetch
		}

		if err != nil {
			return nil, err
		}

		executions = append(executions, execution)
	}

	return executions, nil
}

func (l *RedisLedger) Stats(ctx context.Context, workflowID string) (*Stats, error) {
	executions, err := l.ListByWorkflow(ctx, workflowID, 0)
	if err != nil {
		return nil, err
	}

	return computeStats(executions), nil
}

func (l *RedisLedger) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	pruned := 0

	var cursor uint64

	for {
		keys, next, err := l.client.Scan(ctx, cursor, workflowIndexKey+"*", 100).Result()
		if err != nil {
			return pruned, fmt.Errorf("scan workflow indexes: %w", err)
		}

		for _, key := range keys {
			maxScore := fmt.Sprintf("%d", olderThan.UnixNano())

			ids, err := l.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: "-inf", Max: maxScore}).Result()
			if err != nil {
				return pruned, fmt.Errorf("list stale executions: %w", err)
			}

			for _, id := range ids {
				execution, err := l.Get(ctx, id)
				if err == nil && !execution.IsFinished() {
					continue
				}

				if err := l.client.Del(ctx, executionKey(id)).Err(); err != nil {
					return pruned, fmt.Errorf("delete execution: %w", err)
				}

				if err := l.client.ZRem(ctx, key, id).Err(); err != nil {
					return pruned, fmt.Errorf("deindex execution: %w", err)
				}

				pruned++
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return pruned, nil
}

func (l *RedisLedger) Close(_ context.Context) error {
	return l.client.Close()
}
