package cmd

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vendura/automation/pkg/ledger"
)

// NewLedger builds the execution ledger. An empty URL selects the in-memory
// ledger; a redis:// URL selects the Redis-backed one.
func NewLedger(redisURL string) (ledger.Ledger, error) {
	if redisURL == "" {
		return ledger.NewMemoryLedger(), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse ledger URL: %w", err)
	}

	return ledger.NewRedisLedger(redis.NewClient(opts)), nil
}
