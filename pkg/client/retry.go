package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// RetryPolicy bounds GrantWithRetry. The delay doubles after every failed attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// GrantWithRetry calls GrantReward until it succeeds, fails with a
// non-retryable error, or runs out of attempts. The last error is returned.
func GrantWithRetry(ctx context.Context, c RewardClient, playerID string, reward domain.Reward, policy RetryPolicy, logger *slog.Logger) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = c.GrantReward(ctx, playerID, reward); err == nil {
			return nil
		}
		if !IsRetryableError(err) || attempt == attempts {
			break
		}

		delay := policy.BaseDelay << (attempt - 1)
		logger.Warn("reward grant failed, retrying",
			"player_id", playerID,
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
