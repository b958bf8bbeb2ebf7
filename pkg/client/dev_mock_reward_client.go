package client

import (
	"context"
	"log"
	"sort"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// DevMockRewardClient always succeeds and logs every grant.
// Use it for local development when rewards.mode is "mock".
// For tests, use MockRewardClient instead.
type DevMockRewardClient struct{}

// GrantCurrency logs the grant and returns success.
func (d *DevMockRewardClient) GrantCurrency(ctx context.Context, playerID, currency string, amount int) error {
	log.Printf("[DevMock] GrantCurrency: playerID=%s, currency=%s, amount=%d", playerID, currency, amount)
	return nil
}

// GrantUnlock logs the grant and returns success.
func (d *DevMockRewardClient) GrantUnlock(ctx context.Context, playerID, kind, value string) error {
	log.Printf("[DevMock] GrantUnlock: playerID=%s, kind=%s, value=%s", playerID, kind, value)
	return nil
}

// GrantReward logs each part of the reward and returns success.
func (d *DevMockRewardClient) GrantReward(ctx context.Context, playerID string, reward domain.Reward) error {
	log.Printf("[DevMock] GrantReward: playerID=%s, reward=%+v", playerID, reward)

	if reward.IsZero() {
		log.Printf("[DevMock] WARNING: empty reward for playerID=%s (still returning success)", playerID)
		return nil
	}
	for _, g := range currencyGrants(reward) {
		_ = d.GrantCurrency(ctx, playerID, g.currency, g.amount)
	}
	kinds := make([]string, 0, len(reward.Unlocks))
	for kind := range reward.Unlocks {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		_ = d.GrantUnlock(ctx, playerID, kind, reward.Unlocks[kind])
	}
	return nil
}

// NewDevMockRewardClient creates a new development mock reward client.
func NewDevMockRewardClient() *DevMockRewardClient {
	return &DevMockRewardClient{}
}
