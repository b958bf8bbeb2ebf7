package client

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// MockRewardClient is a testify mock of RewardClient.
type MockRewardClient struct {
	mock.Mock
}

func (m *MockRewardClient) GrantCurrency(ctx context.Context, playerID, currency string, amount int) error {
	args := m.Called(ctx, playerID, currency, amount)
	return args.Error(0)
}

func (m *MockRewardClient) GrantUnlock(ctx context.Context, playerID, kind, value string) error {
	args := m.Called(ctx, playerID, kind, value)
	return args.Error(0)
}

func (m *MockRewardClient) GrantReward(ctx context.Context, playerID string, reward domain.Reward) error {
	args := m.Called(ctx, playerID, reward)
	return args.Error(0)
}

// NewMockRewardClient creates a new mock reward client.
func NewMockRewardClient() *MockRewardClient {
	return &MockRewardClient{}
}
