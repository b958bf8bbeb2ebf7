package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

var t0 = time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)

func TestNewReceipt(t *testing.T) {
	r := NewReceipt("p1", domain.ClaimSourceDaily, "distance_5k", domain.Reward{Coins: 500}, t0)

	_, err := uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.Equal(t, "p1", r.PlayerID)
	assert.Equal(t, domain.ClaimSourceDaily, r.Source)
	assert.Equal(t, "distance_5k", r.ItemID)
	assert.Equal(t, 500, r.Reward.Coins)
	assert.Equal(t, t0, r.ClaimedAt)

	assert.NotEqual(t, r.ID, NewReceipt("p1", domain.ClaimSourceDaily, "distance_5k", domain.Reward{}, t0).ID)
}

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	for i := 0; i < 5; i++ {
		r := NewReceipt("p1", domain.ClaimSourceAchievement, fmt.Sprintf("a%d", i), domain.Reward{Coins: i}, t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, l.Record(ctx, r))
	}
	require.NoError(t, l.Record(ctx, NewReceipt("p2", domain.ClaimSourceLogin, "day_1", domain.Reward{Coins: 500}, t0)))

	t.Run("most recent first with limit", func(t *testing.T) {
		got, err := l.List(ctx, "p1", 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"a4", "a3", "a2"}, []string{got[0].ItemID, got[1].ItemID, got[2].ItemID})
	})

	t.Run("non-positive limit uses default", func(t *testing.T) {
		got, err := l.List(ctx, "p1", 0)
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})

	t.Run("players are isolated", func(t *testing.T) {
		got, err := l.List(ctx, "p2", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, domain.ClaimSourceLogin, got[0].Source)

		none, err := l.List(ctx, "p3", 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		r := NewReceipt("p1", domain.ClaimSourceWeekly, "w", domain.Reward{}, t0)
		require.NoError(t, l.Record(ctx, r))
		assert.Error(t, l.Record(ctx, r))
	})
}
