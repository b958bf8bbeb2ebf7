// Package ledger keeps an append-only audit trail of paid-out claims.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Ledger records claim receipts.
type Ledger interface {
	// Record appends a receipt. Receipt IDs are unique.
	Record(ctx context.Context, receipt domain.ClaimReceipt) error

	// List returns a player's receipts, most recent first.
	List(ctx context.Context, playerID string, limit int) ([]domain.ClaimReceipt, error)
}

// NewReceipt builds a receipt with a fresh random ID.
func NewReceipt(playerID string, source domain.ClaimSource, itemID string, reward domain.Reward, at time.Time) domain.ClaimReceipt {
	return domain.ClaimReceipt{
		ID:        uuid.NewString(),
		PlayerID:  playerID,
		Source:    source,
		ItemID:    itemID,
		Reward:    reward,
		ClaimedAt: at,
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
