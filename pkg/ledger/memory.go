package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// MemoryLedger keeps receipts in process memory.
type MemoryLedger struct {
	mu       sync.RWMutex
	byPlayer map[string][]domain.ClaimReceipt
	ids      map[string]struct{}
}

// NewMemoryLedger creates an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		byPlayer: make(map[string][]domain.ClaimReceipt),
		ids:      make(map[string]struct{}),
	}
}

func (l *MemoryLedger) Record(_ context.Context, receipt domain.ClaimReceipt) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.ids[receipt.ID]; dup {
		return fmt.Errorf("duplicate receipt id %s", receipt.ID)
	}
	l.ids[receipt.ID] = struct{}{}
	l.byPlayer[receipt.PlayerID] = append(l.byPlayer[receipt.PlayerID], receipt)
	return nil
}

func (l *MemoryLedger) List(_ context.Context, playerID string, limit int) ([]domain.ClaimReceipt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := l.byPlayer[playerID]
	limit = normalizeLimit(limit)
	out := make([]domain.ClaimReceipt, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
