package spawn

import (
	"time"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// History is a time-decayed, append-only ledger of recent safe spawns.
// It is not safe for concurrent use; Validator serializes access.
type History struct {
	retention time.Duration
	entries   []domain.SpawnHistoryEntry
}

// NewHistory creates a History that keeps entries younger than retention.
func NewHistory(retention time.Duration) *History {
	return &History{retention: retention}
}

// Record appends entry and prunes against now.
func (h *History) Record(entry domain.SpawnHistoryEntry, now time.Time) {
	h.entries = append(h.entries, entry)
	h.Prune(now)
}

// Prune drops every entry whose age is at least the retention window.
// Entries are appended in timestamp order, so the survivors are a suffix.
func (h *History) Prune(now time.Time) {
	cut := 0
	for cut < len(h.entries) && now.Sub(h.entries[cut].Timestamp) >= h.retention {
		cut++
	}
	if cut == 0 {
		return
	}
	h.entries = append(h.entries[:0], h.entries[cut:]...)
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Last returns a copy of the newest entry, or nil if the ledger is empty.
func (h *History) Last() *domain.SpawnHistoryEntry {
	if len(h.entries) == 0 {
		return nil
	}
	last := h.entries[len(h.entries)-1]
	return &last
}

// Entries returns a copy of the retained entries, oldest first.
func (h *History) Entries() []domain.SpawnHistoryEntry {
	out := make([]domain.SpawnHistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Retention returns the configured retention window.
func (h *History) Retention() time.Duration {
	return h.retention
}

// Reset discards every entry.
func (h *History) Reset() {
	h.entries = nil
}
