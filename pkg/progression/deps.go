// Package progression implements the time-windowed progression managers:
// daily missions, weekly missions, the 7-day login calendar and achievements.
//
// Managers are single-threaded. Callers that share a manager between
// goroutines must serialize access (the service package does this per player).
// Every mutation persists a versioned snapshot to a store.Store; persistence
// failures are logged and never returned.
package progression

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/AccelByte/extend-runner-progression/pkg/cache"
	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/events"
	"github.com/AccelByte/extend-runner-progression/pkg/store"
)

// Deps are the collaborators shared by every manager of one player.
type Deps struct {
	Store    store.Store
	Catalog  cache.CatalogCache
	Clock    common.Clock
	Rand     *rand.Rand
	Logger   *slog.Logger
	Events   events.Publisher
	PlayerID string
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = common.SystemClock()
	}
	if d.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		d.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Store == nil {
		d.Store = store.NewMemoryStore()
	}
	if d.Catalog == nil {
		d.Catalog = cache.NewInMemoryCatalogCache(config.DefaultCatalog(), "", d.Logger)
	}
	if d.PlayerID != "" {
		d.Logger = d.Logger.With("player_id", d.PlayerID)
	}
	return d
}

func (d Deps) publish(ctx context.Context, t events.Type, payload any) {
	if d.Events == nil {
		return
	}
	d.Events.Publish(ctx, events.Event{
		Type:       t,
		PlayerID:   d.PlayerID,
		OccurredAt: d.Clock.Now(),
		Payload:    payload,
	})
}
