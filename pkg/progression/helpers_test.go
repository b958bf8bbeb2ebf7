package progression

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-runner-progression/pkg/cache"
	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/events"
	"github.com/AccelByte/extend-runner-progression/pkg/store"
)

// wednesday is 2025-10-15 10:00 UTC; its week starts on Sunday 2025-10-12.
var wednesday = time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	deps     Deps
	clock    *common.ManualClock
	store    *store.MemoryStore
	recorder *events.Recorder
}

func newFixture(t *testing.T, catalog *config.Catalog) *fixture {
	t.Helper()
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		clock:    common.NewManualClock(wednesday),
		store:    store.NewMemoryStore(),
		recorder: &events.Recorder{},
	}
	f.deps = Deps{
		Store:    f.store,
		Catalog:  cache.NewInMemoryCatalogCache(catalog, "", logger),
		Clock:    f.clock,
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Logger:   logger,
		Events:   f.recorder,
		PlayerID: "player-1",
	}
	return f
}

// fixedDailyCatalog has exactly as many daily and weekly templates as are
// drawn, so the active sets are known in advance.
func fixedDailyCatalog() *config.Catalog {
	c := config.DefaultCatalog()
	c.DailyMissions = []domain.MissionTemplate{
		{ID: "distance_5k", Description: "Run 5,000m in a single run", Stat: config.StatDistance, Mode: domain.ProgressModeBest, Target: 5000, Reward: domain.Reward{Coins: 500}},
		{ID: "collect_100", Description: "Collect 100 coins in a single run", Stat: config.StatCoins, Mode: domain.ProgressModeBest, Target: 100, Reward: domain.Reward{Coins: 300}},
		{ID: "jump_50", Description: "Jump 50 times", Stat: config.StatJump, Mode: domain.ProgressModeBest, Target: 50, Reward: domain.Reward{Coins: 150}},
	}
	byID := map[string]domain.MissionTemplate{}
	for _, m := range c.WeeklyMissions {
		byID[m.ID] = m
	}
	c.WeeklyMissions = []domain.MissionTemplate{
		byID["weekly_distance"],
		byID["weekly_highscore"],
		byID["weekly_perfect_runs"],
	}
	return c
}

func (f *fixture) put(t *testing.T, key, raw string) {
	t.Helper()
	require.NoError(t, f.store.Set(context.Background(), key, raw))
}

func (f *fixture) putSnapshot(t *testing.T, key string, data any) {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	raw, err := json.Marshal(Envelope{Version: SnapshotVersion, Data: payload})
	require.NoError(t, err)
	f.put(t, key, string(raw))
}

func readSnapshot[T any](t *testing.T, f *fixture, key string) T {
	t.Helper()
	raw, found, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found, "snapshot %s not persisted", key)

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	require.Equal(t, SnapshotVersion, env.Version)

	var snap T
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	return snap
}

func missionIDs(views []domain.MissionView) []string {
	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func achievementIDs(list []domain.Achievement) []string {
	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	return ids
}
