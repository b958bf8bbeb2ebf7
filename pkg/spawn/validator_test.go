package spawn

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

var epoch = time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestValidator(t *testing.T, mutate func(*config.SpawnConfig)) (*Validator, *common.ManualClock) {
	t.Helper()
	cfg := config.DefaultAppConfig().Spawn
	if mutate != nil {
		mutate(&cfg)
	}
	clock := common.NewManualClock(epoch)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewValidator(cfg, rand.New(rand.NewPCG(1, 2)), clock, logger), clock
}

func at(x, z float64) *domain.Position {
	return domain.At(x, z)
}

func active(x, z float64) domain.Obstacle {
	return domain.Obstacle{Position: at(x, z), Active: true}
}

func TestValidate_InvalidInput(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	out := v.Validate(nil, at(0, 0), nil)
	assert.Equal(t, StatusInvalidInput, out.Status)
	assert.Nil(t, out.Obstacle)

	out = v.Validate(&domain.Obstacle{Position: at(0, 70)}, nil, nil)
	assert.Equal(t, StatusInvalidInput, out.Status)
	assert.False(t, out.OK())

	assert.Equal(t, 0, v.Analytics().RecentSpawns)
}

func TestValidate_TooCloseLandsInJitterBand(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	out := v.Validate(&domain.Obstacle{Position: at(0, 10)}, at(0, 0), nil)

	require.True(t, out.OK())
	z := out.Obstacle.Position.Z
	assert.GreaterOrEqual(t, z, 60.0)
	assert.LessOrEqual(t, z, 75.0)
	assert.True(t, out.Obstacle.IsSafeSpawn)
	require.NotNil(t, out.Obstacle.SpawnValidatedAt)
	assert.Equal(t, epoch, *out.Obstacle.SpawnValidatedAt)
}

func TestValidate_NeverSpawnsInsideSpawnDistance(t *testing.T) {
	v, _ := newTestValidator(t, nil)
	rng := rand.New(rand.NewPCG(7, 7))

	for i := 0; i < 500; i++ {
		playerZ := rng.Float64() * 10000
		candidateZ := playerZ - 50 + rng.Float64()*110 // up to playerZ+60
		existing := []domain.Obstacle{
			active(rng.Float64()*6-3, playerZ+60+rng.Float64()*30),
			active(rng.Float64()*6-3, playerZ+60+rng.Float64()*30),
		}

		out := v.Validate(&domain.Obstacle{Position: at(0, candidateZ)}, at(0, playerZ), existing)
		if !out.OK() {
			continue
		}
		assert.GreaterOrEqual(t, out.Obstacle.Position.Z, playerZ+60, "iteration %d", i)
	}
}

func TestValidate_Window(t *testing.T) {
	tests := []struct {
		name    string
		z       float64
		wantMin float64
		wantMax float64
	}{
		{name: "inside window is kept", z: 72, wantMin: 72, wantMax: 72},
		{name: "at window start is kept", z: 160, wantMin: 160, wantMax: 160},
		{name: "beyond window is pulled back", z: 500, wantMin: 185, wantMax: 190},
		{name: "behind player is pushed forward", z: 50, wantMin: 160, wantMax: 175},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newTestValidator(t, nil)
			out := v.Validate(&domain.Obstacle{Position: at(0, tt.z)}, at(0, 100), nil)

			require.True(t, out.OK())
			assert.GreaterOrEqual(t, out.Obstacle.Position.Z, tt.wantMin)
			assert.LessOrEqual(t, out.Obstacle.Position.Z, tt.wantMax)
		})
	}
}

func TestValidate_UnplacedCandidate(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	// An obstacle sits exactly at the default placement; without a lateral
	// position the candidate skips the conflict scan.
	existing := []domain.Obstacle{active(0, 80)}
	out := v.Validate(&domain.Obstacle{Type: "barrier"}, at(0, 0), existing)

	require.True(t, out.OK())
	assert.Equal(t, 80.0, out.Obstacle.Position.Z)
	assert.Equal(t, "barrier", out.Obstacle.Type)
}

func TestValidate_CandidateWithoutLane(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	existing := []domain.Obstacle{active(0, 70)}
	out := v.Validate(&domain.Obstacle{Position: &domain.Position{Z: 70}}, at(0, 0), existing)

	require.True(t, out.OK())
	assert.Equal(t, 70.0, out.Obstacle.Position.Z)
	assert.Nil(t, out.Obstacle.Position.X)
}

func TestValidate_ExistingWithoutLaneSitsOnCentre(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	existing := []domain.Obstacle{{Position: &domain.Position{Z: 70}, Active: true}}
	out := v.Validate(&domain.Obstacle{Position: at(1, 70)}, at(0, 0), existing)

	require.True(t, out.OK())
	assert.Equal(t, 70.0+5+3, out.Obstacle.Position.Z)
}

func TestValidate_ConflictPushesForward(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	existing := []domain.Obstacle{
		active(0.5, 72),
		active(-1, 68),
		active(3, 70), // different lane
	}
	out := v.Validate(&domain.Obstacle{Position: at(0, 70)}, at(0, 0), existing)

	require.True(t, out.OK())
	assert.Equal(t, 72.0+5+3, out.Obstacle.Position.Z)
}

func TestValidate_InactiveObstaclesIgnored(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	existing := []domain.Obstacle{{Position: at(0, 70), Active: false}}
	out := v.Validate(&domain.Obstacle{Position: at(0, 70)}, at(0, 0), existing)

	require.True(t, out.OK())
	assert.Equal(t, 70.0, out.Obstacle.Position.Z)
}

func TestValidate_ToleranceBoundariesAreExclusive(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	existing := []domain.Obstacle{
		active(2, 70), // |dx| == lane tolerance
		active(0, 75), // |dz| == spacing
	}
	out := v.Validate(&domain.Obstacle{Position: at(0, 70)}, at(0, 0), existing)

	require.True(t, out.OK())
	assert.Equal(t, 70.0, out.Obstacle.Position.Z)
}

func TestValidate_Deferral(t *testing.T) {
	v, _ := newTestValidator(t, func(c *config.SpawnConfig) { c.DeferralMargin = 1 })

	candidate := &domain.Obstacle{ID: "o-1", Position: at(0, 88)}
	out := v.Validate(candidate, at(0, 0), []domain.Obstacle{active(0, 90)})

	assert.Equal(t, StatusDeferred, out.Status)
	assert.Nil(t, out.Obstacle)
	assert.Equal(t, 88.0, candidate.Position.Z)
	assert.False(t, candidate.IsSafeSpawn)
	assert.Equal(t, 0, v.Analytics().RecentSpawns)
}

func TestValidate_DeferralBoundary(t *testing.T) {
	// Resolved z of 90+5+3 = 98 equals max (90) + margin (8): still placed.
	v, _ := newTestValidator(t, func(c *config.SpawnConfig) { c.DeferralMargin = 8 })

	out := v.Validate(&domain.Obstacle{Position: at(0, 88)}, at(0, 0), []domain.Obstacle{active(0, 90)})

	require.True(t, out.OK())
	assert.Equal(t, 98.0, out.Obstacle.Position.Z)
}

func TestValidate_LaneClamp(t *testing.T) {
	tests := []struct {
		name  string
		x     float64
		wantX float64
	}{
		{name: "far right", x: 10, wantX: 4},
		{name: "far left", x: -7.5, wantX: -4},
		{name: "edge of margin", x: 4, wantX: 4},
		{name: "centre lane", x: 0, wantX: 0},
		{name: "between lanes", x: 1.5, wantX: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newTestValidator(t, nil)
			out := v.Validate(&domain.Obstacle{Position: at(tt.x, 70)}, at(0, 0), nil)

			require.True(t, out.OK())
			assert.Equal(t, tt.wantX, *out.Obstacle.Position.X)
		})
	}
}

func TestValidate_ConflictScanUsesRequestedLane(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	// x=10 clamps to 4, but the scan runs against 10, so an obstacle at x=4 is not a conflict.
	out := v.Validate(&domain.Obstacle{Position: at(10, 70)}, at(0, 0), []domain.Obstacle{active(4, 70)})

	require.True(t, out.OK())
	assert.Equal(t, 70.0, out.Obstacle.Position.Z)
	assert.Equal(t, 4.0, *out.Obstacle.Position.X)
}

func TestValidate_CustomLanes(t *testing.T) {
	v, _ := newTestValidator(t, func(c *config.SpawnConfig) { c.Lanes = []float64{-2.5, 0, 2.5} })

	out := v.Validate(&domain.Obstacle{Position: at(5, 70)}, at(0, 0), nil)

	require.True(t, out.OK())
	assert.Equal(t, 3.5, *out.Obstacle.Position.X)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	candidate := &domain.Obstacle{ID: "o-9", Type: "drone", Position: at(9, 10), Active: true}
	out := v.Validate(candidate, at(0, 0), nil)

	require.True(t, out.OK())
	assert.Equal(t, at(9, 10), candidate.Position)
	assert.False(t, candidate.IsSafeSpawn)
	assert.Nil(t, candidate.SpawnValidatedAt)

	assert.Equal(t, "o-9", out.Obstacle.ID)
	assert.Equal(t, "drone", out.Obstacle.Type)
	assert.True(t, out.Obstacle.Active)
	assert.NotSame(t, candidate.Position, out.Obstacle.Position)
}

func TestValidator_HistoryAndAnalytics(t *testing.T) {
	v, clock := newTestValidator(t, nil)

	assert.Nil(t, v.Analytics().LastSpawn)

	v.Validate(&domain.Obstacle{Type: "wall", Position: at(0, 70)}, at(0, 0), nil)
	clock.Advance(2 * time.Second)
	v.Validate(&domain.Obstacle{Position: at(3, 75)}, at(0, 0), nil)

	analytics := v.Analytics()
	assert.Equal(t, 2, analytics.RecentSpawns)
	assert.Equal(t, 0.4, analytics.AvgSpawnsPerSecond)
	require.NotNil(t, analytics.LastSpawn)
	assert.Equal(t, "unknown", analytics.LastSpawn.Type)
	assert.Equal(t, 75.0, analytics.LastSpawn.Position.Z)

	// The first entry reaches the 5s retention window and is pruned.
	clock.Advance(3 * time.Second)
	analytics = v.Analytics()
	assert.Equal(t, 1, analytics.RecentSpawns)
	assert.Equal(t, 0.2, analytics.AvgSpawnsPerSecond)

	recent := v.RecentSpawns()
	require.Len(t, recent, 1)
	assert.Equal(t, epoch.Add(2*time.Second), recent[0].Timestamp)

	v.Reset()
	assert.Equal(t, 0, v.Analytics().RecentSpawns)
}

func TestValidator_PrunesOnRecord(t *testing.T) {
	v, clock := newTestValidator(t, nil)

	for i := 0; i < 10; i++ {
		v.Validate(&domain.Obstacle{Position: at(0, 70)}, at(0, 0), nil)
	}
	clock.Advance(6 * time.Second)
	v.Validate(&domain.Obstacle{Position: at(0, 70)}, at(0, 0), nil)

	assert.Equal(t, 1, v.history.Len())
}

func TestValidator_ConcurrentUse(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := v.Validate(&domain.Obstacle{Position: at(0, float64(i))}, at(0, 0), nil)
			assert.True(t, out.OK())
			_ = v.Analytics()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, v.Analytics().RecentSpawns)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "deferred", StatusDeferred.String())
	assert.Equal(t, "invalid_input", StatusInvalidInput.String())
	assert.Equal(t, "status(9)", Status(9).String())

	text, err := StatusDeferred.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "deferred", string(text))
}
