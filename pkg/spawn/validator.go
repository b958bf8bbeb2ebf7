// Package spawn decides where a new obstacle may be placed ahead of the
// player without overlapping live obstacles.
package spawn

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

const (
	// nearJitter spreads obstacles pulled up to the window start.
	nearJitter = 15.0

	// farJitter spreads obstacles pulled back to the window end.
	farJitter = 5.0

	// defaultPlacement is where an unplaced candidate lands, past the window start.
	defaultPlacement = 20.0

	// conflictClearance is added on top of the spacing when pushing past a conflict.
	conflictClearance = 3.0

	// laneMargin is how far outside the outermost lanes x may sit.
	laneMargin = 1.0

	unknownType = "unknown"
)

// Status tags the result of a validation.
type Status int

const (
	// StatusOK means Outcome.Obstacle holds a safe placement.
	StatusOK Status = iota

	// StatusDeferred means no safe placement exists right now; retry later.
	StatusDeferred

	// StatusInvalidInput means the candidate or player position was missing.
	StatusInvalidInput
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDeferred:
		return "deferred"
	case StatusInvalidInput:
		return "invalid_input"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the result of Validate. Obstacle is set only for StatusOK.
type Outcome struct {
	Status   Status           `json:"status"`
	Obstacle *domain.Obstacle `json:"obstacle,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

// OK reports whether a safe placement was found.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// Validator checks and corrects obstacle placements and keeps a short
// history of accepted spawns. It is safe for concurrent use.
type Validator struct {
	cfg    config.SpawnConfig
	minX   float64
	maxX   float64
	clock  common.Clock
	logger *slog.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	history *History
}

// NewValidator creates a Validator. cfg is expected to carry defaults
// (see config.AppConfig); rng and clock are injected for determinism.
func NewValidator(cfg config.SpawnConfig, rng *rand.Rand, clock common.Clock, logger *slog.Logger) *Validator {
	minX, maxX := laneBounds(cfg.Lanes)
	return &Validator{
		cfg:     cfg,
		minX:    minX - laneMargin,
		maxX:    maxX + laneMargin,
		clock:   clock,
		logger:  logger,
		rng:     rng,
		history: NewHistory(cfg.HistoryDuration),
	}
}

func laneBounds(lanes []float64) (float64, float64) {
	if len(lanes) == 0 {
		return 0, 0
	}
	lo, hi := lanes[0], lanes[0]
	for _, x := range lanes[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// Window returns the legal spawn interval [min, max] for a player at z.
func (v *Validator) Window(playerZ float64) (float64, float64) {
	lo := playerZ + v.cfg.SpawnDistance
	return lo, lo + v.cfg.BufferZone
}

// Validate returns a corrected copy of candidate that is safe to place, or
// a deferral when no safe spot exists within reach. The conflict scan and the
// lane clamp only run for candidates that carry a lane. The candidate and the
// existing obstacles are never modified.
func (v *Validator) Validate(candidate *domain.Obstacle, player *domain.Position, existing []domain.Obstacle) Outcome {
	if candidate == nil || player == nil {
		v.logger.Error("invalid spawn parameters",
			"has_candidate", candidate != nil,
			"has_player", player != nil,
		)
		return Outcome{Status: StatusInvalidInput, Reason: "candidate and player position are required"}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	minZ, maxZ := v.Window(player.Z)
	safe := candidate.Clone()

	z := minZ + defaultPlacement
	if safe.Position != nil {
		z = safe.Position.Z
	}

	if z < minZ {
		v.logger.Debug("spawn too close, moving forward", "z", z, "min_z", minZ)
		z = minZ + v.rng.Float64()*nearJitter
	}
	if z > maxZ {
		z = maxZ - v.rng.Float64()*farJitter
	}

	if safe.Position != nil {
		if x, ok := safe.Position.Lateral(); ok {
			conflicts, furthest := v.findConflicts(z, x, existing)
			if conflicts > 0 {
				z = furthest + v.cfg.MinObstacleSpacing + conflictClearance
				if z > maxZ+v.cfg.DeferralMargin {
					v.logger.Debug("no safe spawn position, deferring",
						"type", candidate.Type,
						"conflicts", conflicts,
						"resolved_z", z,
					)
					return Outcome{Status: StatusDeferred, Reason: "no safe position within the spawn window"}
				}
				v.logger.Debug("spawn conflict resolved", "conflicts", conflicts, "z", z)
			}

			if x < v.minX || x > v.maxX {
				v.logger.Debug("lane position out of range, clamping", "x", x)
				clamped := math.Max(v.minX, math.Min(v.maxX, x))
				safe.Position.X = &clamped
			}
		}
		safe.Position.Z = z
	} else {
		safe.Position = &domain.Position{Z: z}
	}

	now := v.clock.Now()
	safe.IsSafeSpawn = true
	safe.SpawnValidatedAt = &now

	entryType := safe.Type
	if entryType == "" {
		entryType = unknownType
	}
	v.history.Record(domain.SpawnHistoryEntry{
		Position:  safe.Position.Clone(),
		Type:      entryType,
		Timestamp: now,
	}, now)

	return Outcome{Status: StatusOK, Obstacle: &safe}
}

// findConflicts counts active obstacles too close on both axes and returns
// the furthest conflicting z. Obstacles without a lane are taken as x=0.
func (v *Validator) findConflicts(z, x float64, existing []domain.Obstacle) (int, float64) {
	count := 0
	furthest := math.Inf(-1)
	for i := range existing {
		obstacle := &existing[i]
		if !obstacle.Active {
			continue
		}

		var obsX, obsZ float64
		if obstacle.Position != nil {
			obsX, _ = obstacle.Position.Lateral()
			obsZ = obstacle.Position.Z
		}

		if math.Abs(z-obsZ) < v.cfg.MinObstacleSpacing && math.Abs(x-obsX) < v.cfg.LaneTolerance {
			count++
			furthest = math.Max(furthest, obsZ)
		}
	}
	return count, furthest
}

// Analytics summarizes the spawns recorded within the retention window.
func (v *Validator) Analytics() domain.SpawnAnalytics {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.history.Prune(v.clock.Now())

	n := v.history.Len()
	perSecond := 0.0
	if secs := v.history.Retention().Seconds(); secs > 0 {
		perSecond = math.Round(float64(n)/secs*100) / 100
	}

	return domain.SpawnAnalytics{
		RecentSpawns:       n,
		AvgSpawnsPerSecond: perSecond,
		LastSpawn:          v.history.Last(),
	}
}

// RecentSpawns returns the retained history, oldest first.
func (v *Validator) RecentSpawns() []domain.SpawnHistoryEntry {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.history.Prune(v.clock.Now())
	return v.history.Entries()
}

// Reset clears the spawn history.
func (v *Validator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history.Reset()
}
