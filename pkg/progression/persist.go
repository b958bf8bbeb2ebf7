package progression

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
)

// Store keys, one snapshot per manager.
const (
	DailyKey       = "cyber_runner_daily_missions"
	WeeklyKey      = "cyberrunner_weekly_missions"
	LoginKey       = "cyber_runner_login_rewards"
	AchievementKey = "cyber_runner_achievements"
	LifetimeKey    = "cyber_runner_lifetime_stats"
)

// SnapshotKeys lists every key a player's progression is persisted under.
var SnapshotKeys = []string{DailyKey, WeeklyKey, LoginKey, AchievementKey, LifetimeKey}

// SnapshotVersion is the envelope version written by this package.
// Documents without a version field are the legacy (version 0) format.
const SnapshotVersion = 1

// Envelope wraps every persisted snapshot.
type Envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// DailySnapshot is the persisted state of DailyMissions.
type DailySnapshot struct {
	LastResetDate  string         `json:"last_reset_date"`
	CompletedToday []string       `json:"completed_today"`
	Missions       []MissionState `json:"missions"`
}

// MissionState is the progress of one active daily mission.
type MissionState struct {
	ID string `json:"id"`
	domain.MissionProgress
}

// WeeklySnapshot is the persisted state of WeeklyMissions.
type WeeklySnapshot struct {
	WeekStartDate     string         `json:"week_start_date"`
	ActiveMissions    []string       `json:"active_missions"`
	Progress          map[string]int `json:"progress"`
	CompletedMissions []string       `json:"completed_missions"`
	ClaimedMissions   []string       `json:"claimed_missions"`
	LastHighScore     int            `json:"last_high_score"`
}

// LoginSnapshot is the persisted state of LoginRewards.
type LoginSnapshot struct {
	CurrentDay     int    `json:"current_day"`
	LastLoginDate  string `json:"last_login_date"`
	RewardsClaimed []int  `json:"rewards_claimed"`
	Streak         int    `json:"streak"`
}

// AchievementSnapshot is the persisted state of Achievements.
type AchievementSnapshot struct {
	Unlocked []string       `json:"unlocked"`
	Progress map[string]int `json:"progress"`
	Claimed  []string       `json:"claimed"`
}

// LifetimeSnapshot is the persisted state of LifetimeStats.
type LifetimeSnapshot struct {
	Totals map[string]int `json:"totals"`
}

// loadSnapshot reads key and decodes it into T. Absence, read errors, parse
// errors and unknown versions all return false; the caller falls back to defaults.
func loadSnapshot[T any](ctx context.Context, d Deps, key string, legacy func([]byte) (T, error)) (T, bool) {
	var zero T

	raw, found, err := d.Store.Get(ctx, key)
	if err != nil {
		d.Logger.Warn("failed to load snapshot, using defaults", "key", key, "error", err)
		return zero, false
	}
	if !found || raw == "" {
		return zero, false
	}

	var probe struct {
		Version *int            `json:"version"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		d.Logger.Warn("failed to parse snapshot, using defaults", "key", key, "error", err)
		return zero, false
	}

	switch {
	case probe.Version == nil:
		snap, err := legacy([]byte(raw))
		if err != nil {
			d.Logger.Warn("failed to migrate legacy snapshot, using defaults", "key", key, "error", err)
			return zero, false
		}
		d.Logger.Info("migrated legacy snapshot", "key", key)
		return snap, true
	case *probe.Version == SnapshotVersion:
		var snap T
		if err := json.Unmarshal(probe.Data, &snap); err != nil {
			d.Logger.Warn("failed to decode snapshot, using defaults", "key", key, "error", err)
			return zero, false
		}
		return snap, true
	default:
		d.Logger.Warn("unsupported snapshot version, using defaults", "key", key, "version", *probe.Version)
		return zero, false
	}
}

// saveSnapshot writes data under key in a versioned envelope. Failures are logged.
func saveSnapshot(ctx context.Context, d Deps, key string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		d.Logger.Error("failed to encode snapshot", "key", key, "error", err)
		return
	}
	raw, err := json.Marshal(Envelope{Version: SnapshotVersion, Data: payload})
	if err != nil {
		d.Logger.Error("failed to encode snapshot envelope", "key", key, "error", err)
		return
	}
	if err := d.Store.Set(ctx, key, string(raw)); err != nil {
		d.Logger.Error("failed to persist snapshot", "key", key, "error", err)
	}
}

// Legacy layouts of persisted date markers.
const (
	legacyDayLayout  = "2006-1-2"
	legacyWeekLayout = "Mon Jan 02 2006"
)

// legacyDateKey converts a legacy date marker to a date key. An unparsable
// marker becomes empty, which forces a period reset.
func legacyDateKey(value, layout string) string {
	if value == "" {
		return ""
	}
	t, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return ""
	}
	return common.DateKey(t)
}

func migrateLegacyDaily(raw []byte) (DailySnapshot, error) {
	var legacy struct {
		LastResetDate  string   `json:"lastResetDate"`
		CompletedToday []string `json:"completedToday"`
		Missions       []struct {
			ID        string  `json:"id"`
			Progress  float64 `json:"progress"`
			Completed bool    `json:"completed"`
			Claimed   bool    `json:"claimed"`
		} `json:"missions"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return DailySnapshot{}, err
	}

	snap := DailySnapshot{
		LastResetDate:  legacyDateKey(legacy.LastResetDate, legacyDayLayout),
		CompletedToday: legacy.CompletedToday,
	}
	for _, m := range legacy.Missions {
		snap.Missions = append(snap.Missions, MissionState{
			ID: m.ID,
			MissionProgress: domain.MissionProgress{
				Progress:  int(m.Progress),
				Completed: m.Completed,
				Claimed:   m.Claimed,
			},
		})
	}
	return snap, nil
}

func migrateLegacyWeekly(raw []byte) (WeeklySnapshot, error) {
	var legacy struct {
		WeekStartDate     string               `json:"weekStartDate"`
		ActiveMissions    []string             `json:"activeMissions"`
		Progress          [][2]json.RawMessage `json:"progress"`
		CompletedMissions []string             `json:"completedMissions"`
		LastHighScore     float64              `json:"lastHighScore"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return WeeklySnapshot{}, err
	}

	snap := WeeklySnapshot{
		WeekStartDate:     legacyDateKey(legacy.WeekStartDate, legacyWeekLayout),
		ActiveMissions:    legacy.ActiveMissions,
		Progress:          make(map[string]int),
		CompletedMissions: legacy.CompletedMissions,
		LastHighScore:     int(legacy.LastHighScore),
	}
	// Progress entries hold numeric mission progress and "<id>_claimed": true markers.
	for _, entry := range legacy.Progress {
		var key string
		if err := json.Unmarshal(entry[0], &key); err != nil {
			return WeeklySnapshot{}, err
		}
		if id, ok := strings.CutSuffix(key, "_claimed"); ok {
			var claimed bool
			if json.Unmarshal(entry[1], &claimed) == nil && claimed {
				snap.ClaimedMissions = append(snap.ClaimedMissions, id)
			}
			continue
		}
		var value float64
		if err := json.Unmarshal(entry[1], &value); err != nil {
			return WeeklySnapshot{}, err
		}
		snap.Progress[key] = int(value)
	}
	return snap, nil
}

func migrateLegacyLogin(raw []byte) (LoginSnapshot, error) {
	var legacy struct {
		CurrentDay     int    `json:"currentDay"`
		LastLoginDate  string `json:"lastLoginDate"`
		RewardsClaimed []int  `json:"rewardsClaimed"`
		Streak         int    `json:"streak"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return LoginSnapshot{}, err
	}
	return LoginSnapshot{
		CurrentDay:     legacy.CurrentDay,
		LastLoginDate:  legacyDateKey(legacy.LastLoginDate, legacyDayLayout),
		RewardsClaimed: legacy.RewardsClaimed,
		Streak:         legacy.Streak,
	}, nil
}

func migrateLegacyAchievements(raw []byte) (AchievementSnapshot, error) {
	var legacy struct {
		Unlocked []string           `json:"unlocked"`
		Progress map[string]float64 `json:"progress"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return AchievementSnapshot{}, err
	}

	snap := AchievementSnapshot{
		Unlocked: legacy.Unlocked,
		Progress: make(map[string]int, len(legacy.Progress)),
	}
	for id, v := range legacy.Progress {
		snap.Progress[id] = int(v)
	}
	return snap, nil
}

// noLegacy rejects unversioned documents for snapshots that never had a legacy form.
func noLegacy[T any](_ []byte) (T, error) {
	var zero T
	return zero, errors.ErrValidationFailed("version", "snapshot is unversioned")
}
