package domain

import "time"

// Reward is what the player receives when a completed item is claimed.
// Unlocks carries cosmetic or character grants keyed by kind
// (e.g. "skin" -> "chrome", "character" -> "speed_demon").
type Reward struct {
	Coins   int               `json:"coins,omitempty"`
	Gems    int               `json:"gems,omitempty"`
	Tokens  int               `json:"tokens,omitempty"`
	Unlocks map[string]string `json:"unlocks,omitempty"`
}

// Add returns the sum of r and other. Unlocks from other win on key collision.
func (r Reward) Add(other Reward) Reward {
	sum := Reward{
		Coins:  r.Coins + other.Coins,
		Gems:   r.Gems + other.Gems,
		Tokens: r.Tokens + other.Tokens,
	}
	if len(r.Unlocks)+len(other.Unlocks) > 0 {
		sum.Unlocks = make(map[string]string, len(r.Unlocks)+len(other.Unlocks))
		for k, v := range r.Unlocks {
			sum.Unlocks[k] = v
		}
		for k, v := range other.Unlocks {
			sum.Unlocks[k] = v
		}
	}
	return sum
}

// IsZero returns true if the reward grants nothing.
func (r Reward) IsZero() bool {
	return r.Coins == 0 && r.Gems == 0 && r.Tokens == 0 && len(r.Unlocks) == 0
}

// ProgressMode defines how an event value is folded into a mission's progress.
//
// Usage in progress accrual:
//   - best: progress = max(progress, value) (single-run goals)
//   - cumulative: progress = progress + value (totals across runs)
//   - count: progress = progress + 1 (one per qualifying event)
type ProgressMode string

const (
	// ProgressModeBest keeps the high-water mark of reported values.
	ProgressModeBest ProgressMode = "best"

	// ProgressModeCumulative adds every reported value.
	ProgressModeCumulative ProgressMode = "cumulative"

	// ProgressModeCount adds one per reported event, ignoring the value.
	ProgressModeCount ProgressMode = "count"
)

// IsValid returns true if the progress mode is a known mode.
func (m ProgressMode) IsValid() bool {
	switch m {
	case ProgressModeBest, ProgressModeCumulative, ProgressModeCount:
		return true
	default:
		return false
	}
}

// Apply folds value into current according to the mode. Non-positive values
// leave current unchanged in every mode.
func (m ProgressMode) Apply(current, value int) int {
	if value <= 0 {
		return current
	}
	switch m {
	case ProgressModeCumulative:
		return current + value
	case ProgressModeCount:
		return current + 1
	default:
		if value > current {
			return value
		}
		return current
	}
}

// Difficulty is a display/reward-scaling hint for missions.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid returns true if the difficulty is known. Empty is allowed.
func (d Difficulty) IsValid() bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// MissionTemplate is an immutable daily or weekly mission definition.
// Stat is the gameplay stat the mission listens to: a daily mission type
// ("distance", "coins", ...) or a weekly target key ("totalDistance", ...).
type MissionTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description"`
	Stat        string       `json:"stat"`
	Mode        ProgressMode `json:"mode"`
	Target      int          `json:"target"`
	Reward      Reward       `json:"reward"`
	Difficulty  Difficulty   `json:"difficulty,omitempty"`
}

// MissionProgress is the mutable, per-period state of one mission.
type MissionProgress struct {
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
	Claimed   bool `json:"claimed"`
}

// CanClaim returns true if the mission is completed and not yet claimed.
func (p MissionProgress) CanClaim() bool {
	return p.Completed && !p.Claimed
}

// MissionView is a read-only snapshot of a mission for the UI layer.
type MissionView struct {
	MissionTemplate
	MissionProgress
	ProgressPercent float64 `json:"progress_percent"`
}

// ProgressPercent returns progress/target as a percentage capped at 100.
func ProgressPercent(progress, target int) float64 {
	if target <= 0 {
		return 100
	}
	pct := float64(progress) / float64(target) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// AchievementCategory groups achievements for display and for category-wide updates.
type AchievementCategory string

const (
	CategoryDistance AchievementCategory = "distance"
	CategoryCoins    AchievementCategory = "coins"
	CategorySurvival AchievementCategory = "survival"
	CategorySkills   AchievementCategory = "skills"
	CategoryPerfect  AchievementCategory = "perfect"
	CategoryScore    AchievementCategory = "score"
	CategorySpecial  AchievementCategory = "special"
)

// IsValid returns true if the category is known.
func (c AchievementCategory) IsValid() bool {
	switch c {
	case CategoryDistance, CategoryCoins, CategorySurvival, CategorySkills,
		CategoryPerfect, CategoryScore, CategorySpecial:
		return true
	default:
		return false
	}
}

// Tier is purely for display and reward scaling.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// IsValid returns true if the tier is known.
func (t Tier) IsValid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return true
	default:
		return false
	}
}

// Achievement is an immutable, never-resetting milestone definition.
// Metric narrows which stat feeds the achievement when a category mixes
// unrelated goals (the "special" category does).
type Achievement struct {
	ID          string              `json:"id"`
	Category    AchievementCategory `json:"category"`
	Metric      string              `json:"metric"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Icon        string              `json:"icon,omitempty"`
	Target      int                 `json:"target"`
	Reward      Reward              `json:"reward"`
	Tier        Tier                `json:"tier"`
}

// AchievementView is a read-only snapshot of an achievement for the UI layer.
type AchievementView struct {
	Achievement
	Progress        int     `json:"progress"`
	Unlocked        bool    `json:"unlocked"`
	Claimed         bool    `json:"claimed"`
	ProgressPercent float64 `json:"progress_percent"`
}

// CalendarEntry is one day of the 7-day login reward calendar.
type CalendarEntry struct {
	Day         int    `json:"day"`
	Reward      Reward `json:"reward"`
	Description string `json:"description"`
}

// CalendarDayStatus is a read-only snapshot of one calendar day.
type CalendarDayStatus struct {
	CalendarEntry
	IsClaimed   bool `json:"is_claimed"`
	IsToday     bool `json:"is_today"`
	IsAvailable bool `json:"is_available"`
}

// StreakTransition names the outcome of a login streak evaluation.
type StreakTransition string

const (
	// StreakFirstLogin: no prior login was recorded.
	StreakFirstLogin StreakTransition = "first_login"

	// StreakSameDay: already evaluated today, nothing changed.
	StreakSameDay StreakTransition = "same_day"

	// StreakContinued: exactly one calendar day since the last login.
	StreakContinued StreakTransition = "continued"

	// StreakCycleWrapped: continued past day 7, calendar restarted at day 1.
	StreakCycleWrapped StreakTransition = "cycle_wrapped"

	// StreakBroken: more than one calendar day since the last login.
	StreakBroken StreakTransition = "streak_broken"

	// StreakClockRegressed: today is before the last login date.
	StreakClockRegressed StreakTransition = "clock_regressed"
)

// RunStats summarizes one finished run. Health is the remaining health
// out of MaxHealth; a run that ends at full health took no damage.
type RunStats struct {
	Distance              int `json:"distance"`
	Coins                 int `json:"coins"`
	Score                 int `json:"score"`
	Health                int `json:"health"`
	NearMisses            int `json:"near_misses,omitempty"`
	Powerups              int `json:"powerups,omitempty"`
	Grapples              int `json:"grapples,omitempty"`
	MaxCombo              int `json:"max_combo,omitempty"`
	Jumps                 int `json:"jumps,omitempty"`
	Revives               int `json:"revives,omitempty"`
	NoDamageDistance      int `json:"no_damage_distance,omitempty"`
	EnergyModeActivations int `json:"energy_mode_activations,omitempty"`
}

// MaxHealth is the full-health value of a run.
const MaxHealth = 100

// IsPerfect returns true if the run ended without taking damage.
func (s RunStats) IsPerfect() bool {
	return s.Health >= MaxHealth
}

// ClaimSource identifies which manager paid out a claim.
type ClaimSource string

const (
	ClaimSourceDaily       ClaimSource = "daily"
	ClaimSourceWeekly      ClaimSource = "weekly"
	ClaimSourceLogin       ClaimSource = "login"
	ClaimSourceAchievement ClaimSource = "achievement"
)

// IsValid returns true if the claim source is known.
func (s ClaimSource) IsValid() bool {
	switch s {
	case ClaimSourceDaily, ClaimSourceWeekly, ClaimSourceLogin, ClaimSourceAchievement:
		return true
	default:
		return false
	}
}

// ClaimReceipt records one paid-out claim.
type ClaimReceipt struct {
	ID        string      `json:"id"`
	PlayerID  string      `json:"player_id"`
	Source    ClaimSource `json:"source"`
	ItemID    string      `json:"item_id"`
	Reward    Reward      `json:"reward"`
	ClaimedAt time.Time   `json:"claimed_at"`
}
