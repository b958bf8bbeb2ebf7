package config

import (
	"errors"
	"fmt"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// CalendarDays is the length of the login reward cycle.
const CalendarDays = 7

// Validator validates progression catalogs.
// It ensures all business rules are met before the application starts.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate performs comprehensive validation of the catalog.
// It checks for:
// - Non-empty mission pools at least as large as their active counts
// - Globally unique mission IDs and unique achievement IDs
// - Valid modes, categories, tiers, targets and rewards
// - A login calendar covering days 1..7 exactly once
//
// Returns an error describing the first validation failure encountered.
func (v *Validator) Validate(catalog *Catalog) error {
	if len(catalog.DailyMissions) == 0 {
		return errors.New("catalog must have at least one daily mission")
	}
	if len(catalog.WeeklyMissions) == 0 {
		return errors.New("catalog must have at least one weekly mission")
	}
	if catalog.DailyActiveCount <= 0 || catalog.DailyActiveCount > len(catalog.DailyMissions) {
		return fmt.Errorf("daily_active_count %d out of range (1..%d)", catalog.DailyActiveCount, len(catalog.DailyMissions))
	}
	if catalog.WeeklyActiveCount <= 0 || catalog.WeeklyActiveCount > len(catalog.WeeklyMissions) {
		return fmt.Errorf("weekly_active_count %d out of range (1..%d)", catalog.WeeklyActiveCount, len(catalog.WeeklyMissions))
	}

	missionIDs := make(map[string]bool)
	for _, mission := range catalog.DailyMissions {
		if err := v.validateMission(mission); err != nil {
			return fmt.Errorf("invalid daily mission '%s': %w", mission.ID, err)
		}
		if missionIDs[mission.ID] {
			return fmt.Errorf("duplicate mission ID: %s", mission.ID)
		}
		missionIDs[mission.ID] = true
	}
	for _, mission := range catalog.WeeklyMissions {
		if err := v.validateMission(mission); err != nil {
			return fmt.Errorf("invalid weekly mission '%s': %w", mission.ID, err)
		}
		if missionIDs[mission.ID] {
			return fmt.Errorf("duplicate mission ID: %s", mission.ID)
		}
		missionIDs[mission.ID] = true
	}

	achievementIDs := make(map[string]bool)
	for _, achievement := range catalog.Achievements {
		if err := v.validateAchievement(achievement); err != nil {
			return fmt.Errorf("invalid achievement '%s': %w", achievement.ID, err)
		}
		if achievementIDs[achievement.ID] {
			return fmt.Errorf("duplicate achievement ID: %s", achievement.ID)
		}
		achievementIDs[achievement.ID] = true
	}

	return v.validateCalendar(catalog.LoginCalendar)
}

// validateMission validates a single mission template.
func (v *Validator) validateMission(mission domain.MissionTemplate) error {
	if mission.ID == "" {
		return errors.New("mission ID cannot be empty")
	}
	if mission.Description == "" {
		return errors.New("mission description cannot be empty")
	}
	if mission.Stat == "" {
		return errors.New("stat cannot be empty")
	}
	if !mission.Mode.IsValid() {
		return fmt.Errorf("invalid mode '%s' (must be 'best', 'cumulative', or 'count')", mission.Mode)
	}
	if mission.Target <= 0 {
		return errors.New("target must be positive")
	}
	if !mission.Difficulty.IsValid() {
		return fmt.Errorf("invalid difficulty '%s'", mission.Difficulty)
	}
	return v.validateReward(mission.Reward)
}

// validateAchievement validates a single achievement.
func (v *Validator) validateAchievement(achievement domain.Achievement) error {
	if achievement.ID == "" {
		return errors.New("achievement ID cannot be empty")
	}
	if achievement.Name == "" {
		return errors.New("achievement name cannot be empty")
	}
	if !achievement.Category.IsValid() {
		return fmt.Errorf("invalid category '%s'", achievement.Category)
	}
	if achievement.Metric == "" {
		return errors.New("metric cannot be empty")
	}
	if !achievement.Tier.IsValid() {
		return fmt.Errorf("invalid tier '%s' (must be 'bronze', 'silver', 'gold', or 'platinum')", achievement.Tier)
	}
	if achievement.Target <= 0 {
		return errors.New("target must be positive")
	}
	return v.validateReward(achievement.Reward)
}

func (v *Validator) validateReward(reward domain.Reward) error {
	if reward.Coins < 0 || reward.Gems < 0 || reward.Tokens < 0 {
		return errors.New("reward amounts cannot be negative")
	}
	if reward.IsZero() {
		return errors.New("reward cannot be empty")
	}
	return nil
}

// validateCalendar checks that every day of the cycle appears exactly once.
func (v *Validator) validateCalendar(calendar []domain.CalendarEntry) error {
	if len(calendar) != CalendarDays {
		return fmt.Errorf("login calendar must have %d days, got %d", CalendarDays, len(calendar))
	}
	seen := make(map[int]bool, CalendarDays)
	for _, entry := range calendar {
		if entry.Day < 1 || entry.Day > CalendarDays {
			return fmt.Errorf("login calendar day %d out of range (1..%d)", entry.Day, CalendarDays)
		}
		if seen[entry.Day] {
			return fmt.Errorf("duplicate login calendar day: %d", entry.Day)
		}
		seen[entry.Day] = true
		if err := v.validateReward(entry.Reward); err != nil {
			return fmt.Errorf("invalid login calendar day %d: %w", entry.Day, err)
		}
	}
	return nil
}
