package cache

import "github.com/AccelByte/extend-runner-progression/pkg/domain"

// CatalogCache provides O(1) in-memory lookups for progression definitions.
// This cache is built at application startup from the catalog.
// All lookups are read-only and thread-safe. Returned slices must not be modified.
type CatalogCache interface {
	// DailyPool returns the daily mission templates in catalog order.
	DailyPool() []domain.MissionTemplate

	// DailyActiveCount returns how many daily missions are drawn per day.
	DailyActiveCount() int

	// WeeklyPool returns the weekly mission templates in catalog order.
	WeeklyPool() []domain.MissionTemplate

	// WeeklyActiveCount returns how many weekly missions are drawn per week.
	WeeklyActiveCount() int

	// GetMission retrieves a daily or weekly template by ID.
	// Time complexity: O(1)
	GetMission(missionID string) (domain.MissionTemplate, bool)

	// Achievements returns every achievement in catalog order.
	Achievements() []domain.Achievement

	// GetAchievement retrieves an achievement by ID.
	// Time complexity: O(1)
	GetAchievement(achievementID string) (domain.Achievement, bool)

	// AchievementsByCategory returns the achievements of a category in catalog order.
	// Returns an empty slice for unknown categories.
	// Time complexity: O(1)
	AchievementsByCategory(category domain.AchievementCategory) []domain.Achievement

	// AchievementsByMetric returns the achievements fed by a metric in catalog order.
	// Time complexity: O(1)
	AchievementsByMetric(metric string) []domain.Achievement

	// Calendar returns the login calendar ordered by day.
	Calendar() []domain.CalendarEntry

	// CalendarEntry retrieves the login reward for a calendar day.
	CalendarEntry(day int) (domain.CalendarEntry, bool)

	// Reload rebuilds the cache from the catalog file.
	// Returns error if the catalog cannot be read or is invalid.
	Reload() error
}
