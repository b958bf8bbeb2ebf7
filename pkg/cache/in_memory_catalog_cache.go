package cache

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// InMemoryCatalogCache provides O(1) in-memory lookups for progression definitions.
// All maps are built at startup and provide thread-safe read access.
type InMemoryCatalogCache struct {
	dailyPool          []domain.MissionTemplate
	dailyActive        int
	weeklyPool         []domain.MissionTemplate
	weeklyActive       int
	missionsByID       map[string]domain.MissionTemplate
	achievements       []domain.Achievement
	achievementsByID   map[string]domain.Achievement
	achievementsByCat  map[domain.AchievementCategory][]domain.Achievement
	achievementsByStat map[string][]domain.Achievement
	calendar           []domain.CalendarEntry
	calendarByDay      map[int]domain.CalendarEntry
	catalogPath        string // empty means built-in catalog
	mu                 sync.RWMutex
	logger             *slog.Logger
}

// NewInMemoryCatalogCache creates a new cache from the provided catalog.
// The cache is immediately built and ready for lookups.
//
// Parameters:
//   - catalog: Validated catalog
//   - catalogPath: Path to catalog file (used for reload, empty for built-in)
//   - logger: Structured logger for operational logging
func NewInMemoryCatalogCache(catalog *config.Catalog, catalogPath string, logger *slog.Logger) *InMemoryCatalogCache {
	c := &InMemoryCatalogCache{
		catalogPath: catalogPath,
		logger:      logger,
	}

	c.buildCache(catalog)

	return c
}

// buildCache constructs all cache indexes from the catalog.
// It replaces all existing cache data.
func (c *InMemoryCatalogCache) buildCache(catalog *config.Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dailyPool = append([]domain.MissionTemplate(nil), catalog.DailyMissions...)
	c.dailyActive = catalog.DailyActiveCount
	c.weeklyPool = append([]domain.MissionTemplate(nil), catalog.WeeklyMissions...)
	c.weeklyActive = catalog.WeeklyActiveCount

	c.missionsByID = make(map[string]domain.MissionTemplate, len(c.dailyPool)+len(c.weeklyPool))
	for _, m := range c.dailyPool {
		c.missionsByID[m.ID] = m
	}
	for _, m := range c.weeklyPool {
		c.missionsByID[m.ID] = m
	}

	c.achievements = append([]domain.Achievement(nil), catalog.Achievements...)
	c.achievementsByID = make(map[string]domain.Achievement, len(c.achievements))
	c.achievementsByCat = make(map[domain.AchievementCategory][]domain.Achievement)
	c.achievementsByStat = make(map[string][]domain.Achievement)
	for _, a := range c.achievements {
		c.achievementsByID[a.ID] = a
		c.achievementsByCat[a.Category] = append(c.achievementsByCat[a.Category], a)
		c.achievementsByStat[a.Metric] = append(c.achievementsByStat[a.Metric], a)
	}

	c.calendar = append([]domain.CalendarEntry(nil), catalog.LoginCalendar...)
	sort.Slice(c.calendar, func(i, j int) bool { return c.calendar[i].Day < c.calendar[j].Day })
	c.calendarByDay = make(map[int]domain.CalendarEntry, len(c.calendar))
	for _, entry := range c.calendar {
		c.calendarByDay[entry.Day] = entry
	}

	c.logger.Info("Catalog cache built successfully",
		"daily_missions", len(c.dailyPool),
		"weekly_missions", len(c.weeklyPool),
		"achievements", len(c.achievements),
		"metrics", len(c.achievementsByStat),
	)
}

// DailyPool returns the daily mission templates in catalog order.
func (c *InMemoryCatalogCache) DailyPool() []domain.MissionTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dailyPool
}

// DailyActiveCount returns how many daily missions are drawn per day.
func (c *InMemoryCatalogCache) DailyActiveCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dailyActive
}

// WeeklyPool returns the weekly mission templates in catalog order.
func (c *InMemoryCatalogCache) WeeklyPool() []domain.MissionTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weeklyPool
}

// WeeklyActiveCount returns how many weekly missions are drawn per week.
func (c *InMemoryCatalogCache) WeeklyActiveCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weeklyActive
}

// GetMission retrieves a daily or weekly template by ID.
// Time complexity: O(1)
func (c *InMemoryCatalogCache) GetMission(missionID string) (domain.MissionTemplate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.missionsByID[missionID]
	return m, ok
}

// Achievements returns every achievement in catalog order.
func (c *InMemoryCatalogCache) Achievements() []domain.Achievement {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.achievements
}

// GetAchievement retrieves an achievement by ID.
// Time complexity: O(1)
func (c *InMemoryCatalogCache) GetAchievement(achievementID string) (domain.Achievement, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.achievementsByID[achievementID]
	return a, ok
}

// AchievementsByCategory returns the achievements of a category in catalog order.
// Time complexity: O(1)
func (c *InMemoryCatalogCache) AchievementsByCategory(category domain.AchievementCategory) []domain.Achievement {
	c.mu.RLock()
	defer c.mu.RUnlock()

	achievements := c.achievementsByCat[category]
	if achievements == nil {
		return []domain.Achievement{}
	}
	return achievements
}

// AchievementsByMetric returns the achievements fed by a metric in catalog order.
// Time complexity: O(1)
func (c *InMemoryCatalogCache) AchievementsByMetric(metric string) []domain.Achievement {
	c.mu.RLock()
	defer c.mu.RUnlock()

	achievements := c.achievementsByStat[metric]
	if achievements == nil {
		return []domain.Achievement{}
	}
	return achievements
}

// Calendar returns the login calendar ordered by day.
func (c *InMemoryCatalogCache) Calendar() []domain.CalendarEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calendar
}

// CalendarEntry retrieves the login reward for a calendar day.
func (c *InMemoryCatalogCache) CalendarEntry(day int) (domain.CalendarEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.calendarByDay[day]
	return entry, ok
}

// Reload rebuilds the cache from the catalog file, or from the built-in
// catalog when the cache was created without a path.
func (c *InMemoryCatalogCache) Reload() error {
	catalog, err := config.LoadCatalogOrDefault(c.catalogPath, c.logger)
	if err != nil {
		return err
	}

	c.buildCache(catalog)

	c.logger.Info("Catalog cache reloaded successfully")

	return nil
}
