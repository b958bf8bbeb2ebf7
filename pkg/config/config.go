package config

import "github.com/AccelByte/extend-runner-progression/pkg/domain"

// DefaultActiveMissions is the number of missions drawn per period when the
// catalog does not say otherwise.
const DefaultActiveMissions = 3

// Catalog represents the progression definitions loaded from catalog.json.
// Sections missing from the file are filled from DefaultCatalog, so a file
// only has to carry what it overrides.
type Catalog struct {
	DailyMissions     []domain.MissionTemplate `json:"daily_missions"`
	DailyActiveCount  int                      `json:"daily_active_count"`
	WeeklyMissions    []domain.MissionTemplate `json:"weekly_missions"`
	WeeklyActiveCount int                      `json:"weekly_active_count"`
	Achievements      []domain.Achievement     `json:"achievements"`
	LoginCalendar     []domain.CalendarEntry   `json:"login_calendar"`
}

// CalendarEntry returns the login calendar entry for day, if any.
func (c *Catalog) CalendarEntry(day int) (domain.CalendarEntry, bool) {
	for _, entry := range c.LoginCalendar {
		if entry.Day == day {
			return entry, true
		}
	}
	return domain.CalendarEntry{}, false
}

// applyDefaults fills absent sections and per-item defaults.
func (c *Catalog) applyDefaults() {
	defaults := DefaultCatalog()

	if len(c.DailyMissions) == 0 {
		c.DailyMissions = defaults.DailyMissions
	}
	if c.DailyActiveCount == 0 {
		c.DailyActiveCount = DefaultActiveMissions
	}
	if len(c.WeeklyMissions) == 0 {
		c.WeeklyMissions = defaults.WeeklyMissions
	}
	if c.WeeklyActiveCount == 0 {
		c.WeeklyActiveCount = DefaultActiveMissions
	}
	if len(c.Achievements) == 0 {
		c.Achievements = defaults.Achievements
	}
	if len(c.LoginCalendar) == 0 {
		c.LoginCalendar = defaults.LoginCalendar
	}

	// Daily missions track the best single run unless told otherwise.
	for i := range c.DailyMissions {
		if c.DailyMissions[i].Mode == "" {
			c.DailyMissions[i].Mode = domain.ProgressModeBest
		}
	}
	for i := range c.WeeklyMissions {
		if c.WeeklyMissions[i].Mode == "" {
			c.WeeklyMissions[i].Mode = domain.ProgressModeCumulative
		}
	}
	for i := range c.Achievements {
		if c.Achievements[i].Metric == "" {
			c.Achievements[i].Metric = string(c.Achievements[i].Category)
		}
	}
}
