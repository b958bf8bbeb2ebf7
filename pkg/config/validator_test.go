package config

import (
	"strings"
	"testing"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Catalog)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid built-in catalog",
			mutate:  func(c *Catalog) {},
			wantErr: false,
		},
		{
			name:    "empty daily pool",
			mutate:  func(c *Catalog) { c.DailyMissions = nil },
			wantErr: true,
			errMsg:  "catalog must have at least one daily mission",
		},
		{
			name:    "empty weekly pool",
			mutate:  func(c *Catalog) { c.WeeklyMissions = nil },
			wantErr: true,
			errMsg:  "catalog must have at least one weekly mission",
		},
		{
			name:    "zero daily active count",
			mutate:  func(c *Catalog) { c.DailyActiveCount = 0 },
			wantErr: true,
			errMsg:  "daily_active_count 0 out of range",
		},
		{
			name:    "weekly active count larger than pool",
			mutate:  func(c *Catalog) { c.WeeklyActiveCount = 9 },
			wantErr: true,
			errMsg:  "weekly_active_count 9 out of range (1..8)",
		},
		{
			name:    "empty mission ID",
			mutate:  func(c *Catalog) { c.DailyMissions[0].ID = "" },
			wantErr: true,
			errMsg:  "mission ID cannot be empty",
		},
		{
			name:    "empty mission description",
			mutate:  func(c *Catalog) { c.DailyMissions[0].Description = "" },
			wantErr: true,
			errMsg:  "mission description cannot be empty",
		},
		{
			name:    "empty mission stat",
			mutate:  func(c *Catalog) { c.WeeklyMissions[2].Stat = "" },
			wantErr: true,
			errMsg:  "stat cannot be empty",
		},
		{
			name:    "invalid mission mode",
			mutate:  func(c *Catalog) { c.WeeklyMissions[0].Mode = "sum" },
			wantErr: true,
			errMsg:  "invalid mode 'sum'",
		},
		{
			name:    "non-positive mission target",
			mutate:  func(c *Catalog) { c.DailyMissions[1].Target = 0 },
			wantErr: true,
			errMsg:  "target must be positive",
		},
		{
			name:    "invalid difficulty",
			mutate:  func(c *Catalog) { c.WeeklyMissions[0].Difficulty = "insane" },
			wantErr: true,
			errMsg:  "invalid difficulty 'insane'",
		},
		{
			name:    "empty mission reward",
			mutate:  func(c *Catalog) { c.DailyMissions[0].Reward = domain.Reward{} },
			wantErr: true,
			errMsg:  "reward cannot be empty",
		},
		{
			name:    "negative reward",
			mutate:  func(c *Catalog) { c.DailyMissions[0].Reward = domain.Reward{Coins: 10, Gems: -1} },
			wantErr: true,
			errMsg:  "reward amounts cannot be negative",
		},
		{
			name:    "duplicate daily mission ID",
			mutate:  func(c *Catalog) { c.DailyMissions[1].ID = c.DailyMissions[0].ID },
			wantErr: true,
			errMsg:  "duplicate mission ID: distance_5k",
		},
		{
			name:    "duplicate achievement ID",
			mutate:  func(c *Catalog) { c.Achievements[1].ID = c.Achievements[0].ID },
			wantErr: true,
			errMsg:  "duplicate achievement ID: distance_10k",
		},
		{
			name:    "empty achievement name",
			mutate:  func(c *Catalog) { c.Achievements[0].Name = "" },
			wantErr: true,
			errMsg:  "achievement name cannot be empty",
		},
		{
			name:    "invalid achievement category",
			mutate:  func(c *Catalog) { c.Achievements[0].Category = "fishing" },
			wantErr: true,
			errMsg:  "invalid category 'fishing'",
		},
		{
			name:    "empty achievement metric",
			mutate:  func(c *Catalog) { c.Achievements[0].Metric = "" },
			wantErr: true,
			errMsg:  "metric cannot be empty",
		},
		{
			name:    "invalid tier",
			mutate:  func(c *Catalog) { c.Achievements[0].Tier = "diamond" },
			wantErr: true,
			errMsg:  "invalid tier 'diamond'",
		},
		{
			name:    "calendar too short",
			mutate:  func(c *Catalog) { c.LoginCalendar = c.LoginCalendar[:6] },
			wantErr: true,
			errMsg:  "login calendar must have 7 days, got 6",
		},
		{
			name:    "calendar day out of range",
			mutate:  func(c *Catalog) { c.LoginCalendar[6].Day = 8 },
			wantErr: true,
			errMsg:  "login calendar day 8 out of range",
		},
		{
			name:    "duplicate calendar day",
			mutate:  func(c *Catalog) { c.LoginCalendar[6].Day = 1 },
			wantErr: true,
			errMsg:  "duplicate login calendar day: 1",
		},
		{
			name:    "empty calendar reward",
			mutate:  func(c *Catalog) { c.LoginCalendar[2].Reward = domain.Reward{} },
			wantErr: true,
			errMsg:  "invalid login calendar day 3",
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := DefaultCatalog()
			tt.mutate(catalog)

			err := v.Validate(catalog)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("achievement categories are all represented", func(t *testing.T) {
		counts := make(map[domain.AchievementCategory]int)
		for _, a := range catalog.Achievements {
			counts[a.Category]++
		}
		want := map[domain.AchievementCategory]int{
			domain.CategoryDistance: 4,
			domain.CategoryCoins:    3,
			domain.CategorySurvival: 3,
			domain.CategorySkills:   2,
			domain.CategoryPerfect:  4,
			domain.CategoryScore:    3,
			domain.CategorySpecial:  4,
		}
		for category, n := range want {
			if counts[category] != n {
				t.Errorf("category %s has %d achievements, want %d", category, counts[category], n)
			}
		}
	})

	t.Run("login streak metric only feeds streak achievements", func(t *testing.T) {
		for _, a := range catalog.Achievements {
			isStreak := strings.HasPrefix(a.ID, "daily_streak_")
			if (a.Metric == MetricLoginStreak) != isStreak {
				t.Errorf("achievement %s has metric %s", a.ID, a.Metric)
			}
		}
	})

	t.Run("day 7 is the largest gem payout", func(t *testing.T) {
		day7, ok := catalog.CalendarEntry(7)
		if !ok {
			t.Fatal("day 7 missing")
		}
		for _, entry := range catalog.LoginCalendar {
			if entry.Day != 7 && entry.Reward.Gems >= day7.Reward.Gems {
				t.Errorf("day %d gems %d not below day 7 gems %d", entry.Day, entry.Reward.Gems, day7.Reward.Gems)
			}
		}
		if day7.Reward.Unlocks[UnlockCharacter] != "speed_demon" {
			t.Errorf("day 7 character = %q, want speed_demon", day7.Reward.Unlocks[UnlockCharacter])
		}
	})

	t.Run("daily pool uses best-run mode", func(t *testing.T) {
		for _, m := range catalog.DailyMissions {
			if m.Mode != domain.ProgressModeBest {
				t.Errorf("daily mission %s mode = %s", m.ID, m.Mode)
			}
		}
	})
}
