package service

import (
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// Progress lists what a mutating call completed or unlocked.
type Progress struct {
	DailyCompleted  []domain.MissionView `json:"daily_completed,omitempty"`
	WeeklyCompleted []domain.MissionView `json:"weekly_completed,omitempty"`
	Unlocked        []domain.Achievement `json:"achievements_unlocked,omitempty"`
}

func (p *Progress) merge(o Progress) {
	p.DailyCompleted = append(p.DailyCompleted, o.DailyCompleted...)
	p.WeeklyCompleted = append(p.WeeklyCompleted, o.WeeklyCompleted...)
	p.Unlocked = append(p.Unlocked, o.Unlocked...)
}

// IsEmpty returns true if nothing was completed or unlocked.
func (p Progress) IsEmpty() bool {
	return len(p.DailyCompleted) == 0 && len(p.WeeklyCompleted) == 0 && len(p.Unlocked) == 0
}

// LoginResult is returned by Login.
type LoginResult struct {
	Transition    domain.StreakTransition `json:"transition"`
	CurrentDay    int                     `json:"current_day"`
	Streak        int                     `json:"streak"`
	CanClaimToday bool                    `json:"can_claim_today"`
	Unlocked      []domain.Achievement    `json:"achievements_unlocked,omitempty"`
}

// ResetScope selects what Reset clears.
type ResetScope string

const (
	ResetDaily        ResetScope = "daily"
	ResetWeekly       ResetScope = "weekly"
	ResetLogin        ResetScope = "login"
	ResetAchievements ResetScope = "achievements"
	ResetLifetime     ResetScope = "lifetime"
	ResetAll          ResetScope = "all"
)

// IsValid returns true if the scope is known.
func (s ResetScope) IsValid() bool {
	switch s {
	case ResetDaily, ResetWeekly, ResetLogin, ResetAchievements, ResetLifetime, ResetAll:
		return true
	default:
		return false
	}
}

// DailyView is the read model of the daily missions.
type DailyView struct {
	Date         string               `json:"date"`
	Missions     []domain.MissionView `json:"missions"`
	AllCompleted bool                 `json:"all_completed"`
	TotalRewards domain.Reward        `json:"total_rewards"`
}

// WeeklyView is the read model of the weekly missions.
type WeeklyView struct {
	WeekStart            string               `json:"week_start"`
	Missions             []domain.MissionView `json:"missions"`
	CompletedCount       int                  `json:"completed_count"`
	TotalPossibleRewards domain.Reward        `json:"total_possible_rewards"`
	LastHighScore        int                  `json:"last_high_score"`
}

// LoginView is the read model of the login calendar.
type LoginView struct {
	CurrentDay    int                        `json:"current_day"`
	Streak        int                        `json:"streak"`
	LastLoginDate string                     `json:"last_login_date,omitempty"`
	CanClaimToday bool                       `json:"can_claim_today"`
	Calendar      []domain.CalendarDayStatus `json:"calendar"`
}

// AchievementsView is the read model of the achievements.
type AchievementsView struct {
	Achievements      []domain.AchievementView `json:"achievements"`
	TotalUnlocked     int                      `json:"total_unlocked"`
	CompletionPercent int                      `json:"completion_percent"`
	RecentUnlocked    []domain.Achievement     `json:"recent_unlocked,omitempty"`
	TotalRewards      domain.Reward            `json:"total_rewards"`
}

// Overview is the whole progression state of a player.
type Overview struct {
	PlayerID     string           `json:"player_id"`
	Daily        DailyView        `json:"daily"`
	Weekly       WeeklyView       `json:"weekly"`
	Login        LoginView        `json:"login"`
	Achievements AchievementsView `json:"achievements"`
	Lifetime     map[string]int   `json:"lifetime"`
}
