package progression

import (
	"context"
	"fmt"
	"sort"

	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
	"github.com/AccelByte/extend-runner-progression/pkg/events"
)

// StreakChange is the payload published when a login changes the streak.
type StreakChange struct {
	Transition domain.StreakTransition `json:"transition"`
	CurrentDay int                     `json:"current_day"`
	Streak     int                     `json:"streak"`
}

// LoginRewards runs the 7-day login calendar. currentDay is 1-based and 0
// before the first login.
type LoginRewards struct {
	deps          Deps
	currentDay    int
	lastLoginDate string
	claimed       map[int]bool
	streak        int
}

// NewLoginRewards loads the persisted calendar state. The streak is not
// evaluated until CheckLoginStreak is called.
func NewLoginRewards(ctx context.Context, deps Deps) *LoginRewards {
	m := &LoginRewards{
		deps:    deps.withDefaults(),
		claimed: make(map[int]bool),
	}
	if snap, ok := loadSnapshot(ctx, m.deps, LoginKey, migrateLegacyLogin); ok {
		m.currentDay = snap.CurrentDay
		m.lastLoginDate = snap.LastLoginDate
		m.streak = snap.Streak
		for _, day := range snap.RewardsClaimed {
			m.claimed[day] = true
		}
	}
	return m
}

func (m *LoginRewards) snapshot() LoginSnapshot {
	days := make([]int, 0, len(m.claimed))
	for day, ok := range m.claimed {
		if ok {
			days = append(days, day)
		}
	}
	sort.Ints(days)
	return LoginSnapshot{
		CurrentDay:     m.currentDay,
		LastLoginDate:  m.lastLoginDate,
		RewardsClaimed: days,
		Streak:         m.streak,
	}
}

func (m *LoginRewards) save(ctx context.Context) {
	saveSnapshot(ctx, m.deps, LoginKey, m.snapshot())
}

func (m *LoginRewards) calendarDays() int {
	return len(m.deps.Catalog.Calendar())
}

func (m *LoginRewards) today() string {
	return common.DateKey(m.deps.Clock.Now())
}

// CheckLoginStreak evaluates today's login against the last recorded one.
// Calling it again on the same calendar day changes nothing.
func (m *LoginRewards) CheckLoginStreak(ctx context.Context) domain.StreakTransition {
	today := m.today()

	if m.lastLoginDate == "" {
		m.restart(today)
		m.save(ctx)
		return m.changed(ctx, domain.StreakFirstLogin)
	}
	if m.lastLoginDate == today {
		return domain.StreakSameDay
	}

	diff, err := common.DaysBetweenKeys(m.lastLoginDate, today)
	if err != nil {
		m.deps.Logger.Warn("invalid last login date, breaking streak",
			"last_login_date", m.lastLoginDate, "error", err)
		diff = 2
	}

	var transition domain.StreakTransition
	switch {
	case diff == 1:
		m.currentDay++
		m.streak++
		transition = domain.StreakContinued
		if m.currentDay > m.calendarDays() {
			m.currentDay = 1
			clear(m.claimed)
			transition = domain.StreakCycleWrapped
		}
		m.lastLoginDate = today
	case diff > 1:
		m.restart(today)
		transition = domain.StreakBroken
	default:
		m.deps.Logger.Warn("clock moved backwards, resetting login streak",
			"last_login_date", m.lastLoginDate, "today", today, "days", diff)
		m.restart(today)
		transition = domain.StreakClockRegressed
	}

	m.save(ctx)
	return m.changed(ctx, transition)
}

func (m *LoginRewards) restart(today string) {
	m.currentDay = 1
	m.streak = 1
	m.lastLoginDate = today
	clear(m.claimed)
}

func (m *LoginRewards) changed(ctx context.Context, t domain.StreakTransition) domain.StreakTransition {
	m.deps.Logger.Info("login streak evaluated",
		"transition", t, "current_day", m.currentDay, "streak", m.streak)
	m.deps.publish(ctx, events.LoginStreakChanged, StreakChange{
		Transition: t,
		CurrentDay: m.currentDay,
		Streak:     m.streak,
	})
	return t
}

// CanClaimToday reports whether today's login has been evaluated and its
// calendar day is still unclaimed.
func (m *LoginRewards) CanClaimToday() bool {
	return m.lastLoginDate == m.today() && !m.claimed[m.currentDay]
}

// PendingTodayReward returns what ClaimTodayReward would pay without claiming it.
func (m *LoginRewards) PendingTodayReward() (domain.CalendarEntry, error) {
	if m.lastLoginDate != m.today() {
		return domain.CalendarEntry{}, errors.ErrNotEligible("login has not been checked today")
	}
	if m.claimed[m.currentDay] {
		return domain.CalendarEntry{}, errors.ErrAlreadyClaimed(DayItemID(m.currentDay))
	}
	entry, ok := m.deps.Catalog.CalendarEntry(m.currentDay)
	if !ok {
		return domain.CalendarEntry{}, errors.ErrNotEligible(fmt.Sprintf("no calendar entry for day %d", m.currentDay))
	}
	return entry, nil
}

// ClaimTodayReward claims the calendar entry of the current day.
func (m *LoginRewards) ClaimTodayReward(ctx context.Context) (domain.CalendarEntry, error) {
	if _, err := m.PendingTodayReward(); err != nil {
		return domain.CalendarEntry{}, err
	}
	return m.ClaimDay(ctx, m.currentDay)
}

// ClaimDay claims calendar day as set by the last login check. Unlike
// ClaimTodayReward it does not compare the login date with the clock.
func (m *LoginRewards) ClaimDay(ctx context.Context, day int) (domain.CalendarEntry, error) {
	if day != m.currentDay {
		return domain.CalendarEntry{}, errors.ErrNotEligible(fmt.Sprintf("calendar day %d is not the current day", day))
	}
	if m.claimed[day] {
		return domain.CalendarEntry{}, errors.ErrAlreadyClaimed(DayItemID(day))
	}
	entry, ok := m.deps.Catalog.CalendarEntry(day)
	if !ok {
		return domain.CalendarEntry{}, errors.ErrNotEligible(fmt.Sprintf("no calendar entry for day %d", day))
	}
	m.claimed[day] = true
	m.save(ctx)
	m.deps.Logger.Info("login reward claimed", "day", day)
	return entry, nil
}

// DayItemID names a calendar day in claim receipts.
func DayItemID(day int) string {
	return fmt.Sprintf("day_%d", day)
}

// RewardStatus returns the whole calendar with claim state per day.
func (m *LoginRewards) RewardStatus() []domain.CalendarDayStatus {
	canClaim := m.CanClaimToday()
	calendar := m.deps.Catalog.Calendar()
	status := make([]domain.CalendarDayStatus, 0, len(calendar))
	for _, entry := range calendar {
		isToday := entry.Day == m.currentDay
		status = append(status, domain.CalendarDayStatus{
			CalendarEntry: entry,
			IsClaimed:     m.claimed[entry.Day],
			IsToday:       isToday,
			IsAvailable:   isToday && canClaim,
		})
	}
	return status
}

func (m *LoginRewards) CurrentDay() int {
	return m.currentDay
}

func (m *LoginRewards) Streak() int {
	return m.streak
}

func (m *LoginRewards) LastLoginDate() string {
	return m.lastLoginDate
}

// ClaimedDays returns the claimed calendar days in ascending order.
func (m *LoginRewards) ClaimedDays() []int {
	return m.snapshot().RewardsClaimed
}

// Reset forgets every login. The next CheckLoginStreak is a first login.
func (m *LoginRewards) Reset(ctx context.Context) {
	m.currentDay = 0
	m.streak = 0
	m.lastLoginDate = ""
	clear(m.claimed)
	m.save(ctx)
}
