package progression

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
	"github.com/AccelByte/extend-runner-progression/pkg/events"
)

type activeMission struct {
	domain.MissionTemplate
	domain.MissionProgress
}

func (m activeMission) view() domain.MissionView {
	return domain.MissionView{
		MissionTemplate: m.MissionTemplate,
		MissionProgress: m.MissionProgress,
		ProgressPercent: domain.ProgressPercent(m.Progress, m.Target),
	}
}

// DailyMissions tracks the missions drawn for the current calendar day.
// Progress is a high-water mark of single-run values.
type DailyMissions struct {
	deps           Deps
	lastResetDate  string
	completedToday []string
	missions       []activeMission
}

// NewDailyMissions loads the persisted daily state and rolls it over when it
// belongs to a previous day.
func NewDailyMissions(ctx context.Context, deps Deps) *DailyMissions {
	m := &DailyMissions{deps: deps.withDefaults()}
	if snap, ok := loadSnapshot(ctx, m.deps, DailyKey, migrateLegacyDaily); ok {
		m.restore(snap)
	}
	m.CheckReset(ctx)
	return m
}

func (m *DailyMissions) restore(snap DailySnapshot) {
	m.lastResetDate = snap.LastResetDate
	m.completedToday = append([]string(nil), snap.CompletedToday...)
	for _, st := range snap.Missions {
		tmpl, ok := m.deps.Catalog.GetMission(st.ID)
		if !ok {
			m.deps.Logger.Warn("dropping unknown daily mission from snapshot", "mission_id", st.ID)
			continue
		}
		m.missions = append(m.missions, activeMission{MissionTemplate: tmpl, MissionProgress: st.MissionProgress})
	}
}

func (m *DailyMissions) snapshot() DailySnapshot {
	snap := DailySnapshot{
		LastResetDate:  m.lastResetDate,
		CompletedToday: append([]string{}, m.completedToday...),
		Missions:       make([]MissionState, 0, len(m.missions)),
	}
	for _, ms := range m.missions {
		snap.Missions = append(snap.Missions, MissionState{ID: ms.ID, MissionProgress: ms.MissionProgress})
	}
	return snap
}

func (m *DailyMissions) save(ctx context.Context) {
	saveSnapshot(ctx, m.deps, DailyKey, m.snapshot())
}

// CheckReset draws a new mission set when the day has changed since the last
// reset (or no set is active). Returns true if a reset happened.
func (m *DailyMissions) CheckReset(ctx context.Context) bool {
	today := common.DateKey(m.deps.Clock.Now())
	if m.lastResetDate == today && len(m.missions) > 0 {
		return false
	}
	m.reset(ctx, today)
	return true
}

func (m *DailyMissions) reset(ctx context.Context, today string) {
	m.completedToday = nil
	m.lastResetDate = today
	m.missions = nil

	picked, err := pickTemplates(m.deps.Rand, m.deps.Catalog.DailyPool(), m.deps.Catalog.DailyActiveCount())
	if err != nil {
		m.deps.Logger.Error("failed to draw daily missions", "error", err)
	}
	ids := make([]string, 0, len(picked))
	for _, tmpl := range picked {
		m.missions = append(m.missions, activeMission{MissionTemplate: tmpl})
		ids = append(ids, tmpl.ID)
	}

	m.save(ctx)
	m.deps.Logger.Info("daily missions reset", "date", today, "missions", ids)
}

// Reset discards today's progress and draws a new mission set.
func (m *DailyMissions) Reset(ctx context.Context) {
	m.reset(ctx, common.DateKey(m.deps.Clock.Now()))
}

// UpdateProgress folds value into every active, uncompleted mission tracking
// stat and returns the missions completed by this call.
func (m *DailyMissions) UpdateProgress(ctx context.Context, stat string, value int) []domain.MissionView {
	m.CheckReset(ctx)

	var completed []domain.MissionView
	changed := false
	for i := range m.missions {
		ms := &m.missions[i]
		if ms.Stat != stat || ms.Completed {
			continue
		}
		next := ms.Mode.Apply(ms.Progress, value)
		if next <= ms.Progress {
			continue
		}
		ms.Progress = next
		changed = true
		if ms.Progress >= ms.Target {
			ms.Completed = true
			m.completedToday = append(m.completedToday, ms.ID)
			completed = append(completed, ms.view())
		}
	}

	if changed {
		m.save(ctx)
	}
	for _, v := range completed {
		m.deps.Logger.Info("daily mission completed", "mission_id", v.ID, "progress", v.Progress)
		m.deps.publish(ctx, events.DailyMissionCompleted, v)
	}
	return completed
}

func (m *DailyMissions) indexOf(missionID string) int {
	for i := range m.missions {
		if m.missions[i].ID == missionID {
			return i
		}
	}
	return -1
}

// PendingReward returns what Claim would pay for missionID without claiming it.
func (m *DailyMissions) PendingReward(missionID string) (domain.Reward, error) {
	i := m.indexOf(missionID)
	if i < 0 {
		return domain.Reward{}, errors.ErrMissionNotFound(missionID)
	}
	ms := m.missions[i]
	if !ms.Completed {
		return domain.Reward{}, errors.ErrNotCompleted(missionID)
	}
	if ms.Claimed {
		return domain.Reward{}, errors.ErrAlreadyClaimed(missionID)
	}
	return ms.Reward, nil
}

// Claim pays out one completed mission.
func (m *DailyMissions) Claim(ctx context.Context, missionID string) (domain.Reward, error) {
	m.CheckReset(ctx)
	return m.claim(ctx, missionID)
}

// ClaimOn pays out a mission of the day date without rolling the day over.
// It fails once date is no longer the loaded day.
func (m *DailyMissions) ClaimOn(ctx context.Context, date, missionID string) (domain.Reward, error) {
	if date != m.lastResetDate {
		return domain.Reward{}, errors.ErrNotEligible(fmt.Sprintf("daily missions of %s are no longer loaded", date))
	}
	return m.claim(ctx, missionID)
}

func (m *DailyMissions) claim(ctx context.Context, missionID string) (domain.Reward, error) {
	reward, err := m.PendingReward(missionID)
	if err != nil {
		return domain.Reward{}, err
	}
	m.missions[m.indexOf(missionID)].Claimed = true
	m.save(ctx)
	m.deps.Logger.Info("daily mission claimed", "mission_id", missionID)
	return reward, nil
}

// ClaimAll claims every completed, unclaimed mission and returns the summed reward.
func (m *DailyMissions) ClaimAll(ctx context.Context) domain.Reward {
	var total domain.Reward
	for _, id := range m.Claimable() {
		reward, err := m.Claim(ctx, id)
		if err != nil {
			m.deps.Logger.Warn("daily claim skipped", "mission_id", id, "error", err)
			continue
		}
		total = total.Add(reward)
	}
	return total
}

// Claimable returns the IDs of completed, unclaimed missions.
func (m *DailyMissions) Claimable() []string {
	var ids []string
	for _, ms := range m.missions {
		if ms.CanClaim() {
			ids = append(ids, ms.ID)
		}
	}
	return ids
}

// Missions returns the active missions with their progress.
func (m *DailyMissions) Missions() []domain.MissionView {
	views := make([]domain.MissionView, 0, len(m.missions))
	for _, ms := range m.missions {
		views = append(views, ms.view())
	}
	return views
}

// TotalRewards sums the rewards of today's completed missions.
func (m *DailyMissions) TotalRewards() domain.Reward {
	var total domain.Reward
	for _, ms := range m.missions {
		if ms.Completed {
			total = total.Add(ms.Reward)
		}
	}
	return total
}

func (m *DailyMissions) CompletionCount() int {
	n := 0
	for _, ms := range m.missions {
		if ms.Completed {
			n++
		}
	}
	return n
}

func (m *DailyMissions) IsAllCompleted() bool {
	return len(m.missions) > 0 && m.CompletionCount() == len(m.missions)
}

func (m *DailyMissions) CanClaim(missionID string) bool {
	i := m.indexOf(missionID)
	return i >= 0 && m.missions[i].CanClaim()
}

func (m *DailyMissions) LastResetDate() string {
	return m.lastResetDate
}

// CompletedToday returns the IDs completed today in completion order.
func (m *DailyMissions) CompletedToday() []string {
	return append([]string(nil), m.completedToday...)
}
