package progression

import (
	"context"
	"fmt"
	"sort"

	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
	"github.com/AccelByte/extend-runner-progression/pkg/events"
)

// Discrete in-run actions accepted by WeeklyMissions.TrackAction.
const (
	ActionPowerupCollected      = "powerup_collected"
	ActionNearMiss              = "near_miss"
	ActionGrappleUsed           = "grapple_used"
	ActionDailyMissionCompleted = "daily_mission_completed"
)

// actionKeys maps an action to the weekly progress key it feeds.
var actionKeys = map[string]string{
	ActionPowerupCollected:      config.KeyPowerupsCollected,
	ActionNearMiss:              config.KeyNearMisses,
	ActionGrappleUsed:           config.KeyGrapplesUsed,
	ActionDailyMissionCompleted: config.KeyDailyMissionsCompleted,
}

// WeeklyMissions tracks the missions drawn for the current week, which starts
// at local midnight of the most recent Sunday.
type WeeklyMissions struct {
	deps          Deps
	weekStartDate string
	active        []domain.MissionTemplate
	progress      map[string]int
	completed     map[string]bool
	claimed       map[string]bool
	lastHighScore int
}

// NewWeeklyMissions loads the persisted weekly state and resets it when it
// belongs to a previous week.
func NewWeeklyMissions(ctx context.Context, deps Deps) *WeeklyMissions {
	m := &WeeklyMissions{
		deps:      deps.withDefaults(),
		progress:  make(map[string]int),
		completed: make(map[string]bool),
		claimed:   make(map[string]bool),
	}
	if snap, ok := loadSnapshot(ctx, m.deps, WeeklyKey, migrateLegacyWeekly); ok {
		m.restore(snap)
	}
	m.CheckReset(ctx)
	return m
}

func (m *WeeklyMissions) restore(snap WeeklySnapshot) {
	m.weekStartDate = snap.WeekStartDate
	m.lastHighScore = snap.LastHighScore
	for k, v := range snap.Progress {
		m.progress[k] = v
	}
	for _, id := range snap.CompletedMissions {
		m.completed[id] = true
	}
	for _, id := range snap.ClaimedMissions {
		m.claimed[id] = true
	}
	for _, id := range snap.ActiveMissions {
		tmpl, ok := m.deps.Catalog.GetMission(id)
		if !ok {
			m.deps.Logger.Warn("dropping unknown weekly mission from snapshot", "mission_id", id)
			continue
		}
		m.active = append(m.active, tmpl)
	}
}

func (m *WeeklyMissions) snapshot() WeeklySnapshot {
	snap := WeeklySnapshot{
		WeekStartDate:     m.weekStartDate,
		ActiveMissions:    make([]string, 0, len(m.active)),
		Progress:          make(map[string]int, len(m.progress)),
		CompletedMissions: sortedKeys(m.completed),
		ClaimedMissions:   sortedKeys(m.claimed),
		LastHighScore:     m.lastHighScore,
	}
	for _, tmpl := range m.active {
		snap.ActiveMissions = append(snap.ActiveMissions, tmpl.ID)
	}
	for k, v := range m.progress {
		snap.Progress[k] = v
	}
	return snap
}

func (m *WeeklyMissions) save(ctx context.Context) {
	saveSnapshot(ctx, m.deps, WeeklyKey, m.snapshot())
}

// CheckReset starts a new week when the week key has changed, and draws a
// mission set when none is active. Returns true if anything was regenerated.
func (m *WeeklyMissions) CheckReset(ctx context.Context) bool {
	current := common.WeekKey(m.deps.Clock.Now())
	switch {
	case m.weekStartDate != current:
		m.deps.Logger.Info("new week detected, resetting weekly missions",
			"previous_week", m.weekStartDate, "week", current)
		m.reset(ctx, current)
		return true
	case len(m.active) == 0:
		m.generate()
		m.save(ctx)
		return true
	default:
		return false
	}
}

func (m *WeeklyMissions) reset(ctx context.Context, week string) {
	m.weekStartDate = week
	clear(m.progress)
	clear(m.completed)
	clear(m.claimed)
	m.lastHighScore = 0
	m.generate()
	m.save(ctx)
}

func (m *WeeklyMissions) generate() {
	picked, err := pickTemplates(m.deps.Rand, m.deps.Catalog.WeeklyPool(), m.deps.Catalog.WeeklyActiveCount())
	if err != nil {
		m.deps.Logger.Error("failed to draw weekly missions", "error", err)
	}
	m.active = picked

	ids := make([]string, 0, len(picked))
	for _, tmpl := range picked {
		ids = append(ids, tmpl.ID)
	}
	m.deps.Logger.Info("weekly missions generated", "week", m.weekStartDate, "missions", ids)
}

// ForceReset starts the current week over with a new mission set.
func (m *WeeklyMissions) ForceReset(ctx context.Context) {
	m.reset(ctx, common.WeekKey(m.deps.Clock.Now()))
}

// UpdateProgress folds value into every active, uncompleted mission tracking
// key and returns the missions completed by this call. Non-positive values are
// ignored.
func (m *WeeklyMissions) UpdateProgress(ctx context.Context, key string, value int) []domain.MissionView {
	m.CheckReset(ctx)
	completed, changed := m.apply(key, value)
	if changed {
		m.save(ctx)
	}
	m.notify(ctx, completed)
	return completed
}

func (m *WeeklyMissions) apply(key string, value int) (completed []domain.MissionView, changed bool) {
	if value <= 0 {
		return nil, false
	}
	for _, tmpl := range m.active {
		if tmpl.Stat != key || m.completed[tmpl.ID] {
			continue
		}
		mode := tmpl.Mode
		if mode == "" {
			mode = domain.ProgressModeCumulative
		}
		current := m.progress[tmpl.ID]
		next := mode.Apply(current, value)
		if next <= current {
			continue
		}
		m.progress[tmpl.ID] = next
		changed = true
		if next >= tmpl.Target {
			m.completed[tmpl.ID] = true
			completed = append(completed, m.view(tmpl))
		}
	}
	return completed, changed
}

func (m *WeeklyMissions) notify(ctx context.Context, completed []domain.MissionView) {
	for _, v := range completed {
		m.deps.Logger.Info("weekly mission completed", "mission_id", v.ID, "progress", v.Progress)
		m.deps.publish(ctx, events.WeeklyMissionCompleted, v)
	}
}

// TrackGameEnd derives the weekly progress updates of one finished run.
func (m *WeeklyMissions) TrackGameEnd(ctx context.Context, stats domain.RunStats) []domain.MissionView {
	m.CheckReset(ctx)

	var completed []domain.MissionView
	changed := false
	track := func(key string, value int) {
		c, ch := m.apply(key, value)
		completed = append(completed, c...)
		changed = changed || ch
	}

	if stats.Distance > 0 {
		track(config.KeyTotalDistance, stats.Distance)
	}
	if stats.Coins > 0 {
		track(config.KeyCoinsCollected, stats.Coins)
	}
	if stats.Score > m.lastHighScore {
		m.lastHighScore = stats.Score
		changed = true
		track(config.KeyHighScoreBeats, 1)
	}
	if stats.IsPerfect() {
		track(config.KeyPerfectRuns, 1)
	}

	if changed {
		m.save(ctx)
	}
	m.notify(ctx, completed)
	return completed
}

// TrackAction records count occurrences of a discrete in-run action.
// Unknown actions and non-positive counts are ignored.
func (m *WeeklyMissions) TrackAction(ctx context.Context, action string, count int) []domain.MissionView {
	key, ok := actionKeys[action]
	if !ok {
		m.deps.Logger.Debug("ignoring unknown weekly action", "action", action)
		return nil
	}
	if count <= 0 {
		return nil
	}
	return m.UpdateProgress(ctx, key, count)
}

func (m *WeeklyMissions) find(missionID string) (domain.MissionTemplate, bool) {
	for _, tmpl := range m.active {
		if tmpl.ID == missionID {
			return tmpl, true
		}
	}
	return domain.MissionTemplate{}, false
}

// PendingReward returns what Claim would pay for missionID without claiming it.
func (m *WeeklyMissions) PendingReward(missionID string) (domain.Reward, error) {
	tmpl, ok := m.find(missionID)
	if !ok {
		return domain.Reward{}, errors.ErrMissionNotFound(missionID)
	}
	if !m.completed[missionID] {
		return domain.Reward{}, errors.ErrNotCompleted(missionID)
	}
	if m.claimed[missionID] {
		return domain.Reward{}, errors.ErrAlreadyClaimed(missionID)
	}
	return tmpl.Reward, nil
}

// Claim pays out one completed mission of the current week.
func (m *WeeklyMissions) Claim(ctx context.Context, missionID string) (domain.Reward, error) {
	m.CheckReset(ctx)
	return m.claim(ctx, missionID)
}

// ClaimInWeek pays out a mission of the week starting on week without
// rolling the week over.
func (m *WeeklyMissions) ClaimInWeek(ctx context.Context, week, missionID string) (domain.Reward, error) {
	if week != m.weekStartDate {
		return domain.Reward{}, errors.ErrNotEligible(fmt.Sprintf("weekly missions of %s are no longer loaded", week))
	}
	return m.claim(ctx, missionID)
}

func (m *WeeklyMissions) claim(ctx context.Context, missionID string) (domain.Reward, error) {
	reward, err := m.PendingReward(missionID)
	if err != nil {
		return domain.Reward{}, err
	}
	m.claimed[missionID] = true
	m.save(ctx)
	m.deps.Logger.Info("weekly mission claimed", "mission_id", missionID)
	return reward, nil
}

// ClaimAll claims every completed, unclaimed mission and returns the summed reward.
func (m *WeeklyMissions) ClaimAll(ctx context.Context) domain.Reward {
	var total domain.Reward
	for _, id := range m.Claimable() {
		reward, err := m.Claim(ctx, id)
		if err != nil {
			m.deps.Logger.Warn("weekly claim skipped", "mission_id", id, "error", err)
			continue
		}
		total = total.Add(reward)
	}
	return total
}

// Claimable returns the IDs of completed, unclaimed missions in active order.
func (m *WeeklyMissions) Claimable() []string {
	var ids []string
	for _, tmpl := range m.active {
		if m.CanClaim(tmpl.ID) {
			ids = append(ids, tmpl.ID)
		}
	}
	return ids
}

func (m *WeeklyMissions) CanClaim(missionID string) bool {
	_, ok := m.find(missionID)
	return ok && m.completed[missionID] && !m.claimed[missionID]
}

func (m *WeeklyMissions) view(tmpl domain.MissionTemplate) domain.MissionView {
	progress := m.progress[tmpl.ID]
	return domain.MissionView{
		MissionTemplate: tmpl,
		MissionProgress: domain.MissionProgress{
			Progress:  progress,
			Completed: m.completed[tmpl.ID],
			Claimed:   m.claimed[tmpl.ID],
		},
		ProgressPercent: domain.ProgressPercent(progress, tmpl.Target),
	}
}

// Missions returns the active missions with their progress.
func (m *WeeklyMissions) Missions() []domain.MissionView {
	views := make([]domain.MissionView, 0, len(m.active))
	for _, tmpl := range m.active {
		views = append(views, m.view(tmpl))
	}
	return views
}

// CompletedCount returns how many missions were completed this week.
func (m *WeeklyMissions) CompletedCount() int {
	return len(m.completed)
}

// TotalPossibleRewards sums the rewards of every active mission.
func (m *WeeklyMissions) TotalPossibleRewards() domain.Reward {
	var total domain.Reward
	for _, tmpl := range m.active {
		total = total.Add(tmpl.Reward)
	}
	return total
}

func (m *WeeklyMissions) WeekStartDate() string {
	return m.weekStartDate
}

func (m *WeeklyMissions) LastHighScore() int {
	return m.lastHighScore
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k, ok := range set {
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
