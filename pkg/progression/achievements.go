package progression

import (
	"context"
	"math"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
	"github.com/AccelByte/extend-runner-progression/pkg/events"
)

// Achievements tracks never-resetting milestones. Progress is a high-water
// mark and unlocking is one-way.
type Achievements struct {
	deps     Deps
	progress map[string]int
	unlocked map[string]bool
	claimed  map[string]bool
}

// NewAchievements loads the persisted achievement state.
func NewAchievements(ctx context.Context, deps Deps) *Achievements {
	m := &Achievements{
		deps:     deps.withDefaults(),
		progress: make(map[string]int),
		unlocked: make(map[string]bool),
		claimed:  make(map[string]bool),
	}
	if snap, ok := loadSnapshot(ctx, m.deps, AchievementKey, migrateLegacyAchievements); ok {
		for id, v := range snap.Progress {
			m.progress[id] = v
		}
		for _, id := range snap.Unlocked {
			m.unlocked[id] = true
		}
		for _, id := range snap.Claimed {
			m.claimed[id] = true
		}
	}
	return m
}

func (m *Achievements) snapshot() AchievementSnapshot {
	progress := make(map[string]int, len(m.progress))
	for id, v := range m.progress {
		progress[id] = v
	}
	return AchievementSnapshot{
		Unlocked: sortedKeys(m.unlocked),
		Progress: progress,
		Claimed:  sortedKeys(m.claimed),
	}
}

func (m *Achievements) save(ctx context.Context) {
	saveSnapshot(ctx, m.deps, AchievementKey, m.snapshot())
}

// UpdateProgress raises the progress of every locked achievement in category
// to value and returns the achievements unlocked by this call.
func (m *Achievements) UpdateProgress(ctx context.Context, category domain.AchievementCategory, value int) []domain.Achievement {
	return m.apply(ctx, m.deps.Catalog.AchievementsByCategory(category), value)
}

// TrackMetric is UpdateProgress restricted to the achievements fed by metric.
func (m *Achievements) TrackMetric(ctx context.Context, metric string, value int) []domain.Achievement {
	return m.apply(ctx, m.deps.Catalog.AchievementsByMetric(metric), value)
}

func (m *Achievements) apply(ctx context.Context, candidates []domain.Achievement, value int) []domain.Achievement {
	var unlocked []domain.Achievement
	changed := false
	for _, a := range candidates {
		if m.unlocked[a.ID] || value <= m.progress[a.ID] {
			continue
		}
		m.progress[a.ID] = value
		changed = true
		if value >= a.Target {
			m.unlocked[a.ID] = true
			unlocked = append(unlocked, a)
		}
	}

	if changed {
		m.save(ctx)
	}
	for _, a := range unlocked {
		m.deps.Logger.Info("achievement unlocked", "achievement_id", a.ID, "tier", a.Tier)
		m.deps.publish(ctx, events.AchievementUnlocked, a)
	}
	return unlocked
}

// PendingReward returns what Claim would pay for achievementID without claiming it.
func (m *Achievements) PendingReward(achievementID string) (domain.Reward, error) {
	a, ok := m.deps.Catalog.GetAchievement(achievementID)
	if !ok {
		return domain.Reward{}, errors.ErrAchievementNotFound(achievementID)
	}
	if !m.unlocked[achievementID] {
		return domain.Reward{}, errors.ErrNotCompleted(achievementID)
	}
	if m.claimed[achievementID] {
		return domain.Reward{}, errors.ErrAlreadyClaimed(achievementID)
	}
	return a.Reward, nil
}

// Claim pays out an unlocked achievement once.
func (m *Achievements) Claim(ctx context.Context, achievementID string) (domain.Reward, error) {
	reward, err := m.PendingReward(achievementID)
	if err != nil {
		return domain.Reward{}, err
	}
	m.claimed[achievementID] = true
	m.save(ctx)
	m.deps.Logger.Info("achievement claimed", "achievement_id", achievementID)
	return reward, nil
}

// Claimable returns unlocked, unclaimed achievement IDs in catalog order.
func (m *Achievements) Claimable() []string {
	var ids []string
	for _, a := range m.deps.Catalog.Achievements() {
		if m.unlocked[a.ID] && !m.claimed[a.ID] {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func (m *Achievements) view(a domain.Achievement) domain.AchievementView {
	progress := m.progress[a.ID]
	return domain.AchievementView{
		Achievement:     a,
		Progress:        progress,
		Unlocked:        m.unlocked[a.ID],
		Claimed:         m.claimed[a.ID],
		ProgressPercent: domain.ProgressPercent(progress, a.Target),
	}
}

func (m *Achievements) views(list []domain.Achievement) []domain.AchievementView {
	out := make([]domain.AchievementView, 0, len(list))
	for _, a := range list {
		out = append(out, m.view(a))
	}
	return out
}

// Achievements returns the whole catalog with progress.
func (m *Achievements) Achievements() []domain.AchievementView {
	return m.views(m.deps.Catalog.Achievements())
}

// ByCategory returns one category with progress.
func (m *Achievements) ByCategory(category domain.AchievementCategory) []domain.AchievementView {
	return m.views(m.deps.Catalog.AchievementsByCategory(category))
}

// RecentUnlocked returns up to n unlocked achievements, taken from the end of
// the catalog order and listed last first. No unlock time is recorded.
func (m *Achievements) RecentUnlocked(n int) []domain.Achievement {
	if n <= 0 {
		return nil
	}
	var recent []domain.Achievement
	all := m.deps.Catalog.Achievements()
	for i := len(all) - 1; i >= 0 && len(recent) < n; i-- {
		if m.unlocked[all[i].ID] {
			recent = append(recent, all[i])
		}
	}
	return recent
}

func (m *Achievements) IsUnlocked(achievementID string) bool {
	return m.unlocked[achievementID]
}

func (m *Achievements) Progress(achievementID string) int {
	return m.progress[achievementID]
}

// TotalUnlocked counts unlocked achievements.
func (m *Achievements) TotalUnlocked() int {
	return len(m.unlocked)
}

// TotalRewards sums the rewards of every unlocked achievement.
func (m *Achievements) TotalRewards() domain.Reward {
	var total domain.Reward
	for _, a := range m.deps.Catalog.Achievements() {
		if m.unlocked[a.ID] {
			total = total.Add(a.Reward)
		}
	}
	return total
}

// CompletionPercent returns the unlocked share of the catalog, rounded.
func (m *Achievements) CompletionPercent() int {
	total := len(m.deps.Catalog.Achievements())
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(m.TotalUnlocked()) / float64(total) * 100))
}

// Reset wipes all achievement progress.
func (m *Achievements) Reset(ctx context.Context) {
	clear(m.progress)
	clear(m.unlocked)
	clear(m.claimed)
	m.save(ctx)
}
