package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
	"github.com/AccelByte/extend-runner-progression/pkg/progression"
	"github.com/AccelByte/extend-runner-progression/pkg/store"
)

// RecentUnlockedCount is the number of recent unlocks in AchievementsView.
const RecentUnlockedCount = 3

func (sess *session) dailyView(ctx context.Context) DailyView {
	sess.daily.CheckReset(ctx)
	return DailyView{
		Date:         sess.daily.LastResetDate(),
		Missions:     sess.daily.Missions(),
		AllCompleted: sess.daily.IsAllCompleted(),
		TotalRewards: sess.daily.TotalRewards(),
	}
}

func (sess *session) weeklyView(ctx context.Context) WeeklyView {
	sess.weekly.CheckReset(ctx)
	return WeeklyView{
		WeekStart:            sess.weekly.WeekStartDate(),
		Missions:             sess.weekly.Missions(),
		CompletedCount:       sess.weekly.CompletedCount(),
		TotalPossibleRewards: sess.weekly.TotalPossibleRewards(),
		LastHighScore:        sess.weekly.LastHighScore(),
	}
}

func (sess *session) loginView() LoginView {
	return LoginView{
		CurrentDay:    sess.login.CurrentDay(),
		Streak:        sess.login.Streak(),
		LastLoginDate: sess.login.LastLoginDate(),
		CanClaimToday: sess.login.CanClaimToday(),
		Calendar:      sess.login.RewardStatus(),
	}
}

func (sess *session) achievementsView(category domain.AchievementCategory) AchievementsView {
	list := sess.achievements.Achievements()
	if category != "" {
		list = sess.achievements.ByCategory(category)
	}
	return AchievementsView{
		Achievements:      list,
		TotalUnlocked:     sess.achievements.TotalUnlocked(),
		CompletionPercent: sess.achievements.CompletionPercent(),
		RecentUnlocked:    sess.achievements.RecentUnlocked(RecentUnlockedCount),
		TotalRewards:      sess.achievements.TotalRewards(),
	}
}

// Daily returns today's missions, rolling them over first if the day changed.
func (s *ProgressionService) Daily(ctx context.Context, playerID string) (DailyView, error) {
	var v DailyView
	err := s.with(ctx, playerID, func(sess *session) error {
		v = sess.dailyView(ctx)
		return nil
	})
	return v, err
}

// Weekly returns this week's missions, rolling them over first if the week changed.
func (s *ProgressionService) Weekly(ctx context.Context, playerID string) (WeeklyView, error) {
	var v WeeklyView
	err := s.with(ctx, playerID, func(sess *session) error {
		v = sess.weeklyView(ctx)
		return nil
	})
	return v, err
}

// LoginCalendar returns the login calendar. It does not count as a login.
func (s *ProgressionService) LoginCalendar(ctx context.Context, playerID string) (LoginView, error) {
	var v LoginView
	err := s.with(ctx, playerID, func(sess *session) error {
		v = sess.loginView()
		return nil
	})
	return v, err
}

// Achievements returns the achievements, restricted to category when it is set.
func (s *ProgressionService) Achievements(ctx context.Context, playerID string, category domain.AchievementCategory) (AchievementsView, error) {
	if category != "" && !category.IsValid() {
		return AchievementsView{}, errors.ErrInvalidInput(fmt.Sprintf("unknown achievement category %q", category))
	}
	var v AchievementsView
	err := s.with(ctx, playerID, func(sess *session) error {
		v = sess.achievementsView(category)
		return nil
	})
	return v, err
}

// Overview returns every read model of a player at once.
func (s *ProgressionService) Overview(ctx context.Context, playerID string) (Overview, error) {
	var v Overview
	err := s.with(ctx, playerID, func(sess *session) error {
		v = Overview{
			PlayerID:     playerID,
			Daily:        sess.dailyView(ctx),
			Weekly:       sess.weeklyView(ctx),
			Login:        sess.loginView(),
			Achievements: sess.achievementsView(""),
			Lifetime:     sess.lifetime.Totals(),
		}
		return nil
	})
	return v, err
}

// Receipts lists the player's paid claims, most recent first.
func (s *ProgressionService) Receipts(ctx context.Context, playerID string, limit int) ([]domain.ClaimReceipt, error) {
	if playerID == "" {
		return nil, errors.ErrInvalidInput("player id is required")
	}
	receipts, err := s.ledger.List(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing claim receipts: %w", err)
	}
	return receipts, nil
}

// Export returns the raw persisted snapshots of a player keyed by snapshot key.
// Keys that were never written are omitted.
func (s *ProgressionService) Export(ctx context.Context, playerID string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	err := s.with(ctx, playerID, func(sess *session) error {
		docs, err := store.GetMany(ctx, store.ForPlayer(s.store, playerID), progression.SnapshotKeys)
		if err != nil {
			return errors.ErrStoreError("export", err)
		}
		for key, doc := range docs {
			out[key] = json.RawMessage(doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Import overwrites the player's snapshots with docs and reloads the session.
// Only the snapshot keys returned by Export are accepted.
func (s *ProgressionService) Import(ctx context.Context, playerID string, docs map[string]json.RawMessage) error {
	for key, doc := range docs {
		if !slices.Contains(progression.SnapshotKeys, key) {
			return errors.ErrInvalidInput(fmt.Sprintf("unknown snapshot key %q", key))
		}
		if !json.Valid(doc) {
			return errors.ErrInvalidInput(fmt.Sprintf("snapshot %q is not valid JSON", key))
		}
	}

	err := s.with(ctx, playerID, func(sess *session) error {
		ps := store.ForPlayer(s.store, playerID)
		for key, doc := range docs {
			if err := ps.Set(ctx, key, string(doc)); err != nil {
				return errors.ErrStoreError("import", err)
			}
		}
		sess.load(ctx)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("player progression imported", "player_id", playerID, "snapshots", len(docs))
	return nil
}
