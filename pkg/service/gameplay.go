package service

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
)

// EventKind selects which progression call a GameplayEvent maps to.
type EventKind string

const (
	EventLogin       EventKind = "login"
	EventRun         EventKind = "run"
	EventDailyStat   EventKind = "daily_stat"
	EventWeeklyStat  EventKind = "weekly_stat"
	EventAction      EventKind = "action"
	EventAchievement EventKind = "achievement"
	EventMetric      EventKind = "metric"
)

// GameplayEvent is the transport-neutral form of a progression input.
// Name is the stat, key, action, category or metric; Run is only used by EventRun.
type GameplayEvent struct {
	PlayerID string           `json:"player_id"`
	Kind     EventKind        `json:"kind"`
	Name     string           `json:"name,omitempty"`
	Value    int              `json:"value,omitempty"`
	Run      *domain.RunStats `json:"run,omitempty"`
}

// Validate checks the event shape without touching player state.
func (e GameplayEvent) Validate() error {
	if e.PlayerID == "" {
		return errors.ErrInvalidInput("player id is required")
	}
	switch e.Kind {
	case EventLogin:
		return nil
	case EventRun:
		if e.Run == nil {
			return errors.ErrInvalidInput("run event without run stats")
		}
		return nil
	case EventDailyStat, EventWeeklyStat, EventAction, EventAchievement, EventMetric:
		if e.Name == "" {
			return errors.ErrInvalidInput(fmt.Sprintf("%s event without name", e.Kind))
		}
		return nil
	default:
		return errors.ErrInvalidInput(fmt.Sprintf("unknown event kind %q", e.Kind))
	}
}

// Apply dispatches a gameplay event to the matching progression call.
func (s *ProgressionService) Apply(ctx context.Context, e GameplayEvent) (Progress, error) {
	if err := e.Validate(); err != nil {
		return Progress{}, err
	}

	switch e.Kind {
	case EventLogin:
		res, err := s.Login(ctx, e.PlayerID)
		return Progress{Unlocked: res.Unlocked}, err
	case EventRun:
		return s.RecordRun(ctx, e.PlayerID, *e.Run)
	case EventDailyStat:
		return s.UpdateDaily(ctx, e.PlayerID, e.Name, e.Value)
	case EventWeeklyStat:
		return s.UpdateWeekly(ctx, e.PlayerID, e.Name, e.Value)
	case EventAction:
		return s.TrackAction(ctx, e.PlayerID, e.Name, e.Value)
	case EventAchievement:
		return s.UpdateAchievement(ctx, e.PlayerID, domain.AchievementCategory(e.Name), e.Value)
	default:
		return s.TrackMetric(ctx, e.PlayerID, e.Name, e.Value)
	}
}
