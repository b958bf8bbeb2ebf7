package service

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-runner-progression/pkg/client"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
	"github.com/AccelByte/extend-runner-progression/pkg/events"
	"github.com/AccelByte/extend-runner-progression/pkg/ledger"
	"github.com/AccelByte/extend-runner-progression/pkg/progression"
)

// pendingClaim is an eligible claim that has not been marked yet. commit
// marks it against the day or week it was found in, so a grant that spans a
// rollover is still recorded.
type pendingClaim struct {
	itemID string
	reward domain.Reward
	commit func(ctx context.Context) error
}

func (sess *session) pending(ctx context.Context, source domain.ClaimSource, itemID string) (pendingClaim, error) {
	switch source {
	case domain.ClaimSourceDaily:
		sess.daily.CheckReset(ctx)
		date := sess.daily.LastResetDate()
		reward, err := sess.daily.PendingReward(itemID)
		return pendingClaim{itemID: itemID, reward: reward, commit: func(ctx context.Context) error {
			_, err := sess.daily.ClaimOn(ctx, date, itemID)
			return err
		}}, err
	case domain.ClaimSourceWeekly:
		sess.weekly.CheckReset(ctx)
		week := sess.weekly.WeekStartDate()
		reward, err := sess.weekly.PendingReward(itemID)
		return pendingClaim{itemID: itemID, reward: reward, commit: func(ctx context.Context) error {
			_, err := sess.weekly.ClaimInWeek(ctx, week, itemID)
			return err
		}}, err
	case domain.ClaimSourceAchievement:
		reward, err := sess.achievements.PendingReward(itemID)
		return pendingClaim{itemID: itemID, reward: reward, commit: func(ctx context.Context) error {
			_, err := sess.achievements.Claim(ctx, itemID)
			return err
		}}, err
	case domain.ClaimSourceLogin:
		entry, err := sess.login.PendingTodayReward()
		if err != nil {
			return pendingClaim{}, err
		}
		return pendingClaim{itemID: progression.DayItemID(entry.Day), reward: entry.Reward, commit: func(ctx context.Context) error {
			_, err := sess.login.ClaimDay(ctx, entry.Day)
			return err
		}}, nil
	default:
		return pendingClaim{}, errors.ErrInvalidInput(fmt.Sprintf("unknown claim source %q", source))
	}
}

// Claim pays out one item. The reward is granted before the item is marked
// claimed, so a failed grant leaves the item claimable. For the login source
// itemID is ignored and today's calendar day is claimed.
func (s *ProgressionService) Claim(ctx context.Context, playerID string, source domain.ClaimSource, itemID string) (domain.ClaimReceipt, error) {
	var receipt domain.ClaimReceipt
	err := s.with(ctx, playerID, func(sess *session) error {
		var err error
		receipt, err = s.claim(ctx, sess, source, itemID)
		return err
	})
	return receipt, err
}

// ClaimAll claims every claimable item of source. It stops at the first
// failure and returns the receipts paid so far.
func (s *ProgressionService) ClaimAll(ctx context.Context, playerID string, source domain.ClaimSource) ([]domain.ClaimReceipt, error) {
	receipts := []domain.ClaimReceipt{}
	err := s.with(ctx, playerID, func(sess *session) error {
		ids, err := sess.claimable(ctx, source)
		if err != nil {
			return err
		}
		for _, id := range ids {
			receipt, err := s.claim(ctx, sess, source, id)
			if err != nil {
				return err
			}
			receipts = append(receipts, receipt)
		}
		return nil
	})
	return receipts, err
}

func (sess *session) claimable(ctx context.Context, source domain.ClaimSource) ([]string, error) {
	switch source {
	case domain.ClaimSourceDaily:
		sess.daily.CheckReset(ctx)
		return sess.daily.Claimable(), nil
	case domain.ClaimSourceWeekly:
		sess.weekly.CheckReset(ctx)
		return sess.weekly.Claimable(), nil
	case domain.ClaimSourceAchievement:
		return sess.achievements.Claimable(), nil
	case domain.ClaimSourceLogin:
		if !sess.login.CanClaimToday() {
			return nil, nil
		}
		return []string{progression.DayItemID(sess.login.CurrentDay())}, nil
	default:
		return nil, errors.ErrInvalidInput(fmt.Sprintf("unknown claim source %q", source))
	}
}

func (s *ProgressionService) claim(ctx context.Context, sess *session, source domain.ClaimSource, itemID string) (domain.ClaimReceipt, error) {
	pc, err := sess.pending(ctx, source, itemID)
	if err != nil {
		return domain.ClaimReceipt{}, err
	}

	if err := client.GrantWithRetry(ctx, s.rewards, sess.playerID, pc.reward, s.retry, s.logger); err != nil {
		s.logger.Error("reward grant failed",
			"player_id", sess.playerID,
			"source", source,
			"item_id", pc.itemID,
			"error", err,
		)
		return domain.ClaimReceipt{}, errors.ErrRewardGrantFailed(pc.itemID, err)
	}

	if err := pc.commit(ctx); err != nil {
		s.logger.Error("reward granted but claim could not be marked",
			"player_id", sess.playerID,
			"source", source,
			"item_id", pc.itemID,
			"error", err,
		)
		return domain.ClaimReceipt{}, err
	}

	receipt := ledger.NewReceipt(sess.playerID, source, pc.itemID, pc.reward, s.clock.Now())
	if err := s.ledger.Record(ctx, receipt); err != nil {
		s.logger.Warn("failed to record claim receipt", "receipt_id", receipt.ID, "error", err)
	}

	if s.events != nil {
		s.events.Publish(ctx, events.Event{
			Type:       events.RewardClaimed,
			PlayerID:   sess.playerID,
			OccurredAt: receipt.ClaimedAt,
			Payload:    receipt,
		})
	}
	return receipt, nil
}
