// Package service orchestrates the progression managers of many players.
//
// Each player gets a session holding one instance of every manager, all
// sharing a store namespace (player:<id>:). Calls on a session are serialized
// with its mutex; sessions of different players run concurrently.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/AccelByte/extend-runner-progression/pkg/cache"
	"github.com/AccelByte/extend-runner-progression/pkg/client"
	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
	"github.com/AccelByte/extend-runner-progression/pkg/events"
	"github.com/AccelByte/extend-runner-progression/pkg/ledger"
	"github.com/AccelByte/extend-runner-progression/pkg/progression"
	"github.com/AccelByte/extend-runner-progression/pkg/store"
)

// DefaultRetryPolicy is used when Options.Retry is zero.
var DefaultRetryPolicy = client.RetryPolicy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond}

// DefaultSessionIdleTTL is used when Options.SessionIdleTTL is zero.
const DefaultSessionIdleTTL = 30 * time.Minute

// Options configures a ProgressionService. Zero fields get in-memory defaults.
type Options struct {
	Store   store.Store
	Catalog cache.CatalogCache
	Ledger  ledger.Ledger
	Rewards client.RewardClient
	Events  events.Publisher
	Clock   common.Clock
	Logger  *slog.Logger
	Retry   client.RetryPolicy

	// SessionIdleTTL is how long an unused session stays loaded.
	SessionIdleTTL time.Duration

	// NewRand returns the mission-selection source for a player.
	NewRand func(playerID string) *rand.Rand
}

// ProgressionService owns the per-player sessions.
type ProgressionService struct {
	store   store.Store
	catalog cache.CatalogCache
	ledger  ledger.Ledger
	rewards client.RewardClient
	events  events.Publisher
	clock   common.Clock
	logger  *slog.Logger
	retry   client.RetryPolicy
	idleTTL time.Duration
	newRand func(playerID string) *rand.Rand

	mu       sync.Mutex
	sessions map[string]*session
}

// NewProgressionService creates a service from opts.
func NewProgressionService(opts Options) *ProgressionService {
	s := &ProgressionService{
		store:    opts.Store,
		catalog:  opts.Catalog,
		ledger:   opts.Ledger,
		rewards:  opts.Rewards,
		events:   opts.Events,
		clock:    opts.Clock,
		logger:   opts.Logger,
		retry:    opts.Retry,
		idleTTL:  opts.SessionIdleTTL,
		newRand:  opts.NewRand,
		sessions: make(map[string]*session),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.catalog == nil {
		s.catalog = cache.NewInMemoryCatalogCache(config.DefaultCatalog(), "", s.logger)
	}
	if s.ledger == nil {
		s.ledger = ledger.NewMemoryLedger()
	}
	if s.rewards == nil {
		s.rewards = client.NewDevMockRewardClient()
	}
	if s.clock == nil {
		s.clock = common.SystemClock()
	}
	if s.retry.MaxAttempts == 0 {
		s.retry = DefaultRetryPolicy
	}
	if s.idleTTL <= 0 {
		s.idleTTL = DefaultSessionIdleTTL
	}
	if s.newRand == nil {
		s.newRand = func(string) *rand.Rand {
			seed := uint64(time.Now().UnixNano())
			return rand.New(rand.NewPCG(seed, seed>>1|1))
		}
	}
	return s
}

type session struct {
	mu       sync.Mutex
	playerID string
	deps     progression.Deps

	// lastUsed is guarded by ProgressionService.mu.
	lastUsed time.Time
	// evicted is set under mu once the session left the map. Holders of an
	// evicted session must resolve the player again.
	evicted bool

	daily        *progression.DailyMissions
	weekly       *progression.WeeklyMissions
	login        *progression.LoginRewards
	achievements *progression.Achievements
	lifetime     *progression.LifetimeStats
}

// load (re)builds every manager from the store.
func (sess *session) load(ctx context.Context) {
	sess.daily = progression.NewDailyMissions(ctx, sess.deps)
	sess.weekly = progression.NewWeeklyMissions(ctx, sess.deps)
	sess.login = progression.NewLoginRewards(ctx, sess.deps)
	sess.achievements = progression.NewAchievements(ctx, sess.deps)
	sess.lifetime = progression.NewLifetimeStats(ctx, sess.deps)
}

// session returns the player's session, loading it from the store on first use.
func (s *ProgressionService) session(ctx context.Context, playerID string) (*session, error) {
	if playerID == "" {
		return nil, errors.ErrInvalidInput("player id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[playerID]; ok {
		sess.lastUsed = s.clock.Now()
		return sess, nil
	}

	sess := &session{
		playerID: playerID,
		lastUsed: s.clock.Now(),
		deps: progression.Deps{
			Store:    store.ForPlayer(s.store, playerID),
			Catalog:  s.catalog,
			Clock:    s.clock,
			Rand:     s.newRand(playerID),
			Logger:   s.logger,
			Events:   s.events,
			PlayerID: playerID,
		},
	}
	sess.load(ctx)
	s.sessions[playerID] = sess
	s.logger.Debug("player session opened", "player_id", playerID)
	return sess, nil
}

// with runs fn with the player's session locked.
func (s *ProgressionService) with(ctx context.Context, playerID string, fn func(sess *session) error) error {
	for {
		sess, err := s.session(ctx, playerID)
		if err != nil {
			return err
		}
		sess.mu.Lock()
		if sess.evicted {
			sess.mu.Unlock()
			continue
		}
		defer sess.mu.Unlock()
		return fn(sess)
	}
}

// Forget drops the in-memory session of a player, waiting for calls in
// progress on it. State is reloaded from the store on next access.
func (s *ProgressionService) Forget(playerID string) {
	s.mu.Lock()
	sess, ok := s.sessions[playerID]
	s.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.evicted = true
	s.mu.Lock()
	if s.sessions[playerID] == sess {
		delete(s.sessions, playerID)
	}
	s.mu.Unlock()
}

// EvictIdle drops the sessions unused for longer than the idle TTL and
// returns how many were dropped. Sessions busy with a call are kept.
func (s *ProgressionService) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) < s.idleTTL {
			continue
		}
		if !sess.mu.TryLock() {
			continue
		}
		sess.evicted = true
		delete(s.sessions, id)
		sess.mu.Unlock()
		evicted++
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (s *ProgressionService) RunEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(); n > 0 {
				s.logger.Debug("idle player sessions evicted", "count", n, "remaining", s.Sessions())
			}
		}
	}
}

// Sessions returns the number of loaded player sessions.
func (s *ProgressionService) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Login evaluates the player's login streak for today. The resulting streak
// feeds the login-streak achievements.
func (s *ProgressionService) Login(ctx context.Context, playerID string) (LoginResult, error) {
	var res LoginResult
	err := s.with(ctx, playerID, func(sess *session) error {
		res.Transition = sess.login.CheckLoginStreak(ctx)
		res.CurrentDay = sess.login.CurrentDay()
		res.Streak = sess.login.Streak()
		res.CanClaimToday = sess.login.CanClaimToday()
		res.Unlocked = sess.achievements.TrackMetric(ctx, config.MetricLoginStreak, res.Streak)
		return nil
	})
	return res, err
}

// RecordRun folds a finished run into every manager.
func (s *ProgressionService) RecordRun(ctx context.Context, playerID string, run domain.RunStats) (Progress, error) {
	var p Progress
	err := s.with(ctx, playerID, func(sess *session) error {
		p = sess.recordRun(ctx, run)
		return nil
	})
	return p, err
}

// UpdateDaily reports a single-run stat value to the daily missions.
func (s *ProgressionService) UpdateDaily(ctx context.Context, playerID, stat string, value int) (Progress, error) {
	var p Progress
	err := s.with(ctx, playerID, func(sess *session) error {
		p = sess.updateDaily(ctx, stat, value)
		return nil
	})
	return p, err
}

// UpdateWeekly adds value to the weekly missions tracking key.
func (s *ProgressionService) UpdateWeekly(ctx context.Context, playerID, key string, value int) (Progress, error) {
	var p Progress
	err := s.with(ctx, playerID, func(sess *session) error {
		p.WeeklyCompleted = sess.weekly.UpdateProgress(ctx, key, value)
		return nil
	})
	return p, err
}

// TrackAction counts an in-run action towards the weekly missions.
func (s *ProgressionService) TrackAction(ctx context.Context, playerID, action string, count int) (Progress, error) {
	var p Progress
	err := s.with(ctx, playerID, func(sess *session) error {
		p.WeeklyCompleted = sess.weekly.TrackAction(ctx, action, count)
		return nil
	})
	return p, err
}

// UpdateAchievement reports a value for every achievement of category.
func (s *ProgressionService) UpdateAchievement(ctx context.Context, playerID string, category domain.AchievementCategory, value int) (Progress, error) {
	if !category.IsValid() {
		return Progress{}, errors.ErrInvalidInput(fmt.Sprintf("unknown achievement category %q", category))
	}
	var p Progress
	err := s.with(ctx, playerID, func(sess *session) error {
		p.Unlocked = sess.achievements.UpdateProgress(ctx, category, value)
		return nil
	})
	return p, err
}

// TrackMetric reports a value for every achievement measuring metric.
func (s *ProgressionService) TrackMetric(ctx context.Context, playerID, metric string, value int) (Progress, error) {
	var p Progress
	err := s.with(ctx, playerID, func(sess *session) error {
		p.Unlocked = sess.achievements.TrackMetric(ctx, metric, value)
		return nil
	})
	return p, err
}

func (sess *session) updateDaily(ctx context.Context, stat string, value int) Progress {
	var p Progress
	p.DailyCompleted = sess.daily.UpdateProgress(ctx, stat, value)
	for range p.DailyCompleted {
		p.WeeklyCompleted = append(p.WeeklyCompleted,
			sess.weekly.TrackAction(ctx, progression.ActionDailyMissionCompleted, 1)...)
	}
	return p
}

func (sess *session) recordRun(ctx context.Context, run domain.RunStats) Progress {
	var p Progress
	for _, sv := range dailyStats(run) {
		if sv.value <= 0 {
			continue
		}
		p.merge(sess.updateDaily(ctx, sv.stat, sv.value))
	}

	p.WeeklyCompleted = append(p.WeeklyCompleted, sess.weekly.TrackGameEnd(ctx, run)...)

	totals := sess.lifetime.AddAll(ctx, lifetimeDeltas(run))
	for _, metric := range lifetimeMetrics {
		if total, ok := totals[metric]; ok {
			p.Unlocked = append(p.Unlocked, sess.achievements.TrackMetric(ctx, metric, total)...)
		}
	}
	for _, sv := range runPeaks(run) {
		if sv.value > 0 {
			p.Unlocked = append(p.Unlocked, sess.achievements.TrackMetric(ctx, sv.stat, sv.value)...)
		}
	}
	return p
}

type statValue struct {
	stat  string
	value int
}

func dailyStats(run domain.RunStats) []statValue {
	return []statValue{
		{config.StatDistance, run.Distance},
		{config.StatCoins, run.Coins},
		{config.StatScore, run.Score},
		{config.StatCombo, run.MaxCombo},
		{config.StatGrapple, run.Grapples},
		{config.StatPowerup, run.Powerups},
		{config.StatNearMiss, run.NearMisses},
		{config.StatJump, run.Jumps},
		{config.StatNoDamage, run.NoDamageDistance},
	}
}

// lifetimeMetrics fixes the order in which lifetime totals are reported.
var lifetimeMetrics = []string{
	config.MetricTotalDistance,
	config.MetricTotalCoins,
	config.MetricTotalRevives,
	config.MetricTotalGrapples,
	config.MetricTotalNearMisses,
	config.MetricTotalPowerups,
	config.MetricEnergyMode,
}

func lifetimeDeltas(run domain.RunStats) map[string]int {
	return map[string]int{
		config.MetricTotalDistance:   run.Distance,
		config.MetricTotalCoins:      run.Coins,
		config.MetricTotalRevives:    run.Revives,
		config.MetricTotalGrapples:   run.Grapples,
		config.MetricTotalNearMisses: run.NearMisses,
		config.MetricTotalPowerups:   run.Powerups,
		config.MetricEnergyMode:      run.EnergyModeActivations,
	}
}

func runPeaks(run domain.RunStats) []statValue {
	return []statValue{
		{config.MetricBestScore, run.Score},
		{config.MetricMaxCombo, run.MaxCombo},
		{config.MetricNoDamageDistance, run.NoDamageDistance},
	}
}

// Reset clears one area of a player's progression, or all of it.
func (s *ProgressionService) Reset(ctx context.Context, playerID string, scope ResetScope) error {
	if !scope.IsValid() {
		return errors.ErrInvalidInput(fmt.Sprintf("unknown reset scope %q", scope))
	}
	return s.with(ctx, playerID, func(sess *session) error {
		all := scope == ResetAll
		if all || scope == ResetDaily {
			sess.daily.Reset(ctx)
		}
		if all || scope == ResetWeekly {
			sess.weekly.ForceReset(ctx)
		}
		if all || scope == ResetLogin {
			sess.login.Reset(ctx)
		}
		if all || scope == ResetAchievements {
			sess.achievements.Reset(ctx)
		}
		if all || scope == ResetLifetime {
			sess.lifetime.Reset(ctx)
		}
		s.logger.Info("player progression reset", "player_id", playerID, "scope", scope)
		return nil
	})
}
