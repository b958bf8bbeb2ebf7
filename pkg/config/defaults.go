package config

import "github.com/AccelByte/extend-runner-progression/pkg/domain"

// Daily mission stat types.
const (
	StatDistance = "distance"
	StatCoins    = "coins"
	StatGrapple  = "grapple"
	StatNearMiss = "near_miss"
	StatNoDamage = "no_damage"
	StatCombo    = "combo"
	StatPowerup  = "powerup"
	StatScore    = "score"
	StatJump     = "jump"
)

// Weekly mission progress keys.
const (
	KeyTotalDistance          = "totalDistance"
	KeyHighScoreBeats         = "highScoreBeats"
	KeyDailyMissionsCompleted = "dailyMissionsCompleted"
	KeyCoinsCollected         = "coinsCollected"
	KeyPowerupsCollected      = "powerupsCollected"
	KeyNearMisses             = "nearMisses"
	KeyPerfectRuns            = "perfectRuns"
	KeyGrapplesUsed           = "grapplesUsed"
)

// Achievement metrics. Lifetime totals are fed as running sums, the rest
// as per-run or per-session peaks.
const (
	MetricTotalDistance    = "total_distance"
	MetricTotalCoins       = "total_coins"
	MetricTotalRevives     = "total_revives"
	MetricTotalGrapples    = "total_grapples"
	MetricNoDamageDistance = "no_damage_distance"
	MetricMaxCombo         = "max_combo"
	MetricTotalNearMisses  = "total_near_misses"
	MetricBestScore        = "best_score"
	MetricEnergyMode       = "energy_mode_activations"
	MetricTotalPowerups    = "total_powerups"
	MetricLoginStreak      = "login_streak"
)

// Unlock kinds used in Reward.Unlocks.
const (
	UnlockSkin      = "skin"
	UnlockTrail     = "trail"
	UnlockCharacter = "character"
	UnlockSpecial   = "special"
)

// DefaultCatalog returns the built-in progression catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		DailyMissions:     defaultDailyMissions(),
		DailyActiveCount:  DefaultActiveMissions,
		WeeklyMissions:    defaultWeeklyMissions(),
		WeeklyActiveCount: DefaultActiveMissions,
		Achievements:      defaultAchievements(),
		LoginCalendar:     defaultLoginCalendar(),
	}
}

func coins(n int) domain.Reward {
	return domain.Reward{Coins: n}
}

func unlock(kind, value string) map[string]string {
	return map[string]string{kind: value}
}

func defaultDailyMissions() []domain.MissionTemplate {
	daily := func(id, stat string, target, reward int, description string) domain.MissionTemplate {
		return domain.MissionTemplate{
			ID:          id,
			Description: description,
			Stat:        stat,
			Mode:        domain.ProgressModeBest,
			Target:      target,
			Reward:      coins(reward),
		}
	}

	return []domain.MissionTemplate{
		daily("distance_5k", StatDistance, 5000, 500, "Run 5,000m in a single run"),
		daily("distance_3k", StatDistance, 3000, 300, "Run 3,000m in a single run"),
		daily("collect_100", StatCoins, 100, 300, "Collect 100 coins in a single run"),
		daily("collect_50", StatCoins, 50, 200, "Collect 50 coins in a single run"),
		daily("grapple_10", StatGrapple, 10, 250, "Use grapple hook 10 times"),
		daily("perfect_10", StatNearMiss, 10, 350, "Get 10 near-miss bonuses"),
		daily("no_damage_2k", StatNoDamage, 2000, 400, "Run 2,000m without taking damage"),
		daily("combo_20", StatCombo, 20, 300, "Reach a 20x combo"),
		daily("powerup_5", StatPowerup, 5, 200, "Collect 5 power-ups"),
		daily("score_50k", StatScore, 50000, 600, "Score 50,000 points"),
		daily("jump_50", StatJump, 50, 150, "Jump 50 times"),
	}
}

func defaultWeeklyMissions() []domain.MissionTemplate {
	return []domain.MissionTemplate{
		{
			ID:          "weekly_distance",
			Name:        "Marathon Runner",
			Description: "Run 50,000m total this week",
			Stat:        KeyTotalDistance,
			Mode:        domain.ProgressModeCumulative,
			Target:      50000,
			Reward:      domain.Reward{Coins: 2000, Gems: 50},
			Difficulty:  domain.DifficultyMedium,
		},
		{
			ID:          "weekly_highscore",
			Name:        "Record Breaker",
			Description: "Beat your high score 3 times",
			Stat:        KeyHighScoreBeats,
			Mode:        domain.ProgressModeCount,
			Target:      3,
			Reward:      domain.Reward{Coins: 1500, Gems: 30, Unlocks: unlock(UnlockSpecial, "exclusive_skin")},
			Difficulty:  domain.DifficultyMedium,
		},
		{
			ID:          "weekly_daily_missions",
			Name:        "Dedicated Runner",
			Description: "Complete 15 daily missions",
			Stat:        KeyDailyMissionsCompleted,
			Mode:        domain.ProgressModeCount,
			Target:      15,
			Reward:      domain.Reward{Coins: 3000, Gems: 100},
			Difficulty:  domain.DifficultyHard,
		},
		{
			ID:          "weekly_coins",
			Name:        "Treasure Hunter",
			Description: "Collect 10,000 coins this week",
			Stat:        KeyCoinsCollected,
			Mode:        domain.ProgressModeCumulative,
			Target:      10000,
			Reward:      domain.Reward{Coins: 1000, Gems: 40},
			Difficulty:  domain.DifficultyMedium,
		},
		{
			ID:          "weekly_powerups",
			Name:        "Power Player",
			Description: "Collect 50 power-ups",
			Stat:        KeyPowerupsCollected,
			Mode:        domain.ProgressModeCumulative,
			Target:      50,
			Reward:      domain.Reward{Coins: 1500, Gems: 35},
			Difficulty:  domain.DifficultyMedium,
		},
		{
			ID:          "weekly_near_misses",
			Name:        "Risk Taker",
			Description: "Get 100 near-miss bonuses",
			Stat:        KeyNearMisses,
			Mode:        domain.ProgressModeCumulative,
			Target:      100,
			Reward:      domain.Reward{Coins: 2500, Gems: 60},
			Difficulty:  domain.DifficultyHard,
		},
		{
			ID:          "weekly_perfect_runs",
			Name:        "Untouchable",
			Description: "Complete 5 runs without taking damage",
			Stat:        KeyPerfectRuns,
			Mode:        domain.ProgressModeCount,
			Target:      5,
			Reward:      domain.Reward{Coins: 3500, Gems: 80, Unlocks: unlock(UnlockSpecial, "legendary_trail")},
			Difficulty:  domain.DifficultyHard,
		},
		{
			ID:          "weekly_grapple",
			Name:        "Hook Master",
			Description: "Use grappling hook 200 times",
			Stat:        KeyGrapplesUsed,
			Mode:        domain.ProgressModeCumulative,
			Target:      200,
			Reward:      domain.Reward{Coins: 1800, Gems: 45},
			Difficulty:  domain.DifficultyMedium,
		},
	}
}

func defaultAchievements() []domain.Achievement {
	a := func(id string, category domain.AchievementCategory, metric, name, description, icon string,
		target int, reward domain.Reward, tier domain.Tier) domain.Achievement {
		return domain.Achievement{
			ID:          id,
			Category:    category,
			Metric:      metric,
			Name:        name,
			Description: description,
			Icon:        icon,
			Target:      target,
			Reward:      reward,
			Tier:        tier,
		}
	}

	return []domain.Achievement{
		// Distance
		a("distance_10k", domain.CategoryDistance, MetricTotalDistance, "First Marathon", "Run 10,000m total", "🏃",
			10000, coins(1000), domain.TierBronze),
		a("distance_50k", domain.CategoryDistance, MetricTotalDistance, "Chrome Runner", "Run 50,000m total", "⚡",
			50000, domain.Reward{Coins: 3000, Unlocks: unlock(UnlockSkin, "chrome")}, domain.TierSilver),
		a("distance_100k", domain.CategoryDistance, MetricTotalDistance, "Cyber Legend", "Run 100,000m total", "👑",
			100000, domain.Reward{Coins: 5000, Gems: 500, Unlocks: unlock(UnlockCharacter, "legendary")}, domain.TierGold),
		a("distance_500k", domain.CategoryDistance, MetricTotalDistance, "Infinite Runner", "Run 500,000m total", "🌟",
			500000, domain.Reward{Coins: 10000, Gems: 1000, Unlocks: unlock(UnlockTrail, "golden")}, domain.TierPlatinum),

		// Coins
		a("coins_1k", domain.CategoryCoins, MetricTotalCoins, "Coin Collector", "Collect 1,000 coins total", "🪙",
			1000, coins(500), domain.TierBronze),
		a("coins_10k", domain.CategoryCoins, MetricTotalCoins, "Treasure Hunter", "Collect 10,000 coins total", "💰",
			10000, domain.Reward{Coins: 2000, Unlocks: unlock(UnlockTrail, "rainbow")}, domain.TierSilver),
		a("coins_100k", domain.CategoryCoins, MetricTotalCoins, "Money Magnet", "Collect 100,000 coins total", "💎",
			100000, domain.Reward{Coins: 5000, Gems: 500, Unlocks: unlock(UnlockCharacter, "coin_magnet_pro")}, domain.TierGold),

		// Survival
		a("revive_10", domain.CategorySurvival, MetricTotalRevives, "Never Give Up", "Use 10 revives", "♥️",
			10, domain.Reward{Coins: 1000, Tokens: 3}, domain.TierBronze),
		a("revive_50", domain.CategorySurvival, MetricTotalRevives, "Resilient", "Use 50 revives", "💪",
			50, domain.Reward{Coins: 3000, Gems: 200}, domain.TierSilver),
		a("revive_100", domain.CategorySurvival, MetricTotalRevives, "Phoenix", "Use 100 revives", "🔥",
			100, domain.Reward{Coins: 5000, Gems: 500, Unlocks: unlock(UnlockCharacter, "phoenix")}, domain.TierGold),

		// Skills
		a("grapple_100", domain.CategorySkills, MetricTotalGrapples, "Grapple Novice", "Use grappling hook 100 times", "🎯",
			100, coins(1500), domain.TierBronze),
		a("grapple_1000", domain.CategorySkills, MetricTotalGrapples, "Grapple Master", "Use grappling hook 1,000 times", "🪝",
			1000, domain.Reward{Coins: 5000, Gems: 300}, domain.TierGold),

		// Perfect play
		a("nodamage_5k", domain.CategoryPerfect, MetricNoDamageDistance, "Untouchable", "Run 5,000m without taking damage", "🛡️",
			5000, domain.Reward{Coins: 3000, Gems: 200}, domain.TierSilver),
		a("nodamage_10k", domain.CategoryPerfect, MetricNoDamageDistance, "Flawless Victory", "Run 10,000m without taking damage", "💫",
			10000, domain.Reward{Coins: 10000, Gems: 1000, Unlocks: unlock(UnlockCharacter, "untouchable")}, domain.TierPlatinum),
		a("combo_50", domain.CategoryPerfect, MetricMaxCombo, "Combo King", "Reach a 50x combo", "🔥",
			50, domain.Reward{Coins: 5000, Gems: 500}, domain.TierGold),
		a("nearmiss_100", domain.CategoryPerfect, MetricTotalNearMisses, "Close Shave", "Get 100 near-miss bonuses", "⚡",
			100, domain.Reward{Coins: 3000, Gems: 200}, domain.TierSilver),

		// Score
		a("score_100k", domain.CategoryScore, MetricBestScore, "High Roller", "Score 100,000 points in one run", "🎯",
			100000, coins(2000), domain.TierSilver),
		a("score_500k", domain.CategoryScore, MetricBestScore, "Score Master", "Score 500,000 points in one run", "🏆",
			500000, domain.Reward{Coins: 5000, Gems: 500}, domain.TierGold),
		a("score_1m", domain.CategoryScore, MetricBestScore, "Cyber Champion", "Score 1,000,000 points in one run", "👑",
			1000000, domain.Reward{Coins: 10000, Gems: 1000, Unlocks: unlock(UnlockCharacter, "champion")}, domain.TierPlatinum),

		// Special
		a("energy_mode_10", domain.CategorySpecial, MetricEnergyMode, "Energy Addict", "Activate Energy Mode 10 times", "⚡",
			10, domain.Reward{Coins: 2000, Gems: 100}, domain.TierSilver),
		a("powerup_100", domain.CategorySpecial, MetricTotalPowerups, "Power User", "Collect 100 power-ups", "💊",
			100, coins(2000), domain.TierSilver),
		a("daily_streak_7", domain.CategorySpecial, MetricLoginStreak, "Dedicated", "Login 7 days in a row", "🔥",
			7, domain.Reward{Coins: 3000, Gems: 300}, domain.TierGold),
		a("daily_streak_30", domain.CategorySpecial, MetricLoginStreak, "Legendary Streak", "Login 30 days in a row", "🌟",
			30, domain.Reward{Coins: 10000, Gems: 1000, Unlocks: unlock(UnlockCharacter, "dedicated")}, domain.TierPlatinum),
	}
}

func defaultLoginCalendar() []domain.CalendarEntry {
	return []domain.CalendarEntry{
		{Day: 1, Reward: coins(500), Description: "500 Coins"},
		{Day: 2, Reward: domain.Reward{Tokens: 1}, Description: "1 Revive Token"},
		{Day: 3, Reward: coins(1000), Description: "1,000 Coins"},
		{Day: 4, Reward: domain.Reward{Gems: 50}, Description: "50 Gems"},
		{Day: 5, Reward: domain.Reward{Unlocks: unlock(UnlockTrail, "rainbow")}, Description: "Rainbow Trail"},
		{Day: 6, Reward: coins(2000), Description: "2,000 Coins"},
		{Day: 7, Reward: domain.Reward{Gems: 100, Unlocks: unlock(UnlockCharacter, "speed_demon")}, Description: "Speed Demon Character + 100 Gems!"},
	}
}
