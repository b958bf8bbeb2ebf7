package domain

import (
	"testing"
	"time"
)

func TestProgressMode_IsValid(t *testing.T) {
	tests := []struct {
		name string
		mode ProgressMode
		want bool
	}{
		{name: "best is valid", mode: ProgressModeBest, want: true},
		{name: "cumulative is valid", mode: ProgressModeCumulative, want: true},
		{name: "count is valid", mode: ProgressModeCount, want: true},
		{name: "invalid mode", mode: ProgressMode("additive"), want: false},
		{name: "empty mode", mode: ProgressMode(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.IsValid(); got != tt.want {
				t.Errorf("ProgressMode.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressMode_Apply(t *testing.T) {
	tests := []struct {
		name    string
		mode    ProgressMode
		current int
		value   int
		want    int
	}{
		{name: "best raises high-water mark", mode: ProgressModeBest, current: 100, value: 250, want: 250},
		{name: "best ignores lower value", mode: ProgressModeBest, current: 250, value: 100, want: 250},
		{name: "cumulative adds value", mode: ProgressModeCumulative, current: 100, value: 250, want: 350},
		{name: "count adds one regardless of value", mode: ProgressModeCount, current: 2, value: 40, want: 3},
		{name: "count ignores zero", mode: ProgressModeCount, current: 2, value: 0, want: 2},
		{name: "count ignores negative", mode: ProgressModeCount, current: 2, value: -5, want: 2},
		{name: "cumulative ignores negative", mode: ProgressModeCumulative, current: 100, value: -50, want: 100},
		{name: "best ignores zero", mode: ProgressModeBest, current: 0, value: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Apply(tt.current, tt.value); got != tt.want {
				t.Errorf("ProgressMode.Apply(%d, %d) = %d, want %d", tt.current, tt.value, got, tt.want)
			}
		})
	}
}

func TestMissionProgress_CanClaim(t *testing.T) {
	tests := []struct {
		name     string
		progress MissionProgress
		want     bool
	}{
		{name: "completed and unclaimed", progress: MissionProgress{Progress: 10, Completed: true}, want: true},
		{name: "completed and claimed", progress: MissionProgress{Progress: 10, Completed: true, Claimed: true}, want: false},
		{name: "not completed", progress: MissionProgress{Progress: 5}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.progress.CanClaim(); got != tt.want {
				t.Errorf("MissionProgress.CanClaim() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name     string
		progress int
		target   int
		want     float64
	}{
		{name: "half way", progress: 2500, target: 5000, want: 50},
		{name: "capped at 100", progress: 5200, target: 5000, want: 100},
		{name: "zero progress", progress: 0, target: 5000, want: 0},
		{name: "zero target counts as done", progress: 0, target: 0, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressPercent(tt.progress, tt.target); got != tt.want {
				t.Errorf("ProgressPercent(%d, %d) = %v, want %v", tt.progress, tt.target, got, tt.want)
			}
		})
	}
}

func TestReward_Add(t *testing.T) {
	a := Reward{Coins: 500, Unlocks: map[string]string{"skin": "chrome"}}
	b := Reward{Coins: 100, Gems: 50, Tokens: 1, Unlocks: map[string]string{"trail": "rainbow"}}

	sum := a.Add(b)

	if sum.Coins != 600 || sum.Gems != 50 || sum.Tokens != 1 {
		t.Errorf("Reward.Add() = %+v", sum)
	}
	if sum.Unlocks["skin"] != "chrome" || sum.Unlocks["trail"] != "rainbow" {
		t.Errorf("Reward.Add() unlocks = %v", sum.Unlocks)
	}

	// Operands are not mutated.
	if len(a.Unlocks) != 1 {
		t.Errorf("Reward.Add() mutated receiver unlocks: %v", a.Unlocks)
	}
}

func TestReward_IsZero(t *testing.T) {
	if !(Reward{}).IsZero() {
		t.Error("empty reward should be zero")
	}
	if (Reward{Tokens: 1}).IsZero() {
		t.Error("token reward should not be zero")
	}
	if (Reward{Unlocks: map[string]string{"character": "phoenix"}}).IsZero() {
		t.Error("unlock reward should not be zero")
	}
}

func TestAchievementCategory_IsValid(t *testing.T) {
	for _, c := range []AchievementCategory{
		CategoryDistance, CategoryCoins, CategorySurvival, CategorySkills,
		CategoryPerfect, CategoryScore, CategorySpecial,
	} {
		if !c.IsValid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if AchievementCategory("social").IsValid() {
		t.Error("unknown category should be invalid")
	}
}

func TestTier_IsValid(t *testing.T) {
	for _, tier := range []Tier{TierBronze, TierSilver, TierGold, TierPlatinum} {
		if !tier.IsValid() {
			t.Errorf("tier %q should be valid", tier)
		}
	}
	if Tier("diamond").IsValid() {
		t.Error("unknown tier should be invalid")
	}
}

func TestDifficulty_IsValid(t *testing.T) {
	if !Difficulty("").IsValid() {
		t.Error("empty difficulty should be valid")
	}
	if Difficulty("insane").IsValid() {
		t.Error("unknown difficulty should be invalid")
	}
}

func TestClaimSource_IsValid(t *testing.T) {
	for _, s := range []ClaimSource{ClaimSourceDaily, ClaimSourceWeekly, ClaimSourceLogin, ClaimSourceAchievement} {
		if !s.IsValid() {
			t.Errorf("claim source %q should be valid", s)
		}
	}
	if ClaimSource("shop").IsValid() {
		t.Error("unknown claim source should be invalid")
	}
}

func TestRunStats_IsPerfect(t *testing.T) {
	if !(RunStats{Health: 100}).IsPerfect() {
		t.Error("full health run should be perfect")
	}
	if (RunStats{Health: 99}).IsPerfect() {
		t.Error("damaged run should not be perfect")
	}
}

func TestObstacle_Clone(t *testing.T) {
	now := time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)
	orig := Obstacle{
		ID:               "obs-1",
		Type:             "barrier",
		Position:         At(3, 70),
		Active:           true,
		SpawnValidatedAt: &now,
	}

	clone := orig.Clone()
	clone.Position.Z = 99
	*clone.Position.X = -3
	*clone.SpawnValidatedAt = now.Add(time.Hour)

	if orig.Position.Z != 70 {
		t.Errorf("Clone() shares position with original, Z = %v", orig.Position.Z)
	}
	if x, _ := orig.Position.Lateral(); x != 3 {
		t.Errorf("Clone() shares lane with original, X = %v", x)
	}
	if !orig.SpawnValidatedAt.Equal(now) {
		t.Errorf("Clone() shares validation time with original")
	}

	noLane := Obstacle{Position: &Position{Z: 70}}
	if _, ok := noLane.Clone().Position.Lateral(); ok {
		t.Error("Clone() should keep an absent lane absent")
	}

	var bare Obstacle
	if bare.Clone().Position != nil {
		t.Error("Clone() of obstacle without position should keep nil position")
	}
}
