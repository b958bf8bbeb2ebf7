package domain

import "time"

// Position is a point on the track. X is the lateral (lane) coordinate and
// may be absent; Z the forward-progress coordinate, increasing with track
// distance.
type Position struct {
	X *float64 `json:"x,omitempty"`
	Z float64  `json:"z"`
}

// At returns a position with both coordinates set.
func At(x, z float64) *Position {
	return &Position{X: &x, Z: z}
}

// Lateral returns X and whether it was supplied.
func (p Position) Lateral() (float64, bool) {
	if p.X == nil {
		return 0, false
	}
	return *p.X, true
}

// Clone returns a copy of p that shares no memory with it.
func (p Position) Clone() Position {
	if p.X != nil {
		x := *p.X
		p.X = &x
	}
	return p
}

// Obstacle is a candidate or placed obstacle.
// A nil Position means the spawner left placement entirely to the validator.
type Obstacle struct {
	ID       string    `json:"id,omitempty"`
	Type     string    `json:"type,omitempty"`
	Position *Position `json:"position,omitempty"`
	Active   bool      `json:"active"`

	IsSafeSpawn      bool       `json:"is_safe_spawn,omitempty"`
	SpawnValidatedAt *time.Time `json:"spawn_validated_at,omitempty"`
}

// Clone returns a deep copy of o.
func (o Obstacle) Clone() Obstacle {
	c := o
	if o.Position != nil {
		p := o.Position.Clone()
		c.Position = &p
	}
	if o.SpawnValidatedAt != nil {
		t := *o.SpawnValidatedAt
		c.SpawnValidatedAt = &t
	}
	return c
}

// SpawnHistoryEntry is one recorded safe spawn.
type SpawnHistoryEntry struct {
	Position  Position  `json:"position"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// SpawnAnalytics summarizes recent spawn pressure.
type SpawnAnalytics struct {
	RecentSpawns       int                `json:"recent_spawns"`
	AvgSpawnsPerSecond float64            `json:"avg_spawns_per_second"`
	LastSpawn          *SpawnHistoryEntry `json:"last_spawn,omitempty"`
}
