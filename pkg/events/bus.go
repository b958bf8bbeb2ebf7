package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Type names a progression notification.
type Type string

const (
	DailyMissionCompleted  Type = "daily_mission_complete"
	WeeklyMissionCompleted Type = "weekly_mission_complete"
	AchievementUnlocked    Type = "achievement_unlocked"
	LoginStreakChanged     Type = "login_streak_changed"
	RewardClaimed          Type = "reward_claimed"
)

// Event is one notification. Payload is a domain value (a MissionView,
// an Achievement, a ClaimReceipt, ...) and is JSON-serializable.
type Event struct {
	Type       Type      `json:"type"`
	PlayerID   string    `json:"player_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher accepts events for delivery.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Handler receives published events.
type Handler func(ctx context.Context, event Event)

// Bus is an in-process, synchronous fan-out publisher.
// Handlers run on the publishing goroutine in subscription order and must not block.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]Handler
	order  []uint64
	nextID uint64
	logger *slog.Logger
}

// NewBus creates an empty Bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[uint64]Handler),
		logger: logger,
	}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, sid := range b.order {
				if sid == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers event to every current subscriber. A panicking handler
// is logged and does not stop delivery to the others.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(ctx, h, event)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_type", event.Type,
				"player_id", event.PlayerID,
				"panic", r,
			)
		}
	}()
	h(ctx, event)
}

// Subscribers returns the number of registered handlers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Recorder is a Publisher that keeps every event, for tests and replay tooling.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish records event.
func (r *Recorder) Publish(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t Type) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
