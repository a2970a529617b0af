// Package events carries progression events from the engine to
// subscribers (the websocket feed). Operations already return their
// effects to the caller; the hub only serves observers such as UI
// refresh, so publishing is best-effort and never blocks progression.
package events

import (
	"sync"
	"time"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// Type names a progression event.
type Type string

const (
	TaskStarted         Type = "task_started"
	TaskCompleted       Type = "task_completed"
	TaskVerified        Type = "task_verified"
	AchievementUnlocked Type = "achievement_unlocked"
	LevelUp             Type = "level_up"
	DayAdvanced         Type = "day_advanced"
)

// Event is one progression fact about one user.
type Event struct {
	Type          Type         `json:"type"`
	UserID        string       `json:"user_id"`
	TaskID        string       `json:"task_id,omitempty"`
	AchievementID string       `json:"achievement_id,omitempty"`
	XPAwarded     int          `json:"xp_awarded,omitempty"`
	TotalXP       int          `json:"total_xp,omitempty"`
	Level         models.Level `json:"level,omitempty"`
	Day           int          `json:"day,omitempty"`
	At            time.Time    `json:"at"`
}

// subscriberBuffer bounds each subscriber channel. A subscriber that
// falls this far behind starts losing events.
const subscriberBuffer = 16

// Hub fans events out to per-user subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers for one user's events. The returned cancel
// function must be called to release the subscription; it closes the
// channel.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the event's user.
// Non-blocking: a full subscriber buffer drops the event.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; drop rather than stall progression.
		}
	}
}

// Subscribers returns the subscriber count for a user. Test helper.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
