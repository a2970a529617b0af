package models

import "time"

// RequirementKind names the predicate family an achievement uses.
type RequirementKind string

const (
	// RequireTotalCompleted unlocks when the number of completed-or-verified
	// tasks reaches Threshold.
	RequireTotalCompleted RequirementKind = "total_completed"
	// RequireCategoryCompleted unlocks when Threshold tasks of Category are
	// completed-or-verified.
	RequireCategoryCompleted RequirementKind = "category_completed"
	// RequireDayCompleted unlocks when every task of Day is
	// completed-or-verified.
	RequireDayCompleted RequirementKind = "day_completed"
)

// SecurityAchievement is a one-way unlockable milestone. Definitions are
// static catalog data; unlock state lives in AchievementUnlock.
type SecurityAchievement struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Requirement RequirementKind `json:"requirement"`
	Category    TaskCategory    `json:"category,omitempty"`
	Threshold   int             `json:"threshold,omitempty"`
	Day         int             `json:"day,omitempty"`
	XPReward    int             `json:"xp_reward"`
}

// AchievementUnlock records that a user unlocked an achievement.
// Once written it never changes; re-evaluating an unlocked achievement
// is a no-op.
type AchievementUnlock struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
