package models

// TaskCategory groups security tasks by the area they harden.
type TaskCategory string

const (
	CategoryEncryption      TaskCategory = "encryption"
	CategoryNetworking      TaskCategory = "networking"
	CategoryPrivacy         TaskCategory = "privacy"
	CategoryAuthentication  TaskCategory = "authentication"
	CategorySystemHardening TaskCategory = "systemHardening"
)

// TaskDifficulty is a display hint; it does not affect progression.
type TaskDifficulty string

const (
	DifficultyEasy   TaskDifficulty = "easy"
	DifficultyMedium TaskDifficulty = "medium"
	DifficultyHard   TaskDifficulty = "hard"
)

// SecurityTask is a catalog entry: one unit of security guidance with an
// XP reward. Tasks are static reference data, keyed by a stable slug ID.
// Title is display text only; external title-based references are
// translated at the API boundary.
type SecurityTask struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	DetailedInstructions string         `json:"detailed_instructions,omitempty"`
	Category             TaskCategory   `json:"category"`
	Difficulty           TaskDifficulty `json:"difficulty"`
	EstimatedTimeMinutes int            `json:"estimated_time_minutes"`
	XPReward             int            `json:"xp_reward"`

	// Prerequisites lists task IDs that are recommended first.
	// Advisory only: progression never enforces them.
	Prerequisites []string `json:"prerequisites,omitempty"`

	// VerificationCommand is informational; it is executed by an external
	// runner, never by this service.
	VerificationCommand string `json:"verification_command,omitempty"`

	Day   int `json:"day"`
	Order int `json:"order"`
}

// DailyChallengeSet is the derived view of one day's tasks.
// Recomputed from the catalog, never stored.
type DailyChallengeSet struct {
	Day                  int             `json:"day"`
	Tasks                []*SecurityTask `json:"tasks"`
	TotalXP              int             `json:"total_xp"`
	EstimatedTimeMinutes int             `json:"estimated_time_minutes"`
}
