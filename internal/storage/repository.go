package storage

import (
	"context"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// ProgressUpdate is one atomic application of a progression operation:
// the user's new counters plus whatever the operation changed. The
// repository must apply all of it in a single transaction; progress is
// the system of record for XP already granted, so a partial write would
// desync the two.
type ProgressUpdate struct {
	// State carries the absolute XP and current day after the operation.
	// Writers are serialized per user, so absolute values are safe.
	State *models.UserState

	// Progress, when set, is upserted by (user_id, task_id).
	Progress *models.TaskProgress

	// Unlocks are inserted; an unlock that already exists is left
	// untouched (unlockedAt never changes).
	Unlocks []*models.AchievementUnlock
}

// Repository defines the persistence interface for progression state.
type Repository interface {
	// Users
	GetUserState(ctx context.Context, userID string) (*models.UserState, error)
	GetTaskProgress(ctx context.Context, userID string) (map[string]*models.TaskProgress, error)
	GetAchievements(ctx context.Context, userID string) (map[string]*models.AchievementUnlock, error)
	ApplyUpdate(ctx context.Context, update *ProgressUpdate) error
	TopUserStates(ctx context.Context, limit int) ([]*models.UserState, error)

	// API Clients
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
