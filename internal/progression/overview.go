package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// TaskOverview is one catalog task joined with the user's progress on
// it. Tasks never started report not_started.
type TaskOverview struct {
	TaskID      string              `json:"task_id"`
	Title       string              `json:"title"`
	Category    models.TaskCategory `json:"category"`
	Day         int                 `json:"day"`
	XPReward    int                 `json:"xp_reward"`
	Status      models.TaskStatus   `json:"status"`
	XPEarned    int                 `json:"xp_earned"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	VerifiedAt  *time.Time          `json:"verified_at,omitempty"`
	Notes       string              `json:"notes,omitempty"`
}

// AchievementOverview is one achievement definition joined with the
// user's unlock state.
type AchievementOverview struct {
	AchievementID string     `json:"achievement_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	XPReward      int        `json:"xp_reward"`
	Unlocked      bool       `json:"unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
}

// Overview is a user's full progression snapshot.
type Overview struct {
	UserID        string                 `json:"user_id"`
	XP            int                    `json:"xp"`
	Level         models.Level           `json:"level"`
	LevelProgress float64                `json:"level_progress"`
	CurrentDay    int                    `json:"current_day"`
	Tasks         []*TaskOverview        `json:"tasks"`
	Achievements  []*AchievementOverview `json:"achievements"`
}

// Progress returns the full progression snapshot for a user. Read-only;
// a user with no history gets the zero snapshot, not an error.
func (e *Engine) Progress(ctx context.Context, userID string) (*Overview, error) {
	state, err := e.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := e.repo.GetTaskProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task progress: %w", err)
	}

	unlocked, err := e.repo.GetAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	overview := &Overview{
		UserID:        userID,
		XP:            state.XP,
		Level:         LevelForXP(state.XP),
		LevelProgress: ProgressToNextLevel(state.XP),
		CurrentDay:    state.CurrentDay,
	}

	for _, task := range e.catalog.Tasks() {
		view := &TaskOverview{
			TaskID:   task.ID,
			Title:    task.Title,
			Category: task.Category,
			Day:      task.Day,
			XPReward: task.XPReward,
			Status:   models.TaskNotStarted,
		}

		if p := progress[task.ID]; p != nil {
			started := p.StartedAt
			view.Status = p.Status
			view.XPEarned = p.XPEarned
			view.StartedAt = &started
			view.CompletedAt = p.CompletedAt
			view.VerifiedAt = p.VerifiedAt
			view.Notes = p.Notes
		}

		overview.Tasks = append(overview.Tasks, view)
	}

	for _, a := range e.catalog.Achievements() {
		view := &AchievementOverview{
			AchievementID: a.ID,
			Title:         a.Title,
			Description:   a.Description,
			XPReward:      a.XPReward,
		}

		if u := unlocked[a.ID]; u != nil {
			unlockedAt := u.UnlockedAt
			view.Unlocked = true
			view.UnlockedAt = &unlockedAt
		}

		overview.Achievements = append(overview.Achievements, view)
	}

	return overview, nil
}
