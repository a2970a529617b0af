package progression

import (
	"time"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// evaluateAchievements checks every still-locked achievement against the
// user's aggregate progress and returns the ones that just became true,
// with their unlock records. Already-unlocked achievements are skipped:
// the transition is one-way and re-evaluation is a no-op.
func (e *Engine) evaluateAchievements(
	userID string,
	progress map[string]*models.TaskProgress,
	unlocked map[string]*models.AchievementUnlock,
	now time.Time,
) ([]*models.SecurityAchievement, []*models.AchievementUnlock) {
	var newUnlocks []*models.SecurityAchievement
	var records []*models.AchievementUnlock

	for _, a := range e.catalog.Achievements() {
		if _, done := unlocked[a.ID]; done {
			continue
		}
		if !e.satisfied(a, progress) {
			continue
		}

		newUnlocks = append(newUnlocks, a)
		records = append(records, &models.AchievementUnlock{
			UserID:        userID,
			AchievementID: a.ID,
			UnlockedAt:    now,
		})
	}

	return newUnlocks, records
}

// satisfied evaluates one achievement predicate against aggregate
// completed-or-verified counts.
func (e *Engine) satisfied(a *models.SecurityAchievement, progress map[string]*models.TaskProgress) bool {
	switch a.Requirement {
	case models.RequireTotalCompleted:
		return e.completedCount(progress) >= a.Threshold

	case models.RequireCategoryCompleted:
		return e.categoryCount(a.Category, progress) >= a.Threshold

	case models.RequireDayCompleted:
		return dayComplete(e.catalog, a.Day, progress)

	default:
		return false
	}
}

func (e *Engine) completedCount(progress map[string]*models.TaskProgress) int {
	count := 0
	for taskID, p := range progress {
		if e.catalog.Task(taskID) != nil && isDone(p) {
			count++
		}
	}
	return count
}

func (e *Engine) categoryCount(category models.TaskCategory, progress map[string]*models.TaskProgress) int {
	count := 0
	for taskID, p := range progress {
		task := e.catalog.Task(taskID)
		if task != nil && task.Category == category && isDone(p) {
			count++
		}
	}
	return count
}
