// Package progression implements the gamified security-training core:
// the per-task progress state machine, the XP/level engine, achievement
// unlocking and day advancement. Each operation is serialized per user
// and persisted atomically before any side effect is visible.
package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CosmoBean/simplysecure/internal/catalog"
	"github.com/CosmoBean/simplysecure/internal/events"
	"github.com/CosmoBean/simplysecure/internal/models"
	"github.com/CosmoBean/simplysecure/internal/storage"
)

// Common errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrNotStarted       = errors.New("task not started")
	ErrNotCompleted     = errors.New("task not completed")
	ErrAlreadyCompleted = errors.New("task already completed")
)

// Notifier receives progression events after a successful persist.
type Notifier interface {
	Publish(ev events.Event)
}

// Scoreboard mirrors XP totals into an external ranking (the Redis
// leaderboard). Failures are logged, never propagated: the repository
// is the system of record.
type Scoreboard interface {
	Record(ctx context.Context, userID string, xp int) error
}

// Engine coordinates catalog, repository, achievements and day
// progression for all users.
type Engine struct {
	catalog  *catalog.Catalog
	repo     storage.Repository
	notifier Notifier
	board    Scoreboard
	now      func() time.Time

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// Option configures the engine.
type Option func(*Engine)

// WithNotifier attaches an event sink.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithScoreboard attaches a leaderboard mirror.
func WithScoreboard(b Scoreboard) Option {
	return func(e *Engine) { e.board = b }
}

// NewEngine creates a progression engine over a catalog and repository.
func NewEngine(cat *catalog.Catalog, repo storage.Repository, opts ...Option) *Engine {
	e := &Engine{
		catalog:   cat,
		repo:      repo,
		now:       time.Now,
		userLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lockUser serializes operations on one user's progression state.
// Concurrent award paths (task completion racing achievement bonuses)
// would otherwise lose updates.
func (e *Engine) lockUser(userID string) func() {
	e.mu.Lock()
	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (e *Engine) loadState(ctx context.Context, userID string) (*models.UserState, error) {
	state, err := e.repo.GetUserState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user state: %w", err)
	}
	if state == nil {
		state = models.NewUserState(userID)
	}
	return state, nil
}

// Start begins a task for a user. Starting a task that is already in
// progress is idempotent and preserves the original start time;
// starting a completed or verified task is an invalid transition.
func (e *Engine) Start(ctx context.Context, userID, taskID string) (*models.TaskProgress, error) {
	task := e.catalog.Task(taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	unlock := e.lockUser(userID)
	defer unlock()

	state, err := e.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := e.repo.GetTaskProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task progress: %w", err)
	}

	if rec := progress[taskID]; rec != nil {
		if rec.Status == models.TaskInProgress {
			return rec, nil
		}
		return nil, ErrAlreadyCompleted
	}

	now := e.now()
	rec := &models.TaskProgress{
		ID:        uuid.New().String(),
		UserID:    userID,
		TaskID:    taskID,
		Status:    models.TaskInProgress,
		StartedAt: now,
	}

	state.UpdatedAt = now
	if err := e.repo.ApplyUpdate(ctx, &storage.ProgressUpdate{State: state, Progress: rec}); err != nil {
		return nil, fmt.Errorf("failed to persist task start: %w", err)
	}

	e.publish(events.Event{
		Type:   events.TaskStarted,
		UserID: userID,
		TaskID: taskID,
		At:     now,
	})

	slog.Info("task started", "user", userID, "task", taskID)
	return rec, nil
}

// CompleteResult reports everything a completion changed.
type CompleteResult struct {
	XPAwarded            int                           `json:"xp_awarded"`
	TotalXP              int                           `json:"total_xp"`
	Level                models.Level                  `json:"level"`
	AchievementsUnlocked []*models.SecurityAchievement `json:"achievements_unlocked"`
	DayAdvanced          bool                          `json:"day_advanced"`
	CurrentDay           int                           `json:"current_day"`
}

// Complete marks a started task as completed, awards its XP, evaluates
// achievements and checks day advancement, all in one atomic persist.
// Completing an already completed or verified task is an idempotent
// no-op; completing a never-started task is an error.
func (e *Engine) Complete(ctx context.Context, userID, taskID, notes string) (*CompleteResult, error) {
	task := e.catalog.Task(taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	unlock := e.lockUser(userID)
	defer unlock()

	state, progress, unlocked, err := e.loadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	rec := progress[taskID]
	if rec == nil || rec.Status == models.TaskNotStarted {
		return nil, ErrNotStarted
	}
	if rec.Status == models.TaskCompleted || rec.Status == models.TaskVerified {
		return &CompleteResult{
			TotalXP:    state.XP,
			Level:      LevelForXP(state.XP),
			CurrentDay: state.CurrentDay,
		}, nil
	}

	now := e.now()
	rec.Status = models.TaskCompleted
	rec.CompletedAt = &now
	rec.Notes = notes
	rec.XPEarned = task.XPReward

	oldLevel := LevelForXP(state.XP)
	state.XP += task.XPReward

	newUnlocks, unlockRecords := e.evaluateAchievements(userID, progress, unlocked, now)
	for _, a := range newUnlocks {
		state.XP += a.XPReward
	}

	dayAdvanced := e.advanceDay(state, progress)
	state.UpdatedAt = now

	update := &storage.ProgressUpdate{State: state, Progress: rec, Unlocks: unlockRecords}
	if err := e.repo.ApplyUpdate(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to persist task completion: %w", err)
	}

	e.afterAward(ctx, state, oldLevel)
	e.publish(events.Event{
		Type:      events.TaskCompleted,
		UserID:    userID,
		TaskID:    taskID,
		XPAwarded: task.XPReward,
		TotalXP:   state.XP,
		Level:     LevelForXP(state.XP),
		At:        now,
	})
	e.publishUnlocks(userID, newUnlocks, state, now)
	if dayAdvanced {
		e.publish(events.Event{
			Type:   events.DayAdvanced,
			UserID: userID,
			Day:    state.CurrentDay,
			At:     now,
		})
	}

	slog.Info("task completed",
		"user", userID,
		"task", taskID,
		"xp_awarded", task.XPReward,
		"achievements_unlocked", len(newUnlocks),
		"day_advanced", dayAdvanced,
	)

	return &CompleteResult{
		XPAwarded:            task.XPReward,
		TotalXP:              state.XP,
		Level:                LevelForXP(state.XP),
		AchievementsUnlocked: newUnlocks,
		DayAdvanced:          dayAdvanced,
		CurrentDay:           state.CurrentDay,
	}, nil
}

// VerifyResult reports everything a verification changed.
type VerifyResult struct {
	BonusXPAwarded       int                           `json:"bonus_xp_awarded"`
	TotalXP              int                           `json:"total_xp"`
	Level                models.Level                  `json:"level"`
	AchievementsUnlocked []*models.SecurityAchievement `json:"achievements_unlocked"`
	DayAdvanced          bool                          `json:"day_advanced"`
	CurrentDay           int                           `json:"current_day"`
}

// Verify confirms a completed task's real-world effect, awarding a
// bonus of half the task's XP. Verifying a verified task is an
// idempotent no-op; verifying before completion is an error.
func (e *Engine) Verify(ctx context.Context, userID, taskID string) (*VerifyResult, error) {
	task := e.catalog.Task(taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	unlock := e.lockUser(userID)
	defer unlock()

	state, progress, unlocked, err := e.loadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	rec := progress[taskID]
	if rec == nil || rec.Status == models.TaskNotStarted || rec.Status == models.TaskInProgress {
		return nil, ErrNotCompleted
	}
	if rec.Status == models.TaskVerified {
		return &VerifyResult{
			TotalXP:    state.XP,
			Level:      LevelForXP(state.XP),
			CurrentDay: state.CurrentDay,
		}, nil
	}

	now := e.now()
	bonus := task.XPReward / 2
	rec.Status = models.TaskVerified
	rec.VerifiedAt = &now
	rec.XPEarned += bonus

	oldLevel := LevelForXP(state.XP)
	state.XP += bonus

	// Verification also changes aggregate counts, so achievements are
	// re-evaluated here as well.
	newUnlocks, unlockRecords := e.evaluateAchievements(userID, progress, unlocked, now)
	for _, a := range newUnlocks {
		state.XP += a.XPReward
	}

	dayAdvanced := e.advanceDay(state, progress)
	state.UpdatedAt = now

	update := &storage.ProgressUpdate{State: state, Progress: rec, Unlocks: unlockRecords}
	if err := e.repo.ApplyUpdate(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to persist task verification: %w", err)
	}

	e.afterAward(ctx, state, oldLevel)
	e.publish(events.Event{
		Type:      events.TaskVerified,
		UserID:    userID,
		TaskID:    taskID,
		XPAwarded: bonus,
		TotalXP:   state.XP,
		Level:     LevelForXP(state.XP),
		At:        now,
	})
	e.publishUnlocks(userID, newUnlocks, state, now)
	if dayAdvanced {
		e.publish(events.Event{
			Type:   events.DayAdvanced,
			UserID: userID,
			Day:    state.CurrentDay,
			At:     now,
		})
	}

	slog.Info("task verified", "user", userID, "task", taskID, "bonus_xp", bonus)

	return &VerifyResult{
		BonusXPAwarded:       bonus,
		TotalXP:              state.XP,
		Level:                LevelForXP(state.XP),
		AchievementsUnlocked: newUnlocks,
		DayAdvanced:          dayAdvanced,
		CurrentDay:           state.CurrentDay,
	}, nil
}

// ResetXP zeroes a user's XP. Test/demo operation, kept apart from the
// normal progression path.
func (e *Engine) ResetXP(ctx context.Context, userID string) error {
	unlock := e.lockUser(userID)
	defer unlock()

	state, err := e.loadState(ctx, userID)
	if err != nil {
		return err
	}

	state.XP = 0
	state.UpdatedAt = e.now()

	if err := e.repo.ApplyUpdate(ctx, &storage.ProgressUpdate{State: state}); err != nil {
		return fmt.Errorf("failed to persist xp reset: %w", err)
	}

	e.recordScore(ctx, state)
	slog.Info("xp reset", "user", userID)
	return nil
}

// SetLevel forces a user's XP to a level's threshold. Admin/demo
// override, never part of normal progression.
func (e *Engine) SetLevel(ctx context.Context, userID string, level models.Level) error {
	unlock := e.lockUser(userID)
	defer unlock()

	state, err := e.loadState(ctx, userID)
	if err != nil {
		return err
	}

	state.XP = LevelThreshold(level)
	state.UpdatedAt = e.now()

	if err := e.repo.ApplyUpdate(ctx, &storage.ProgressUpdate{State: state}); err != nil {
		return fmt.Errorf("failed to persist level override: %w", err)
	}

	e.recordScore(ctx, state)
	slog.Info("level override applied", "user", userID, "level", level, "xp", state.XP)
	return nil
}

func (e *Engine) loadAll(ctx context.Context, userID string) (*models.UserState, map[string]*models.TaskProgress, map[string]*models.AchievementUnlock, error) {
	state, err := e.loadState(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	progress, err := e.repo.GetTaskProgress(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load task progress: %w", err)
	}

	unlocked, err := e.repo.GetAchievements(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	return state, progress, unlocked, nil
}

// advanceDay moves the active day pointer forward when the active day's
// tasks are all completed-or-verified. Terminal at the catalog's last
// day.
func (e *Engine) advanceDay(state *models.UserState, progress map[string]*models.TaskProgress) bool {
	if state.CurrentDay >= e.catalog.MaxDay() {
		return false
	}
	if !dayComplete(e.catalog, state.CurrentDay, progress) {
		return false
	}
	state.CurrentDay++
	return true
}

func dayComplete(cat *catalog.Catalog, day int, progress map[string]*models.TaskProgress) bool {
	tasks := cat.TasksForDay(day)
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !isDone(progress[t.ID]) {
			return false
		}
	}
	return true
}

func isDone(p *models.TaskProgress) bool {
	return p != nil && (p.Status == models.TaskCompleted || p.Status == models.TaskVerified)
}

// afterAward mirrors the new XP total to the scoreboard and publishes a
// level-up event when the derived level changed.
func (e *Engine) afterAward(ctx context.Context, state *models.UserState, oldLevel models.Level) {
	e.recordScore(ctx, state)

	newLevel := LevelForXP(state.XP)
	if newLevel != oldLevel {
		e.publish(events.Event{
			Type:    events.LevelUp,
			UserID:  state.UserID,
			TotalXP: state.XP,
			Level:   newLevel,
			At:      state.UpdatedAt,
		})
	}
}

func (e *Engine) recordScore(ctx context.Context, state *models.UserState) {
	if e.board == nil {
		return
	}
	if err := e.board.Record(ctx, state.UserID, state.XP); err != nil {
		slog.Warn("failed to record leaderboard score", "user", state.UserID, "error", err)
	}
}

func (e *Engine) publish(ev events.Event) {
	if e.notifier != nil {
		e.notifier.Publish(ev)
	}
}

func (e *Engine) publishUnlocks(userID string, unlocks []*models.SecurityAchievement, state *models.UserState, now time.Time) {
	for _, a := range unlocks {
		e.publish(events.Event{
			Type:          events.AchievementUnlocked,
			UserID:        userID,
			AchievementID: a.ID,
			XPAwarded:     a.XPReward,
			TotalXP:       state.XP,
			At:            now,
		})
	}
}
