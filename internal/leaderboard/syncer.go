package leaderboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/CosmoBean/simplysecure/internal/storage"
)

// Syncer periodically rebuilds the leaderboard from the repository.
// Per-operation updates are best-effort, so the set can drift after
// Redis outages; the rebuild makes that drift temporary.
type Syncer struct {
	board    *Leaderboard
	repo     storage.Repository
	interval time.Duration
	limit    int
}

// NewSyncer creates a leaderboard sync worker
func NewSyncer(board *Leaderboard, repo storage.Repository, interval time.Duration, limit int) *Syncer {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if limit <= 0 {
		limit = 1000
	}

	return &Syncer{
		board:    board,
		repo:     repo,
		interval: interval,
		limit:    limit,
	}
}

// Start begins the sync worker in a goroutine
func (s *Syncer) Start(ctx context.Context) {
	go s.run(ctx)
}

// run is the main loop for the sync worker
func (s *Syncer) run(ctx context.Context) {
	slog.Info("leaderboard syncer started", "interval", s.interval, "limit", s.limit)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("leaderboard syncer stopped")
			return
		case <-ticker.C:
			s.sync(ctx)
		}
	}
}

// sync rebuilds the leaderboard from repository state
func (s *Syncer) sync(ctx context.Context) {
	slog.Debug("running leaderboard sync cycle")

	states, err := s.repo.TopUserStates(ctx, s.limit)
	if err != nil {
		slog.Error("failed to load user states for leaderboard sync", "error", err)
		return
	}

	if err := s.board.Rebuild(ctx, states); err != nil {
		slog.Error("failed to rebuild leaderboard", "error", err)
		return
	}

	slog.Debug("leaderboard synced", "users", len(states))
}
