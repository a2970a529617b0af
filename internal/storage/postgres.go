package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// GetUserState retrieves a user's progression counters.
// Returns nil, nil for a user with no recorded activity.
func (r *PostgresRepository) GetUserState(ctx context.Context, userID string) (*models.UserState, error) {
	query := `
		SELECT user_id, xp, current_day, updated_at
		FROM user_states
		WHERE user_id = $1
	`

	var state models.UserState
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&state.UserID,
		&state.XP,
		&state.CurrentDay,
		&state.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get user state: %w", err)
	}

	return &state, nil
}

// GetTaskProgress retrieves all progress records for a user, keyed by task ID.
func (r *PostgresRepository) GetTaskProgress(ctx context.Context, userID string) (map[string]*models.TaskProgress, error) {
	query := `
		SELECT id, user_id, task_id, status, started_at, completed_at, verified_at, notes, xp_earned
		FROM task_progress
		WHERE user_id = $1
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task progress: %w", err)
	}
	defer rows.Close()

	progress := make(map[string]*models.TaskProgress)
	for rows.Next() {
		var p models.TaskProgress
		var statusStr string
		var completedAt, verifiedAt sql.NullTime

		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.TaskID,
			&statusStr,
			&p.StartedAt,
			&completedAt,
			&verifiedAt,
			&p.Notes,
			&p.XPEarned,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task progress: %w", err)
		}

		p.Status = models.TaskStatus(statusStr)
		if completedAt.Valid {
			p.CompletedAt = &completedAt.Time
		}
		if verifiedAt.Valid {
			p.VerifiedAt = &verifiedAt.Time
		}

		progress[p.TaskID] = &p
	}

	return progress, rows.Err()
}

// GetAchievements retrieves a user's unlocks, keyed by achievement ID.
func (r *PostgresRepository) GetAchievements(ctx context.Context, userID string) (map[string]*models.AchievementUnlock, error) {
	query := `
		SELECT user_id, achievement_id, unlocked_at
		FROM achievement_unlocks
		WHERE user_id = $1
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	unlocks := make(map[string]*models.AchievementUnlock)
	for rows.Next() {
		var u models.AchievementUnlock
		if err := rows.Scan(&u.UserID, &u.AchievementID, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement unlock: %w", err)
		}
		unlocks[u.AchievementID] = &u
	}

	return unlocks, rows.Err()
}

// ApplyUpdate applies one progression operation in a single transaction.
func (r *PostgresRepository) ApplyUpdate(ctx context.Context, update *ProgressUpdate) error {
	if update == nil || update.State == nil {
		return fmt.Errorf("progress update requires user state")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stateQuery := `
		INSERT INTO user_states (user_id, xp, current_day, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET xp = EXCLUDED.xp, current_day = EXCLUDED.current_day, updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.Exec(ctx, stateQuery,
		update.State.UserID,
		update.State.XP,
		update.State.CurrentDay,
		update.State.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert user state: %w", err)
	}

	if p := update.Progress; p != nil {
		progressQuery := `
			INSERT INTO task_progress (id, user_id, task_id, status, started_at, completed_at, verified_at, notes, xp_earned)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (user_id, task_id) DO UPDATE
			SET status = EXCLUDED.status,
			    completed_at = EXCLUDED.completed_at,
			    verified_at = EXCLUDED.verified_at,
			    notes = EXCLUDED.notes,
			    xp_earned = EXCLUDED.xp_earned
		`
		if _, err := tx.Exec(ctx, progressQuery,
			p.ID,
			p.UserID,
			p.TaskID,
			string(p.Status),
			p.StartedAt,
			nullTime(p.CompletedAt),
			nullTime(p.VerifiedAt),
			p.Notes,
			p.XPEarned,
		); err != nil {
			return fmt.Errorf("failed to upsert task progress: %w", err)
		}
	}

	for _, u := range update.Unlocks {
		unlockQuery := `
			INSERT INTO achievement_unlocks (user_id, achievement_id, unlocked_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, achievement_id) DO NOTHING
		`
		if _, err := tx.Exec(ctx, unlockQuery, u.UserID, u.AchievementID, u.UnlockedAt); err != nil {
			return fmt.Errorf("failed to insert achievement unlock: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit progress update: %w", err)
	}

	return nil
}

// TopUserStates returns up to limit users ordered by XP descending.
func (r *PostgresRepository) TopUserStates(ctx context.Context, limit int) ([]*models.UserState, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT user_id, xp, current_day, updated_at
		FROM user_states
		ORDER BY xp DESC, user_id ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top users: %w", err)
	}
	defer rows.Close()

	var states []*models.UserState
	for rows.Next() {
		var state models.UserState
		if err := rows.Scan(&state.UserID, &state.XP, &state.CurrentDay, &state.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user state: %w", err)
		}
		states = append(states, &state)
	}

	return states, rows.Err()
}

// GetClientByApiKey retrieves an active API client by key.
// Returns nil, nil when the key is unknown.
func (r *PostgresRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	query := `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions, metadata
		FROM api_clients
		WHERE api_key = $1
	`

	var client models.ApiClient
	var lastUsedAt sql.NullTime
	var permissionsJSON, metadataJSON []byte

	err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&client.ID,
		&client.Name,
		&client.ApiKey,
		&client.IsActive,
		&client.CreatedAt,
		&lastUsedAt,
		&permissionsJSON,
		&metadataJSON,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}

	if lastUsedAt.Valid {
		client.LastUsedAt = &lastUsedAt.Time
	}

	if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}

	if err := json.Unmarshal(metadataJSON, &client.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &client, nil
}

// UpdateClientLastUsed records when an API key was last seen.
func (r *PostgresRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	query := `UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`
	if _, err := r.pool.Exec(ctx, query, apiKey); err != nil {
		return fmt.Errorf("failed to update client last used: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
