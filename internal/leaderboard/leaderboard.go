// Package leaderboard keeps a Redis sorted set of users ranked by total
// XP. The set is a derived view: the repository stays the system of
// record, and a background syncer heals any drift.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	XP     int    `json:"xp"`
}

// Leaderboard maintains the XP ranking in a Redis ZSET.
type Leaderboard struct {
	client *redis.Client
	key    string
}

// New creates a leaderboard over an existing Redis client.
func New(client *redis.Client, key string) *Leaderboard {
	return &Leaderboard{client: client, key: key}
}

// Connect dials Redis and returns a leaderboard on the connection.
func Connect(ctx context.Context, address, password string, db int, key string) (*Leaderboard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return New(client, key), nil
}

// Record sets a user's score to their current XP total.
func (l *Leaderboard) Record(ctx context.Context, userID string, xp int) error {
	if err := l.client.ZAdd(ctx, l.key, redis.Z{Score: float64(xp), Member: userID}).Err(); err != nil {
		return fmt.Errorf("failed to record score: %w", err)
	}
	return nil
}

// Top returns the highest-ranked n users.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}

	rows, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Rank:   i + 1,
			UserID: member,
			XP:     int(row.Score),
		})
	}
	return entries, nil
}

// Rebuild replaces the entire set from repository state. Used by the
// background syncer to heal drift from missed best-effort updates.
func (l *Leaderboard) Rebuild(ctx context.Context, states []*models.UserState) error {
	pipe := l.client.TxPipeline()
	pipe.Del(ctx, l.key)

	if len(states) > 0 {
		members := make([]redis.Z, 0, len(states))
		for _, s := range states {
			members = append(members, redis.Z{Score: float64(s.XP), Member: s.UserID})
		}
		pipe.ZAdd(ctx, l.key, members...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity.
func (l *Leaderboard) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (l *Leaderboard) Close() error {
	return l.client.Close()
}
