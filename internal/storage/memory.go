package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// MemoryRepository implements Repository with in-process maps. Used by
// unit tests and by embedders that do not want a database dependency.
// All reads and writes copy records so callers never alias stored state.
type MemoryRepository struct {
	mu       sync.RWMutex
	states   map[string]*models.UserState
	progress map[string]map[string]*models.TaskProgress      // userID -> taskID
	unlocks  map[string]map[string]*models.AchievementUnlock // userID -> achievementID
	clients  map[string]*models.ApiClient                    // apiKey

	// FailWrites makes ApplyUpdate return an error; tests use it to
	// exercise the fail-closed persistence contract.
	FailWrites bool
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		states:   make(map[string]*models.UserState),
		progress: make(map[string]map[string]*models.TaskProgress),
		unlocks:  make(map[string]map[string]*models.AchievementUnlock),
		clients:  make(map[string]*models.ApiClient),
	}
}

// AddClient registers an API client for authentication.
func (r *MemoryRepository) AddClient(client *models.ApiClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *client
	r.clients[client.ApiKey] = &c
}

func (r *MemoryRepository) GetUserState(ctx context.Context, userID string) (*models.UserState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	copied := *state
	return &copied, nil
}

func (r *MemoryRepository) GetTaskProgress(ctx context.Context, userID string) (map[string]*models.TaskProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*models.TaskProgress)
	for taskID, p := range r.progress[userID] {
		copied := *p
		result[taskID] = &copied
	}
	return result, nil
}

func (r *MemoryRepository) GetAchievements(ctx context.Context, userID string) (map[string]*models.AchievementUnlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*models.AchievementUnlock)
	for id, u := range r.unlocks[userID] {
		copied := *u
		result[id] = &copied
	}
	return result, nil
}

func (r *MemoryRepository) ApplyUpdate(ctx context.Context, update *ProgressUpdate) error {
	if update == nil || update.State == nil {
		return fmt.Errorf("progress update requires user state")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites {
		return fmt.Errorf("simulated write failure")
	}

	state := *update.State
	r.states[state.UserID] = &state

	if p := update.Progress; p != nil {
		if r.progress[p.UserID] == nil {
			r.progress[p.UserID] = make(map[string]*models.TaskProgress)
		}
		copied := *p
		r.progress[p.UserID][p.TaskID] = &copied
	}

	for _, u := range update.Unlocks {
		if r.unlocks[u.UserID] == nil {
			r.unlocks[u.UserID] = make(map[string]*models.AchievementUnlock)
		}
		if _, exists := r.unlocks[u.UserID][u.AchievementID]; exists {
			continue // unlockedAt never changes
		}
		copied := *u
		r.unlocks[u.UserID][u.AchievementID] = &copied
	}

	return nil
}

func (r *MemoryRepository) TopUserStates(ctx context.Context, limit int) ([]*models.UserState, error) {
	if limit <= 0 {
		limit = 50
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make([]*models.UserState, 0, len(r.states))
	for _, s := range r.states {
		copied := *s
		states = append(states, &copied)
	}

	sort.Slice(states, func(i, j int) bool {
		if states[i].XP != states[j].XP {
			return states[i].XP > states[j].XP
		}
		return states[i].UserID < states[j].UserID
	})

	if len(states) > limit {
		states = states[:limit]
	}
	return states, nil
}

func (r *MemoryRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[apiKey]
	if !ok {
		return nil, nil
	}
	copied := *client
	return &copied, nil
}

func (r *MemoryRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[apiKey]; ok {
		now := time.Now()
		client.LastUsedAt = &now
	}
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

func (r *MemoryRepository) Close() error { return nil }
