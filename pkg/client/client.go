package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// Client is a Go SDK for the simplysecure API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new simplysecure client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CompleteResult mirrors the server response for a task completion
type CompleteResult struct {
	XPAwarded            int                           `json:"xp_awarded"`
	TotalXP              int                           `json:"total_xp"`
	Level                models.Level                  `json:"level"`
	AchievementsUnlocked []*models.SecurityAchievement `json:"achievements_unlocked"`
	DayAdvanced          bool                          `json:"day_advanced"`
	CurrentDay           int                           `json:"current_day"`
}

// VerifyResult mirrors the server response for a task verification
type VerifyResult struct {
	BonusXPAwarded       int                           `json:"bonus_xp_awarded"`
	TotalXP              int                           `json:"total_xp"`
	Level                models.Level                  `json:"level"`
	AchievementsUnlocked []*models.SecurityAchievement `json:"achievements_unlocked"`
	DayAdvanced          bool                          `json:"day_advanced"`
	CurrentDay           int                           `json:"current_day"`
}

// TaskOverview is one catalog task joined with the user's progress on it
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

// AchievementOverview is one achievement with its unlock state
type AchievementOverview struct {
	AchievementID string     `json:"achievement_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	XPReward      int        `json:"xp_reward"`
	Unlocked      bool       `json:"unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
}

// Overview is a user's full progression snapshot
type Overview struct {
	UserID        string                 `json:"user_id"`
	XP            int                    `json:"xp"`
	Level         models.Level           `json:"level"`
	LevelProgress float64                `json:"level_progress"`
	CurrentDay    int                    `json:"current_day"`
	Tasks         []*TaskOverview        `json:"tasks"`
	Achievements  []*AchievementOverview `json:"achievements"`
}

// LeaderboardEntry is one ranked row of the XP leaderboard
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	XP     int    `json:"xp"`
}

// ListPermissions retrieves the risk classification of every known
// permission type
func (c *Client) ListPermissions(ctx context.Context) ([]models.Classification, error) {
	var data struct {
		Permissions []models.Classification `json:"permissions"`
		Total       int                     `json:"total"`
	}
	if err := c.get(ctx, "/api/v1/permissions", &data); err != nil {
		return nil, err
	}
	return data.Permissions, nil
}

// ClassifyPermission retrieves the classification of a single permission
// type, e.g. "camera"
func (c *Client) ClassifyPermission(ctx context.Context, permType string) (*models.Classification, error) {
	var data models.Classification
	if err := c.get(ctx, "/api/v1/permissions/"+url.PathEscape(permType), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListTasks retrieves the task catalog. day of 0 returns every task.
func (c *Client) ListTasks(ctx context.Context, day int) ([]*models.SecurityTask, error) {
	path := "/api/v1/catalog/tasks"
	if day > 0 {
		path += fmt.Sprintf("?day=%d", day)
	}

	var data struct {
		Tasks []*models.SecurityTask `json:"tasks"`
		Total int                    `json:"total"`
	}
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return data.Tasks, nil
}

// GetTask retrieves a single task by ID or title
func (c *Client) GetTask(ctx context.Context, ref string) (*models.SecurityTask, error) {
	var data models.SecurityTask
	if err := c.get(ctx, "/api/v1/catalog/tasks/"+url.PathEscape(ref), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ListDays retrieves the daily challenge sets
func (c *Client) ListDays(ctx context.Context) ([]*models.DailyChallengeSet, error) {
	var data struct {
		Days  []*models.DailyChallengeSet `json:"days"`
		Total int                         `json:"total"`
	}
	if err := c.get(ctx, "/api/v1/catalog/days", &data); err != nil {
		return nil, err
	}
	return data.Days, nil
}

// ListAchievements retrieves the achievement catalog
func (c *Client) ListAchievements(ctx context.Context) ([]*models.SecurityAchievement, error) {
	var data struct {
		Achievements []*models.SecurityAchievement `json:"achievements"`
		Total        int                           `json:"total"`
	}
	if err := c.get(ctx, "/api/v1/catalog/achievements", &data); err != nil {
		return nil, err
	}
	return data.Achievements, nil
}

// StartTask marks a task as started for a user
func (c *Client) StartTask(ctx context.Context, userID, taskRef string) (*models.TaskProgress, error) {
	var data models.TaskProgress
	if err := c.post(ctx, c.taskPath(userID, taskRef, "start"), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CompleteTask marks a started task as completed, with optional notes
func (c *Client) CompleteTask(ctx context.Context, userID, taskRef, notes string) (*CompleteResult, error) {
	var body interface{}
	if notes != "" {
		body = map[string]string{"notes": notes}
	}

	var data CompleteResult
	if err := c.post(ctx, c.taskPath(userID, taskRef, "complete"), body, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// VerifyTask confirms a completed task, awarding bonus XP
func (c *Client) VerifyTask(ctx context.Context, userID, taskRef string) (*VerifyResult, error) {
	var data VerifyResult
	if err := c.post(ctx, c.taskPath(userID, taskRef, "verify"), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetProgress retrieves a user's full progression snapshot
func (c *Client) GetProgress(ctx context.Context, userID string) (*Overview, error) {
	var data Overview
	if err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/progress", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ResetXP zeroes a user's XP
func (c *Client) ResetXP(ctx context.Context, userID string) error {
	return c.post(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/xp/reset", nil, nil)
}

// SetLevel forces a user's XP to the given level's threshold
func (c *Client) SetLevel(ctx context.Context, userID string, level models.Level) (*Overview, error) {
	body := map[string]string{"level": string(level)}

	var data Overview
	if err := c.do(ctx, http.MethodPut, "/api/v1/users/"+url.PathEscape(userID)+"/xp/level", body, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Leaderboard retrieves the top ranked users by XP
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	path := "/api/v1/leaderboard"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var data struct {
		Entries []LeaderboardEntry `json:"entries"`
		Total   int                `json:"total"`
	}
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return data.Entries, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

func (c *Client) taskPath(userID, taskRef, op string) string {
	return "/api/v1/users/" + url.PathEscape(userID) + "/tasks/" + url.PathEscape(taskRef) + "/" + op
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// do performs a request and unmarshals the envelope's data field into
// out, which may be nil when the caller only cares about success.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if !result.Success {
		if result.Error != nil {
			return fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
		}
		return fmt.Errorf("HTTP %d: request failed", resp.StatusCode)
	}

	if out != nil && len(result.Data) > 0 {
		if err := json.Unmarshal(result.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
