package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// catalogFile is the on-disk YAML shape. A file may define tasks,
// achievements, or both; definitions from all files in a directory are
// merged into one catalog.
type catalogFile struct {
	Tasks        []taskYAML        `yaml:"tasks"`
	Achievements []achievementYAML `yaml:"achievements"`
}

type taskYAML struct {
	ID                   string   `yaml:"id"`
	Title                string   `yaml:"title"`
	Description          string   `yaml:"description"`
	DetailedInstructions string   `yaml:"detailed_instructions"`
	Category             string   `yaml:"category"`
	Difficulty           string   `yaml:"difficulty"`
	EstimatedTimeMinutes int      `yaml:"estimated_time_minutes"`
	XPReward             int      `yaml:"xp_reward"`
	Prerequisites        []string `yaml:"prerequisites"`
	VerificationCommand  string   `yaml:"verification_command"`
	Day                  int      `yaml:"day"`
	Order                int      `yaml:"order"`
}

type achievementYAML struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Requirement string `yaml:"requirement"`
	Category    string `yaml:"category"`
	Threshold   int    `yaml:"threshold"`
	Day         int    `yaml:"day"`
	XPReward    int    `yaml:"xp_reward"`
}

// Load builds a catalog from all YAML files in dir (and its immediate
// subdirectories), replacing the built-in definitions entirely.
func Load(dir string) (*Catalog, error) {
	slog.Info("loading catalog from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)

		subMatches, err := filepath.Glob(filepath.Join(dir, "*", pattern))
		if err != nil {
			continue
		}
		files = append(files, subMatches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no catalog files found in %s", dir)
	}

	var tasks []*models.SecurityTask
	var achievements []*models.SecurityAchievement

	for _, file := range files {
		cf, err := parseFile(file)
		if err != nil {
			slog.Warn("failed to parse catalog file", "file", file, "error", err)
			continue
		}

		for _, t := range cf.Tasks {
			tasks = append(tasks, &models.SecurityTask{
				ID:                   t.ID,
				Title:                t.Title,
				Description:          t.Description,
				DetailedInstructions: t.DetailedInstructions,
				Category:             models.TaskCategory(t.Category),
				Difficulty:           models.TaskDifficulty(t.Difficulty),
				EstimatedTimeMinutes: t.EstimatedTimeMinutes,
				XPReward:             t.XPReward,
				Prerequisites:        t.Prerequisites,
				VerificationCommand:  t.VerificationCommand,
				Day:                  t.Day,
				Order:                t.Order,
			})
		}

		for _, a := range cf.Achievements {
			achievements = append(achievements, &models.SecurityAchievement{
				ID:          a.ID,
				Title:       a.Title,
				Description: a.Description,
				Requirement: models.RequirementKind(a.Requirement),
				Category:    models.TaskCategory(a.Category),
				Threshold:   a.Threshold,
				Day:         a.Day,
				XPReward:    a.XPReward,
			})
		}
	}

	c, err := New(tasks, achievements)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog in %s: %w", dir, err)
	}

	slog.Info("catalog loaded",
		"tasks", len(tasks),
		"achievements", len(achievements),
		"days", c.MaxDay(),
	)
	return c, nil
}

func parseFile(path string) (*catalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cf, nil
}
