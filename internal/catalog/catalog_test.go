package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CosmoBean/simplysecure/internal/models"
)

func TestDefaultCatalogShape(t *testing.T) {
	c := Default()

	tasks := c.Tasks()
	if len(tasks) != 15 {
		t.Fatalf("expected 15 tasks, got %d", len(tasks))
	}
	if c.MaxDay() != 3 {
		t.Fatalf("expected max day 3, got %d", c.MaxDay())
	}

	for day := 1; day <= 3; day++ {
		set := c.Day(day)
		if set == nil {
			t.Fatalf("day %d has no challenge set", day)
		}
		if len(set.Tasks) != 5 {
			t.Errorf("day %d: expected 5 tasks, got %d", day, len(set.Tasks))
		}

		wantXP := 0
		wantMinutes := 0
		for _, task := range set.Tasks {
			wantXP += task.XPReward
			wantMinutes += task.EstimatedTimeMinutes
		}
		if set.TotalXP != wantXP {
			t.Errorf("day %d: TotalXP = %d, want %d", day, set.TotalXP, wantXP)
		}
		if set.EstimatedTimeMinutes != wantMinutes {
			t.Errorf("day %d: EstimatedTimeMinutes = %d, want %d", day, set.EstimatedTimeMinutes, wantMinutes)
		}
	}
}

func TestDefaultCatalogUniqueKeys(t *testing.T) {
	c := Default()

	ids := make(map[string]bool)
	titles := make(map[string]bool)
	for _, task := range c.Tasks() {
		if ids[task.ID] {
			t.Errorf("duplicate task id %q", task.ID)
		}
		if titles[task.Title] {
			t.Errorf("duplicate task title %q", task.Title)
		}
		ids[task.ID] = true
		titles[task.Title] = true
	}
}

func TestDefaultCatalogPrerequisitesResolve(t *testing.T) {
	c := Default()
	for _, task := range c.Tasks() {
		for _, prereq := range task.Prerequisites {
			if c.Task(prereq) == nil {
				t.Errorf("task %q references unknown prerequisite %q", task.ID, prereq)
			}
		}
	}
}

func TestDefaultCatalogCategoryCoverage(t *testing.T) {
	c := Default()

	counts := make(map[models.TaskCategory]int)
	for _, task := range c.Tasks() {
		counts[task.Category]++
	}

	// Achievement predicates must be satisfiable.
	if counts[models.CategoryPrivacy] < 3 {
		t.Errorf("privacy tasks = %d, Privacy Guardian needs at least 3", counts[models.CategoryPrivacy])
	}
	if counts[models.CategoryNetworking] < 2 {
		t.Errorf("networking tasks = %d, Network Defender needs at least 2", counts[models.CategoryNetworking])
	}
}

func TestDefaultAchievements(t *testing.T) {
	c := Default()

	achievements := c.Achievements()
	if len(achievements) != 5 {
		t.Fatalf("expected 5 achievements, got %d", len(achievements))
	}

	master := c.Achievement("security-master")
	if master == nil {
		t.Fatal("security-master achievement missing")
	}
	if master.Requirement != models.RequireTotalCompleted || master.Threshold != 15 {
		t.Errorf("security-master requirement = %s/%d, want total_completed/15", master.Requirement, master.Threshold)
	}
}

func TestResolveByIDAndTitle(t *testing.T) {
	c := Default()

	byID := c.Resolve("enable-filevault")
	if byID == nil {
		t.Fatal("Resolve by id failed")
	}

	byTitle := c.Resolve("Enable FileVault Encryption")
	if byTitle == nil {
		t.Fatal("Resolve by title failed")
	}

	if byID != byTitle {
		t.Error("id and title should resolve to the same task")
	}

	if c.Resolve("no-such-task") != nil {
		t.Error("Resolve of unknown ref should return nil")
	}
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	base := &models.SecurityTask{
		ID: "a", Title: "A", Category: models.CategoryPrivacy,
		Difficulty: models.DifficultyEasy, XPReward: 10, Day: 1, Order: 1,
	}

	tests := []struct {
		name  string
		tasks []*models.SecurityTask
	}{
		{
			"duplicate id",
			[]*models.SecurityTask{base, {ID: "a", Title: "B", XPReward: 10, Day: 1}},
		},
		{
			"duplicate title",
			[]*models.SecurityTask{base, {ID: "b", Title: "A", XPReward: 10, Day: 1}},
		},
		{
			"unknown prerequisite",
			[]*models.SecurityTask{{ID: "b", Title: "B", XPReward: 10, Day: 1, Prerequisites: []string{"ghost"}}},
		},
		{
			"non-positive xp",
			[]*models.SecurityTask{{ID: "b", Title: "B", XPReward: 0, Day: 1}},
		},
		{
			"day gap",
			[]*models.SecurityTask{base, {ID: "b", Title: "B", XPReward: 10, Day: 3}},
		},
	}

	for _, tt := range tests {
		if _, err := New(tt.tasks, nil); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestLoadFromYAMLDir(t *testing.T) {
	dir := t.TempDir()

	content := `
tasks:
  - id: lock-screen
    title: Enable Screen Lock
    category: systemHardening
    difficulty: easy
    estimated_time_minutes: 5
    xp_reward: 20
    day: 1
    order: 1
  - id: update-router
    title: Update Router Firmware
    category: networking
    difficulty: medium
    estimated_time_minutes: 20
    xp_reward: 40
    prerequisites: [lock-screen]
    day: 1
    order: 2
achievements:
  - id: first-step
    title: First Step
    requirement: total_completed
    threshold: 1
    xp_reward: 10
`
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(c.Tasks()) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(c.Tasks()))
	}

	router := c.Task("update-router")
	if router == nil {
		t.Fatal("update-router task not loaded")
	}
	if router.Category != models.CategoryNetworking || router.XPReward != 40 {
		t.Errorf("update-router fields wrong: %+v", router)
	}
	if len(router.Prerequisites) != 1 || router.Prerequisites[0] != "lock-screen" {
		t.Errorf("update-router prerequisites wrong: %v", router.Prerequisites)
	}

	if c.Achievement("first-step") == nil {
		t.Error("first-step achievement not loaded")
	}
}

func TestLoadEmptyDirFails(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for directory without catalog files")
	}
}

func TestLoadSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("tasks: [nonsense"), 0o644); err != nil {
		t.Fatal(err)
	}
	good := `
tasks:
  - id: only-task
    title: Only Task
    category: privacy
    difficulty: easy
    xp_reward: 10
    day: 1
    order: 1
`
	if err := os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Task("only-task") == nil {
		t.Error("good file should still load when a sibling is malformed")
	}
}
