// Package catalog holds the static security-task and achievement
// definitions. The catalog is read-only reference data: loaded once at
// startup (built-in defaults, optionally overridden from YAML files)
// and shared by every user's progression.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/CosmoBean/simplysecure/internal/models"
)

// Catalog indexes tasks and achievements by stable ID. Titles are kept
// unique so external title-based references can be translated at the
// boundary.
type Catalog struct {
	mu           sync.RWMutex
	tasks        map[string]*models.SecurityTask
	taskByTitle  map[string]string // title -> id
	achievements map[string]*models.SecurityAchievement
	achOrder     []string
	maxDay       int
}

// New builds a catalog from explicit definitions, validating catalog
// invariants (unique IDs and titles, contiguous days, resolvable
// prerequisites).
func New(tasks []*models.SecurityTask, achievements []*models.SecurityAchievement) (*Catalog, error) {
	c := &Catalog{
		tasks:        make(map[string]*models.SecurityTask),
		taskByTitle:  make(map[string]string),
		achievements: make(map[string]*models.SecurityAchievement),
	}

	for _, t := range tasks {
		if err := c.addTask(t); err != nil {
			return nil, err
		}
	}
	for _, a := range achievements {
		if err := c.addAchievement(a); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) addTask(t *models.SecurityTask) error {
	if t.ID == "" {
		return fmt.Errorf("task %q: id is required", t.Title)
	}
	if t.Title == "" {
		return fmt.Errorf("task %q: title is required", t.ID)
	}
	if t.Day < 1 {
		return fmt.Errorf("task %q: day must be >= 1, got %d", t.ID, t.Day)
	}
	if t.XPReward <= 0 {
		return fmt.Errorf("task %q: xp reward must be positive, got %d", t.ID, t.XPReward)
	}
	if _, dup := c.tasks[t.ID]; dup {
		return fmt.Errorf("duplicate task id %q", t.ID)
	}
	if _, dup := c.taskByTitle[t.Title]; dup {
		return fmt.Errorf("duplicate task title %q", t.Title)
	}

	c.tasks[t.ID] = t
	c.taskByTitle[t.Title] = t.ID
	if t.Day > c.maxDay {
		c.maxDay = t.Day
	}
	return nil
}

func (c *Catalog) addAchievement(a *models.SecurityAchievement) error {
	if a.ID == "" {
		return fmt.Errorf("achievement %q: id is required", a.Title)
	}
	if _, dup := c.achievements[a.ID]; dup {
		return fmt.Errorf("duplicate achievement id %q", a.ID)
	}
	switch a.Requirement {
	case models.RequireTotalCompleted:
		if a.Threshold <= 0 {
			return fmt.Errorf("achievement %q: threshold must be positive", a.ID)
		}
	case models.RequireCategoryCompleted:
		if a.Category == "" || a.Threshold <= 0 {
			return fmt.Errorf("achievement %q: category and threshold are required", a.ID)
		}
	case models.RequireDayCompleted:
		if a.Day < 1 {
			return fmt.Errorf("achievement %q: day must be >= 1", a.ID)
		}
	default:
		return fmt.Errorf("achievement %q: unknown requirement %q", a.ID, a.Requirement)
	}

	c.achievements[a.ID] = a
	c.achOrder = append(c.achOrder, a.ID)
	return nil
}

// validate checks cross-entry invariants after all definitions are in.
func (c *Catalog) validate() error {
	if len(c.tasks) == 0 {
		return fmt.Errorf("catalog has no tasks")
	}

	perDay := make(map[int]int)
	for _, t := range c.tasks {
		perDay[t.Day]++
		for _, prereq := range t.Prerequisites {
			if _, ok := c.tasks[prereq]; !ok {
				return fmt.Errorf("task %q: unknown prerequisite %q", t.ID, prereq)
			}
		}
	}

	for day := 1; day <= c.maxDay; day++ {
		if perDay[day] == 0 {
			return fmt.Errorf("day %d has no tasks", day)
		}
	}

	for _, a := range c.achievements {
		if a.Requirement == models.RequireDayCompleted && a.Day > c.maxDay {
			return fmt.Errorf("achievement %q: day %d beyond catalog max %d", a.ID, a.Day, c.maxDay)
		}
	}

	return nil
}

// Task returns a task by ID, or nil.
func (c *Catalog) Task(id string) *models.SecurityTask {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tasks[id]
}

// TaskByTitle returns a task by its display title, or nil.
func (c *Catalog) TaskByTitle(title string) *models.SecurityTask {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id, ok := c.taskByTitle[title]; ok {
		return c.tasks[id]
	}
	return nil
}

// Resolve looks a task up by ID first, then by title. This is the
// boundary translation for callers that still reference tasks by
// human-readable title.
func (c *Catalog) Resolve(ref string) *models.SecurityTask {
	if t := c.Task(ref); t != nil {
		return t
	}
	return c.TaskByTitle(ref)
}

// Tasks returns every task ordered by (day, order).
func (c *Catalog) Tasks() []*models.SecurityTask {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*models.SecurityTask, 0, len(c.tasks))
	for _, t := range c.tasks {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Day != result[j].Day {
			return result[i].Day < result[j].Day
		}
		return result[i].Order < result[j].Order
	})
	return result
}

// TasksForDay returns the tasks of one day ordered by order.
func (c *Catalog) TasksForDay(day int) []*models.SecurityTask {
	var result []*models.SecurityTask
	for _, t := range c.Tasks() {
		if t.Day == day {
			result = append(result, t)
		}
	}
	return result
}

// Day returns the derived challenge set for one day, or nil if the day
// has no tasks.
func (c *Catalog) Day(day int) *models.DailyChallengeSet {
	tasks := c.TasksForDay(day)
	if len(tasks) == 0 {
		return nil
	}

	set := &models.DailyChallengeSet{Day: day, Tasks: tasks}
	for _, t := range tasks {
		set.TotalXP += t.XPReward
		set.EstimatedTimeMinutes += t.EstimatedTimeMinutes
	}
	return set
}

// Days returns every challenge set in day order.
func (c *Catalog) Days() []*models.DailyChallengeSet {
	var result []*models.DailyChallengeSet
	for day := 1; day <= c.MaxDay(); day++ {
		if set := c.Day(day); set != nil {
			result = append(result, set)
		}
	}
	return result
}

// MaxDay returns the highest day number in the catalog.
func (c *Catalog) MaxDay() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxDay
}

// Achievement returns an achievement definition by ID, or nil.
func (c *Catalog) Achievement(id string) *models.SecurityAchievement {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.achievements[id]
}

// Achievements returns every achievement in definition order.
func (c *Catalog) Achievements() []*models.SecurityAchievement {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*models.SecurityAchievement, 0, len(c.achOrder))
	for _, id := range c.achOrder {
		result = append(result, c.achievements[id])
	}
	return result
}
