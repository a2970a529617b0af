package progression

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CosmoBean/simplysecure/internal/catalog"
	"github.com/CosmoBean/simplysecure/internal/events"
	"github.com/CosmoBean/simplysecure/internal/models"
	"github.com/CosmoBean/simplysecure/internal/storage"
)

func newTestEngine(opts ...Option) (*Engine, *storage.MemoryRepository) {
	repo := storage.NewMemoryRepository()
	e := NewEngine(catalog.Default(), repo, opts...)
	return e, repo
}

func mustStart(t *testing.T, e *Engine, userID, taskID string) {
	t.Helper()
	if _, err := e.Start(context.Background(), userID, taskID); err != nil {
		t.Fatalf("Start(%s): %v", taskID, err)
	}
}

func mustComplete(t *testing.T, e *Engine, userID, taskID string) *CompleteResult {
	t.Helper()
	mustStart(t, e, userID, taskID)
	res, err := e.Complete(context.Background(), userID, taskID, "")
	if err != nil {
		t.Fatalf("Complete(%s): %v", taskID, err)
	}
	return res
}

func TestFileVaultScenario(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	user := "alice"

	mustStart(t, e, user, "enable-filevault")

	res, err := e.Complete(ctx, user, "enable-filevault", "done")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.XPAwarded != 50 {
		t.Errorf("XPAwarded = %d, want 50", res.XPAwarded)
	}
	// First completion also unlocks Security Novice (+25).
	if res.TotalXP != 75 {
		t.Errorf("TotalXP = %d, want 75", res.TotalXP)
	}
	if len(res.AchievementsUnlocked) != 1 || res.AchievementsUnlocked[0].ID != "security-novice" {
		t.Errorf("expected security-novice unlock, got %v", res.AchievementsUnlocked)
	}

	verify, err := e.Verify(ctx, user, "enable-filevault")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verify.BonusXPAwarded != 25 {
		t.Errorf("BonusXPAwarded = %d, want 25 (half of 50)", verify.BonusXPAwarded)
	}
	if verify.TotalXP != 100 {
		t.Errorf("TotalXP after verify = %d, want 100", verify.TotalXP)
	}

	overview, err := e.Progress(ctx, user)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	for _, task := range overview.Tasks {
		if task.TaskID == "enable-filevault" {
			if task.Status != models.TaskVerified {
				t.Errorf("status = %s, want verified", task.Status)
			}
			if task.XPEarned != 75 {
				t.Errorf("XPEarned = %d, want 75 (50 + 25 bonus)", task.XPEarned)
			}
		}
	}
}

func TestCompleteBeforeStartFails(t *testing.T) {
	e, _ := newTestEngine()

	_, err := e.Complete(context.Background(), "bob", "enable-firewall", "")
	if !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestVerifyBeforeCompleteFails(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	if _, err := e.Verify(ctx, "bob", "enable-firewall"); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("expected ErrNotCompleted for unstarted task, got %v", err)
	}

	mustStart(t, e, "bob", "enable-firewall")
	if _, err := e.Verify(ctx, "bob", "enable-firewall"); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("expected ErrNotCompleted for in-progress task, got %v", err)
	}
}

func TestUnknownTask(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	if _, err := e.Start(ctx, "bob", "no-such-task"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Start: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := e.Complete(ctx, "bob", "no-such-task", ""); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Complete: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := e.Verify(ctx, "bob", "no-such-task"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Verify: expected ErrTaskNotFound, got %v", err)
	}
}

func TestStartIdempotentPreservesStartedAt(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	first, err := e.Start(ctx, "bob", "enable-firewall")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	again, err := e.Start(ctx, "bob", "enable-firewall")
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if !again.StartedAt.Equal(first.StartedAt) {
		t.Error("second start clobbered startedAt")
	}
	if again.ID != first.ID {
		t.Error("second start created a new progress record")
	}
}

func TestStartAfterCompleteFails(t *testing.T) {
	e, _ := newTestEngine()

	mustComplete(t, e, "bob", "enable-firewall")

	if _, err := e.Start(context.Background(), "bob", "enable-firewall"); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestRepeatCompleteIsIdempotent(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	first := mustComplete(t, e, "bob", "enable-firewall")

	second, err := e.Complete(ctx, "bob", "enable-firewall", "again")
	if err != nil {
		t.Fatalf("repeat Complete: %v", err)
	}
	if second.XPAwarded != 0 {
		t.Errorf("repeat complete awarded %d XP, want 0", second.XPAwarded)
	}
	if second.TotalXP != first.TotalXP {
		t.Errorf("repeat complete changed total XP: %d -> %d", first.TotalXP, second.TotalXP)
	}
	if len(second.AchievementsUnlocked) != 0 {
		t.Error("repeat complete should not unlock achievements")
	}
}

func TestRepeatVerifyIsIdempotent(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	mustComplete(t, e, "bob", "enable-firewall")
	first, err := e.Verify(ctx, "bob", "enable-firewall")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	second, err := e.Verify(ctx, "bob", "enable-firewall")
	if err != nil {
		t.Fatalf("repeat Verify: %v", err)
	}
	if second.BonusXPAwarded != 0 {
		t.Errorf("repeat verify awarded %d XP, want 0", second.BonusXPAwarded)
	}
	if second.TotalXP != first.TotalXP {
		t.Errorf("repeat verify changed total XP: %d -> %d", first.TotalXP, second.TotalXP)
	}
}

func TestDayOneCompletionAdvancesDay(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	user := "carol"

	dayOne := []string{
		"enable-filevault",
		"enable-firewall",
		"configure-privacy-settings",
		"enable-automatic-updates",
		"strong-login-password",
	}

	var last *CompleteResult
	for _, taskID := range dayOne {
		last = mustComplete(t, e, user, taskID)
	}

	if !last.DayAdvanced {
		t.Error("finishing day 1 should advance the day")
	}
	if last.CurrentDay != 2 {
		t.Errorf("CurrentDay = %d, want 2", last.CurrentDay)
	}

	unlocked := make(map[string]bool)
	overview, err := e.Progress(ctx, user)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	for _, a := range overview.Achievements {
		if a.Unlocked {
			unlocked[a.AchievementID] = true
		}
	}
	if !unlocked["foundation-builder"] {
		t.Error("finishing day 1 should unlock foundation-builder")
	}
	if !unlocked["security-novice"] {
		t.Error("security-novice should be unlocked after the first completion")
	}
}

func TestPrivacyGuardianUnlocksExactlyOnce(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	user := "dave"

	privacy := []string{"configure-privacy-settings", "audit-location-services", "audit-camera-microphone"}

	var gotUnlock int
	for _, taskID := range privacy {
		res := mustComplete(t, e, user, taskID)
		for _, a := range res.AchievementsUnlocked {
			if a.ID == "privacy-guardian" {
				gotUnlock++
			}
		}
	}
	if gotUnlock != 1 {
		t.Fatalf("privacy-guardian unlocked %d times, want exactly 1", gotUnlock)
	}

	unlocksBefore, err := e.repo.GetAchievements(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	unlockedAt := unlocksBefore["privacy-guardian"].UnlockedAt
	xpBefore, _ := e.repo.GetUserState(ctx, user)

	// A fourth privacy completion must not re-award it.
	res := mustComplete(t, e, user, "harden-browser")
	for _, a := range res.AchievementsUnlocked {
		if a.ID == "privacy-guardian" {
			t.Error("privacy-guardian re-awarded on fourth privacy completion")
		}
	}

	unlocksAfter, _ := e.repo.GetAchievements(ctx, user)
	if !unlocksAfter["privacy-guardian"].UnlockedAt.Equal(unlockedAt) {
		t.Error("unlockedAt changed on re-evaluation")
	}

	xpAfter, _ := e.repo.GetUserState(ctx, user)
	wantXP := xpBefore.XP + 50 // harden-browser reward only, no repeat bonus
	if xpAfter.XP != wantXP {
		t.Errorf("XP after fourth privacy completion = %d, want %d", xpAfter.XP, wantXP)
	}
}

func TestNetworkDefender(t *testing.T) {
	e, _ := newTestEngine()

	mustComplete(t, e, "erin", "enable-firewall")
	res := mustComplete(t, e, "erin", "secure-dns")

	var found bool
	for _, a := range res.AchievementsUnlocked {
		if a.ID == "network-defender" {
			found = true
		}
	}
	if !found {
		t.Error("two networking completions should unlock network-defender")
	}
}

func TestSecurityMasterAfterAllTasks(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	user := "frank"

	var lastResult *CompleteResult
	for _, task := range catalog.Default().Tasks() {
		lastResult = mustComplete(t, e, user, task.ID)
	}

	var foundMaster bool
	for _, a := range lastResult.AchievementsUnlocked {
		if a.ID == "security-master" {
			foundMaster = true
		}
	}
	if !foundMaster {
		t.Error("completing all 15 tasks should unlock security-master")
	}

	overview, err := e.Progress(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if overview.CurrentDay != 3 {
		t.Errorf("CurrentDay = %d, want 3 (terminal, no advancement past the last day)", overview.CurrentDay)
	}
	if overview.Level != models.LevelMaster {
		t.Errorf("level = %s, want master", overview.Level)
	}
	for _, a := range overview.Achievements {
		if !a.Unlocked {
			t.Errorf("achievement %s still locked after full completion", a.AchievementID)
		}
	}
}

func TestCompletionOrderDoesNotChangeTotalXP(t *testing.T) {
	runOrder := func(order []string) int {
		e, _ := newTestEngine()
		var total int
		for _, taskID := range order {
			res := mustComplete(t, e, "grace", taskID)
			total = res.TotalXP
		}
		return total
	}

	forward := runOrder([]string{"enable-filevault", "enable-firewall", "configure-privacy-settings"})
	reverse := runOrder([]string{"configure-privacy-settings", "enable-firewall", "enable-filevault"})

	if forward != reverse {
		t.Errorf("total XP depends on completion order: %d vs %d", forward, reverse)
	}
}

func TestPersistenceFailureIsFailClosed(t *testing.T) {
	e, repo := newTestEngine()
	ctx := context.Background()

	mustStart(t, e, "heidi", "enable-firewall")

	repo.FailWrites = true
	if _, err := e.Complete(ctx, "heidi", "enable-firewall", ""); err == nil {
		t.Fatal("expected error when the repository write fails")
	}
	repo.FailWrites = false

	// The failed completion must not have been applied.
	state, _ := repo.GetUserState(ctx, "heidi")
	if state.XP != 0 {
		t.Errorf("XP = %d after failed write, want 0", state.XP)
	}

	res, err := e.Complete(ctx, "heidi", "enable-firewall", "")
	if err != nil {
		t.Fatalf("Complete after recovery: %v", err)
	}
	if res.XPAwarded != 30 {
		t.Errorf("XPAwarded = %d, want 30", res.XPAwarded)
	}
}

func TestResetAndSetLevel(t *testing.T) {
	e, repo := newTestEngine()
	ctx := context.Background()

	mustComplete(t, e, "ivan", "enable-filevault")

	if err := e.SetLevel(ctx, "ivan", models.LevelMaster); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	state, _ := repo.GetUserState(ctx, "ivan")
	if state.XP != 400 {
		t.Errorf("XP after SetLevel(master) = %d, want 400", state.XP)
	}
	if LevelForXP(state.XP) != models.LevelMaster {
		t.Errorf("derived level = %s, want master", LevelForXP(state.XP))
	}

	if err := e.ResetXP(ctx, "ivan"); err != nil {
		t.Fatalf("ResetXP: %v", err)
	}
	state, _ = repo.GetUserState(ctx, "ivan")
	if state.XP != 0 {
		t.Errorf("XP after reset = %d, want 0", state.XP)
	}
	if LevelForXP(state.XP) != models.LevelNovice {
		t.Errorf("derived level after reset = %s, want novice", LevelForXP(state.XP))
	}
}

func TestEventsPublished(t *testing.T) {
	hub := events.NewHub()
	e, _ := newTestEngine(WithNotifier(hub))

	ch, cancel := hub.Subscribe("judy")
	defer cancel()

	mustComplete(t, e, "judy", "enable-filevault")

	types := make(map[events.Type]int)
	timeout := time.After(time.Second)
	for len(types) < 3 {
		select {
		case ev := <-ch:
			types[ev.Type]++
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %v", types)
		}
	}

	if types[events.TaskStarted] != 1 {
		t.Errorf("task_started events = %d, want 1", types[events.TaskStarted])
	}
	if types[events.TaskCompleted] != 1 {
		t.Errorf("task_completed events = %d, want 1", types[events.TaskCompleted])
	}
	if types[events.AchievementUnlocked] != 1 {
		t.Errorf("achievement_unlocked events = %d, want 1", types[events.AchievementUnlocked])
	}
}

type recordingScoreboard struct {
	calls map[string]int
}

func (r *recordingScoreboard) Record(ctx context.Context, userID string, xp int) error {
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[userID] = xp
	return nil
}

func TestScoreboardMirroring(t *testing.T) {
	board := &recordingScoreboard{}
	e, _ := newTestEngine(WithScoreboard(board))

	res := mustComplete(t, e, "kim", "enable-filevault")

	if board.calls["kim"] != res.TotalXP {
		t.Errorf("scoreboard recorded %d, want %d", board.calls["kim"], res.TotalXP)
	}
}

func TestProgressForFreshUser(t *testing.T) {
	e, _ := newTestEngine()

	overview, err := e.Progress(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if overview.XP != 0 || overview.Level != models.LevelNovice || overview.CurrentDay != 1 {
		t.Errorf("fresh user overview wrong: %+v", overview)
	}
	if len(overview.Tasks) != 15 {
		t.Errorf("expected 15 task views, got %d", len(overview.Tasks))
	}
	for _, task := range overview.Tasks {
		if task.Status != models.TaskNotStarted {
			t.Errorf("task %s status = %s, want not_started", task.TaskID, task.Status)
		}
	}
	if len(overview.Achievements) != 5 {
		t.Errorf("expected 5 achievement views, got %d", len(overview.Achievements))
	}
}
