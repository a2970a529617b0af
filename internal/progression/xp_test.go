package progression

import (
	"math"
	"testing"

	"github.com/CosmoBean/simplysecure/internal/models"
)

func TestLevelForXPBoundaries(t *testing.T) {
	tests := []struct {
		xp    int
		level models.Level
	}{
		{0, models.LevelNovice},
		{1, models.LevelNovice},
		{199, models.LevelNovice},
		{200, models.LevelApprentice},
		{399, models.LevelApprentice},
		{400, models.LevelMaster},
		{599, models.LevelMaster},
		{600, models.LevelMaster},
		{10000, models.LevelMaster},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.level {
			t.Errorf("LevelForXP(%d) = %s, want %s", tt.xp, got, tt.level)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	rank := map[models.Level]int{
		models.LevelNovice:     0,
		models.LevelApprentice: 1,
		models.LevelMaster:     2,
	}

	prev := LevelForXP(0)
	for xp := 1; xp <= 700; xp++ {
		cur := LevelForXP(xp)
		if rank[cur] < rank[prev] {
			t.Fatalf("level decreased from %s to %s at xp=%d", prev, cur, xp)
		}
		prev = cur
	}
}

func TestProgressToNextLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want float64
	}{
		{0, 0.0},
		{100, 0.5},
		{199, 199.0 / 200.0}, // ≈0.995
		{200, 0.0},
		{300, 0.5},
		{400, 0.0},
		{500, 0.5},
		{600, 1.0},  // at display ceiling
		{1000, 1.0}, // clamped past max
	}

	for _, tt := range tests {
		got := ProgressToNextLevel(tt.xp)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ProgressToNextLevel(%d) = %f, want %f", tt.xp, got, tt.want)
		}
	}
}

func TestProgressToNextLevelInRange(t *testing.T) {
	for xp := 0; xp <= 2000; xp += 7 {
		p := ProgressToNextLevel(xp)
		if p < 0 || p > 1 {
			t.Fatalf("ProgressToNextLevel(%d) = %f out of [0,1]", xp, p)
		}
	}
}

func TestLevelThresholds(t *testing.T) {
	if LevelThreshold(models.LevelNovice) != 0 {
		t.Error("novice threshold should be 0")
	}
	if LevelThreshold(models.LevelApprentice) != 200 {
		t.Error("apprentice threshold should be 200")
	}
	if LevelThreshold(models.LevelMaster) != 400 {
		t.Error("master threshold should be 400")
	}
}
