package progression

import "github.com/CosmoBean/simplysecure/internal/models"

// Level thresholds, ascending. Level is always derived from XP; it is
// never stored, so the two cannot desynchronize.
const (
	noviceThreshold     = 0
	apprenticeThreshold = 200
	masterThreshold     = 400

	// masterCeiling exists only for the progress-bar display past the
	// highest named level; there is no level above Master.
	masterCeiling = 600
)

// LevelForXP derives the level from an XP total: the highest level whose
// threshold is <= xp.
func LevelForXP(xp int) models.Level {
	switch {
	case xp >= masterThreshold:
		return models.LevelMaster
	case xp >= apprenticeThreshold:
		return models.LevelApprentice
	default:
		return models.LevelNovice
	}
}

// LevelThreshold returns the XP at which a level begins.
func LevelThreshold(level models.Level) int {
	switch level {
	case models.LevelMaster:
		return masterThreshold
	case models.LevelApprentice:
		return apprenticeThreshold
	default:
		return noviceThreshold
	}
}

// nextThreshold returns the XP at which the level after the given one
// begins. For Master this is the display ceiling.
func nextThreshold(level models.Level) int {
	switch level {
	case models.LevelNovice:
		return apprenticeThreshold
	case models.LevelApprentice:
		return masterThreshold
	default:
		return masterCeiling
	}
}

// ProgressToNextLevel returns the fraction of the way from the current
// level's threshold to the next, in [0, 1].
func ProgressToNextLevel(xp int) float64 {
	if xp < 0 {
		xp = 0
	}

	level := LevelForXP(xp)
	current := LevelThreshold(level)
	next := nextThreshold(level)

	if next-current <= 0 {
		return 1.0
	}

	progress := float64(xp-current) / float64(next-current)
	if progress > 1.0 {
		return 1.0
	}
	return progress
}
