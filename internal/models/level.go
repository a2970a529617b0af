package models

// Level is derived from XP via fixed thresholds; it is never persisted
// independently of XP.
type Level string

const (
	LevelNovice     Level = "novice"
	LevelApprentice Level = "apprentice"
	LevelMaster     Level = "master"
)

// ParseLevel maps a level name to its enum value.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelNovice, LevelApprentice, LevelMaster:
		return Level(s), true
	}
	return "", false
}
