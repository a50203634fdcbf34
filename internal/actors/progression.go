// Leveling engine: pure functions from accumulated XP to level and HP.
package actors

import "math"

// BaseHP is the level-1 hit point total; each level adds HPPerLevel.
const (
	BaseHP     = 100
	HPPerLevel = 10
)

// XPForLevel returns the XP required to clear level n and reach n+1:
// floor(100 * 1.5^(n-1)).
func XPForLevel(n int) int64 {
	if n < 1 {
		n = 1
	}
	return int64(math.Floor(100 * math.Pow(1.5, float64(n-1))))
}

// Progress describes where a cumulative XP total lands on the curve.
type Progress struct {
	Level          int   `json:"level"`
	CurrentLevelXP int64 `json:"current_level_xp"`
	XPToNext       int64 `json:"xp_to_next"`
}

// LevelFromXP resolves a cumulative XP total into a level and progress
// within it, by repeated subtraction of per-level requirements.
func LevelFromXP(total int64) Progress {
	if total < 0 {
		total = 0
	}
	level := 1
	for total >= XPForLevel(level) {
		total -= XPForLevel(level)
		level++
	}
	return Progress{
		Level:          level,
		CurrentLevelXP: total,
		XPToNext:       XPForLevel(level) - total,
	}
}

// MaxHPForLevel returns the HP cap at a given level.
func MaxHPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return BaseHP + (level-1)*HPPerLevel
}

// AwardXP adds a non-negative amount to the character's cumulative XP and
// recomputes the level. A level increase restores HP to the new maximum.
// Returns the new level and whether it increased.
func AwardXP(c *Character, amount int64) (newLevel int, leveledUp bool) {
	if amount < 0 {
		amount = 0
	}
	c.XP += amount
	p := LevelFromXP(c.XP)
	if p.Level > c.Level {
		c.Level = p.Level
		c.MaxHP = MaxHPForLevel(p.Level)
		c.Heal(c.MaxHP)
		return p.Level, true
	}
	return c.Level, false
}
