// Package leveling implements the experience curve and per-level stat growth.
package leveling

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/character"
)

// DefaultMaxLevel is the season level ceiling.
const DefaultMaxLevel = 50

// XPForLevel returns the experience needed to advance out of level.
//
// Precondition: level >= 1.
// Postcondition: Returns floor(100 * level^1.5).
func XPForLevel(level int) int {
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// CumulativeXP returns the total experience required to reach level from level 1.
//
// Postcondition: CumulativeXP(1) == 0 and CumulativeXP is strictly increasing for level >= 1.
func CumulativeXP(level int) int {
	total := 0
	for i := 1; i < level; i++ {
		total += XPForLevel(i)
	}
	return total
}

// Delta is a per-level stat increment.
type Delta struct {
	HP, MP, Attack, Defense, Speed, CritChance float64
	Strength, Agility, Intelligence            int
}

func deltaFromConfig(g config.StatGrowth) Delta {
	return Delta{
		HP: g.HP, MP: g.MP, Attack: g.Attack, Defense: g.Defense,
		Speed: g.Speed, CritChance: g.CritChance,
		Strength: g.Strength, Agility: g.Agility, Intelligence: g.Intelligence,
	}
}

// Growth holds the flat per-level growth and the class-specific bonuses.
type Growth struct {
	PerLevel Delta
	Warrior  Delta
	Mage     Delta
	Rogue    Delta
}

// ClassBonus returns the class-specific growth for c.
func (g Growth) ClassBonus(c character.Class) Delta {
	switch c {
	case character.Warrior:
		return g.Warrior
	case character.Mage:
		return g.Mage
	case character.Rogue:
		return g.Rogue
	default:
		return Delta{}
	}
}

// Curve is a configured leveling curve. The zero value is not usable; build
// one with NewCurve or DefaultCurve.
type Curve struct {
	MaxLevel int
	Growth   Growth
}

// NewCurve builds a Curve from the leveling configuration.
//
// Precondition: cfg has passed config validation.
// Postcondition: Returns a Curve or an error naming an unknown class bonus key.
func NewCurve(cfg config.LevelingConfig) (*Curve, error) {
	c := &Curve{
		MaxLevel: cfg.MaxLevel,
		Growth:   Growth{PerLevel: deltaFromConfig(cfg.PerLevel)},
	}
	if c.MaxLevel < 2 {
		c.MaxLevel = DefaultMaxLevel
	}
	for name, bonus := range cfg.ClassBonuses {
		class, err := character.ParseClass(strings.ToUpper(name))
		if err != nil {
			return nil, fmt.Errorf("leveling class bonus: %w", err)
		}
		switch class {
		case character.Warrior:
			c.Growth.Warrior = deltaFromConfig(bonus)
		case character.Mage:
			c.Growth.Mage = deltaFromConfig(bonus)
		case character.Rogue:
			c.Growth.Rogue = deltaFromConfig(bonus)
		}
	}
	return c, nil
}

// DefaultCurve returns the curve described by the default configuration.
func DefaultCurve() *Curve {
	c, err := NewCurve(config.Default().Game.Leveling)
	if err != nil {
		panic("leveling: default curve: " + err.Error())
	}
	return c
}

// Result describes the outcome of AddXP.
type Result struct {
	OldLevel     int
	NewLevel     int
	LevelsGained int
	XPGained     int
	TotalXP      int
	// NewStats is nil when no level was gained; callers then persist only the xp.
	NewStats *character.Stats
}

// LeveledUp reports whether at least one level was gained.
func (r Result) LeveledUp() bool { return r.LevelsGained > 0 }

// AddXP adds gained experience and advances the level while the cumulative
// threshold of the next level is met, never past MaxLevel.
//
// Precondition: level >= 1; xp >= 0. Negative gained is treated as 0.
// Postcondition: TotalXP == xp + max(0, gained); NewLevel <= MaxLevel;
// NewStats != nil iff LevelsGained > 0. A level above MaxLevel is reported
// as MaxLevel with no levels gained.
func (c *Curve) AddXP(level, xp, gained int, class character.Class, stats character.Stats) Result {
	if gained < 0 {
		gained = 0
	}
	total := xp + gained
	newLevel := min(level, c.MaxLevel)
	for newLevel < c.MaxLevel && total >= CumulativeXP(newLevel+1) {
		newLevel++
	}

	res := Result{
		OldLevel:     level,
		NewLevel:     newLevel,
		LevelsGained: max(0, newLevel-level),
		XPGained:     gained,
		TotalXP:      total,
	}
	if res.LevelsGained > 0 {
		grown := c.ApplyGrowth(stats, class, res.LevelsGained)
		res.NewStats = &grown
	}
	return res
}

// ApplyGrowth returns stats grown by levels worth of flat and class growth.
//
// Precondition: levels >= 0.
func (c *Curve) ApplyGrowth(stats character.Stats, class character.Class, levels int) character.Stats {
	out := stats
	addDelta(&out, c.Growth.PerLevel, levels)
	addDelta(&out, c.Growth.ClassBonus(class), levels)
	return out
}

func addDelta(s *character.Stats, d Delta, times int) {
	n := float64(times)
	s.HP += d.HP * n
	s.MP += d.MP * n
	s.Attack += d.Attack * n
	s.Defense += d.Defense * n
	s.Speed += d.Speed * n
	s.CritChance += d.CritChance * n
	s.Strength += d.Strength * times
	s.Agility += d.Agility * times
	s.Intelligence += d.Intelligence * times
}

// BaseStats returns the starting stats of a freshly created character of the
// given class at level.
//
// Precondition: level >= 1.
func (c *Curve) BaseStats(class character.Class, level int) character.Stats {
	if level < 1 {
		level = 1
	}
	steps := float64(level - 1)
	per := c.Growth.PerLevel
	s := character.Stats{
		HP:           100 + steps*per.HP,
		MP:           50 + steps*per.MP,
		Attack:       10 + steps*per.Attack,
		Defense:      5 + steps*per.Defense,
		Speed:        5 + steps*per.Speed,
		CritChance:   0.05 + steps*per.CritChance,
		Strength:     5 + level,
		Agility:      5 + level,
		Intelligence: 5 + level,
	}
	switch class {
	case character.Warrior:
		s.Strength = 8 + level
		s.Intelligence = 3 + level
		s.HP += 20
		s.Attack += 5
	case character.Mage:
		s.Strength = 3 + level
		s.Intelligence = 8 + level
	case character.Rogue:
		s.Agility = 8 + level
	}
	return s
}

// LevelFromXP returns the level implied by cumulative xp, capped at MaxLevel.
//
// Postcondition: CumulativeXP(result) <= xp, and result == MaxLevel or CumulativeXP(result+1) > xp.
func (c *Curve) LevelFromXP(xp int) int {
	level := 1
	for level < c.MaxLevel && xp >= CumulativeXP(level+1) {
		level++
	}
	return level
}

// IsMaxLevel reports whether level is at or beyond the ceiling.
func (c *Curve) IsMaxLevel(level int) bool {
	return level >= c.MaxLevel
}

// CanLevelUp reports whether xp already meets the next level's threshold.
func (c *Curve) CanLevelUp(level, xp int) bool {
	return !c.IsMaxLevel(level) && xp >= CumulativeXP(level+1)
}

// XPToNextLevel returns the experience still needed to reach level+1; 0 at the ceiling.
func (c *Curve) XPToNextLevel(level, xp int) int {
	if c.IsMaxLevel(level) {
		return 0
	}
	return CumulativeXP(level+1) - xp
}

// Progress is the position of a character within its current level.
type Progress struct {
	Current    int
	Required   int
	Percentage float64
}

// Progress reports xp earned within the current level against the span of
// the level. Percentage is clamped to [0, 100]; at the ceiling it is 100.
func (c *Curve) Progress(level, xp int) Progress {
	floor := CumulativeXP(level)
	if c.IsMaxLevel(level) {
		return Progress{Current: xp - floor, Required: 0, Percentage: 100}
	}
	span := CumulativeXP(level+1) - floor
	cur := xp - floor
	pct := float64(cur) / float64(span) * 100
	return Progress{
		Current:    cur,
		Required:   span,
		Percentage: math.Min(100, math.Max(0, pct)),
	}
}
