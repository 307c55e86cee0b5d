// Package skill is the static catalog of class skills.
package skill

import "github.com/cory-johannsen/arena/internal/game/character"

// Skill describes one class skill. Secondary effects (stun, buffs, absorb,
// dodge, aoe, multi-hit, element) are narrated by callers and do not alter
// turn math.
type Skill struct {
	ID               string
	Name             string
	DamageMultiplier float64
	MPCost           int
	CritBonus        float64
	StunChance       float64
	BuffAttack       float64
	Duration         int
	AOE              bool
	Element          string
	AbsorbDamage     float64
	DodgeChance      float64
	MultiHit         int
	// Known is false for the neutral fallback returned for unrecognised ids.
	Known bool
}

// Neutral is the permissive fallback for unknown skill ids: a plain hit at no cost.
func Neutral(id string) Skill {
	return Skill{ID: id, Name: id, DamageMultiplier: 1.0}
}

// Effects returns short narration tags for the skill's secondary effects.
func (s Skill) Effects() []string {
	var out []string
	if s.StunChance > 0 {
		out = append(out, "may stun")
	}
	if s.BuffAttack > 0 {
		out = append(out, "attack up")
	}
	if s.AbsorbDamage > 0 {
		out = append(out, "barrier")
	}
	if s.DodgeChance > 0 {
		out = append(out, "evasion up")
	}
	if s.AOE {
		out = append(out, "area")
	}
	if s.MultiHit > 1 {
		out = append(out, "multi-hit")
	}
	if s.Element != "" {
		out = append(out, s.Element)
	}
	return out
}

var (
	warriorSkills = []Skill{
		{ID: "shield_slam", Name: "Shield Slam", DamageMultiplier: 1.2, MPCost: 10, StunChance: 0.3, Known: true},
		{ID: "battle_cry", Name: "Battle Cry", DamageMultiplier: 0, MPCost: 15, BuffAttack: 0.2, Duration: 3, Known: true},
		{ID: "whirlwind", Name: "Whirlwind", DamageMultiplier: 0.8, MPCost: 25, AOE: true, Known: true},
	}
	mageSkills = []Skill{
		{ID: "fireball", Name: "Fireball", DamageMultiplier: 1.5, MPCost: 12, Element: "fire", Known: true},
		{ID: "ice_barrier", Name: "Ice Barrier", DamageMultiplier: 0, MPCost: 20, AbsorbDamage: 0.3, Duration: 2, Known: true},
		{ID: "lightning_storm", Name: "Lightning Storm", DamageMultiplier: 1.0, MPCost: 30, AOE: true, StunChance: 0.1, Known: true},
	}
	rogueSkills = []Skill{
		{ID: "backstab", Name: "Backstab", DamageMultiplier: 2.0, MPCost: 8, CritBonus: 0.5, Known: true},
		{ID: "smoke_bomb", Name: "Smoke Bomb", DamageMultiplier: 0, MPCost: 12, DodgeChance: 0.5, Known: true},
		{ID: "blade_dance", Name: "Blade Dance", DamageMultiplier: 0.7, MPCost: 18, MultiHit: 3, Known: true},
	}
)

func classSkills(c character.Class) []Skill {
	switch c {
	case character.Warrior:
		return warriorSkills
	case character.Mage:
		return mageSkills
	case character.Rogue:
		return rogueSkills
	default:
		return nil
	}
}

// Lookup returns the skill id for class c, or Neutral(id) when the class does
// not know it.
//
// Postcondition: Never fails; result.Known reports whether the id was recognised.
func Lookup(c character.Class, id string) Skill {
	for _, s := range classSkills(c) {
		if s.ID == id {
			return s
		}
	}
	return Neutral(id)
}

// ForClass returns a copy of the class's skills in catalog order.
func ForClass(c character.Class) []Skill {
	skills := classSkills(c)
	out := make([]Skill, len(skills))
	copy(out, skills)
	return out
}
