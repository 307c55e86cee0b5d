// Package combat implements the damage model shared by every battle mode.
package combat

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Result is the terminal outcome of a PvE battle. The zero value means the
// battle is still in progress.
type Result string

const (
	Unresolved Result = ""
	Win        Result = "WIN"
	Lose       Result = "LOSE"
	Fled       Result = "FLED"
)

// Resolved reports whether r is terminal.
func (r Result) Resolved() bool { return r != Unresolved }

// Action is a player's choice for one turn.
type Action string

const (
	ActionAttack Action = "attack"
	ActionSkill  Action = "skill"
	ActionRun    Action = "run"
)

// ParseAction resolves a player action name.
//
// Postcondition: Returns a known Action or an error naming the input.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionAttack, ActionSkill, ActionRun:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// CritMultiplier scales damage on a critical hit.
const CritMultiplier = 2.0

// DefenseFactor is the share of the defender's defense subtracted from each hit.
const DefenseFactor = 0.5

// CalculateDamage computes one hit:
// floor(max(1, attack*multiplier*(2 if crit) - defense*0.5)).
//
// Postcondition: Returns >= 1 for all non-negative inputs.
func CalculateDamage(attacker, defender character.Stats, multiplier float64, crit bool) int {
	base := attacker.Attack * multiplier
	if crit {
		base *= CritMultiplier
	}
	return int(math.Floor(math.Max(1, base-defender.Defense*DefenseFactor)))
}

// IsCriticalHit draws one uniform sample against chance. chance is not clamped:
// values >= 1 always crit and values <= 0 never do.
//
// Precondition: src must be non-nil.
func IsCriticalHit(src dice.Source, chance float64) bool {
	return dice.Chance(src, chance)
}

// ApplyDamage returns hp reduced by amount, floored at zero.
//
// Postcondition: Returns >= 0.
func ApplyDamage(hp, amount int) int {
	hp -= amount
	if hp < 0 {
		return 0
	}
	return hp
}

// BattleScore rates a resolved PvE battle relative to the level gap between
// the character and the enemy. Fleeing always costs 5.
func BattleScore(characterLevel, enemyLevel int, result Result) int {
	const base = 20
	diff := characterLevel - enemyLevel
	switch result {
	case Win:
		return base + diff*2
	case Lose:
		if diff < 0 {
			diff = -diff
		}
		return -(base + diff*2)
	case Fled:
		return -5
	default:
		return 0
	}
}
