package npc

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// MinRewardMultiplier floors the level-difference reward multiplier.
const MinRewardMultiplier = 0.1

// Reward is what a character earns for a resolved WIN.
type Reward struct {
	XP    int        `json:"xp"`
	Gold  int        `json:"gold"`
	Items []LootItem `json:"items,omitempty"`
}

// LevelMultiplier is 1 + 0.1 per level the character is above the opponent,
// floored at MinRewardMultiplier.
func LevelMultiplier(characterLevel, opponentLevel int) float64 {
	return math.Max(MinRewardMultiplier, 1+float64(characterLevel-opponentLevel)*0.1)
}

// ScaleReward applies mult to base and floors the result at 1.
func ScaleReward(base int, mult float64) int {
	return max(1, int(math.Floor(float64(base)*mult)))
}

// Rewards computes the reward for defeating e at characterLevel.
//
// Base xp is e.XPReward, or a tenth of e.HP when unset. Base gold is rolled
// from the loot currency range, or twice e.Attack when the table has none.
// Items roll from e.Loot, or DefaultLoot when e has no loot table.
//
// Precondition: src must be non-nil.
// Postcondition: XP >= 1 and Gold >= 1.
func Rewards(e Enemy, characterLevel int, src dice.Source) Reward {
	mult := LevelMultiplier(characterLevel, e.Level)

	baseXP := e.XPReward
	if baseXP <= 0 {
		baseXP = e.HP / 10
	}

	table := DefaultLoot
	if e.Loot != nil {
		table = *e.Loot
	}
	loot := GenerateLoot(table, src)

	baseGold := loot.Currency
	if table.Currency == nil {
		baseGold = e.Attack * 2
	}

	return Reward{
		XP:    ScaleReward(baseXP, mult),
		Gold:  ScaleReward(baseGold, mult),
		Items: loot.Items,
	}
}
