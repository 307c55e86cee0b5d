package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

func TestCalculateDamage(t *testing.T) {
	atk := character.Stats{Attack: 20}
	def := character.Stats{Defense: 5}

	assert.Equal(t, 17, combat.CalculateDamage(atk, def, 1.0, false))
	assert.Equal(t, 37, combat.CalculateDamage(atk, def, 1.0, true))
	assert.Equal(t, 27, combat.CalculateDamage(atk, def, 1.5, false))
}

func TestCalculateDamage_FloorsAtOne(t *testing.T) {
	atk := character.Stats{Attack: 2}
	def := character.Stats{Defense: 100}
	assert.Equal(t, 1, combat.CalculateDamage(atk, def, 1.0, false))
	assert.Equal(t, 1, combat.CalculateDamage(atk, def, 0, false))
}

func TestCalculateDamage_Property_NeverBelowOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		atk := character.Stats{Attack: rapid.Float64Range(0, 10000).Draw(rt, "attack")}
		def := character.Stats{Defense: rapid.Float64Range(0, 10000).Draw(rt, "defense")}
		mult := rapid.Float64Range(0, 5).Draw(rt, "multiplier")
		crit := rapid.Bool().Draw(rt, "crit")
		assert.GreaterOrEqual(rt, combat.CalculateDamage(atk, def, mult, crit), 1)
	})
}

func TestCalculateDamage_Property_CritNeverWeaker(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		atk := character.Stats{Attack: rapid.Float64Range(0, 500).Draw(rt, "attack")}
		def := character.Stats{Defense: rapid.Float64Range(0, 500).Draw(rt, "defense")}
		normal := combat.CalculateDamage(atk, def, 1, false)
		crit := combat.CalculateDamage(atk, def, 1, true)
		assert.GreaterOrEqual(rt, crit, normal)
	})
}

func TestIsCriticalHit_Certainties(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 2000; i++ {
		require.True(t, combat.IsCriticalHit(src, 1.0))
		require.False(t, combat.IsCriticalHit(src, 0.0))
	}
}

func TestIsCriticalHit_OverOneAlwaysCrits(t *testing.T) {
	src := dice.NewSeededSource(11)
	for i := 0; i < 500; i++ {
		assert.True(t, combat.IsCriticalHit(src, 1.5))
	}
}

func TestApplyDamage(t *testing.T) {
	assert.Equal(t, 13, combat.ApplyDamage(18, 5))
	assert.Equal(t, 0, combat.ApplyDamage(18, 20))
}

func TestApplyDamage_Property_NeverBelowZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hp := rapid.IntRange(0, 500).Draw(rt, "hp")
		dmg := rapid.IntRange(0, 1000).Draw(rt, "dmg")
		assert.GreaterOrEqual(rt, combat.ApplyDamage(hp, dmg), 0)
	})
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"attack", "SKILL", " run "} {
		_, err := combat.ParseAction(s)
		assert.NoError(t, err, s)
	}
	_, err := combat.ParseAction("item")
	assert.Error(t, err)
}

func TestBattleScore(t *testing.T) {
	assert.Equal(t, 24, combat.BattleScore(5, 3, combat.Win))
	assert.Equal(t, 16, combat.BattleScore(3, 5, combat.Win))
	assert.Equal(t, -24, combat.BattleScore(3, 5, combat.Lose))
	assert.Equal(t, -5, combat.BattleScore(3, 5, combat.Fled))
	assert.Equal(t, 0, combat.BattleScore(3, 5, combat.Unresolved))
}

func TestResult_Resolved(t *testing.T) {
	assert.False(t, combat.Unresolved.Resolved())
	for _, r := range []combat.Result{combat.Win, combat.Lose, combat.Fled} {
		assert.True(t, r.Resolved())
	}
}
