package leveling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/leveling"
)

func TestXPForLevel(t *testing.T) {
	tests := []struct{ level, want int }{
		{1, 100}, {2, 282}, {3, 519}, {4, 800}, {10, 3162},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, leveling.XPForLevel(tc.level), "level %d", tc.level)
	}
}

func TestCumulativeXP(t *testing.T) {
	assert.Equal(t, 0, leveling.CumulativeXP(1))
	assert.Equal(t, 100, leveling.CumulativeXP(2))
	assert.Equal(t, 382, leveling.CumulativeXP(3))
	assert.Equal(t, 901, leveling.CumulativeXP(4))
}

func TestCumulativeXP_Property_StrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 200).Draw(rt, "level")
		assert.Less(rt, leveling.CumulativeXP(level), leveling.CumulativeXP(level+1))
	})
}

func TestAddXP_WarriorGainsLevelsAndHP(t *testing.T) {
	curve := leveling.DefaultCurve()
	base := curve.BaseStats(character.Warrior, 1)

	res := curve.AddXP(1, 0, 500, character.Warrior, base)

	assert.Greater(t, res.LevelsGained, 0)
	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, 1, res.OldLevel)
	assert.Equal(t, 500, res.TotalXP)
	require.NotNil(t, res.NewStats)
	assert.Greater(t, res.NewStats.HP, base.HP)
	// flat 20 + warrior 20 per level, two levels
	assert.InDelta(t, base.HP+80, res.NewStats.HP, 1e-9)
	assert.Equal(t, base.Strength+4, res.NewStats.Strength)
	assert.InDelta(t, base.Defense+3, res.NewStats.Defense, 1e-9)
}

func TestAddXP_NoLevelUpLeavesStatsNil(t *testing.T) {
	curve := leveling.DefaultCurve()
	res := curve.AddXP(1, 0, 99, character.Mage, curve.BaseStats(character.Mage, 1))
	assert.False(t, res.LeveledUp())
	assert.Nil(t, res.NewStats)
	assert.Equal(t, 99, res.TotalXP)
	assert.Equal(t, 1, res.NewLevel)
}

func TestAddXP_ClampsAtMaxLevel(t *testing.T) {
	curve := leveling.DefaultCurve()
	res := curve.AddXP(1, 0, 1<<40, character.Rogue, curve.BaseStats(character.Rogue, 1))
	assert.Equal(t, leveling.DefaultMaxLevel, res.NewLevel)
	assert.Equal(t, leveling.DefaultMaxLevel-1, res.LevelsGained)
	assert.Equal(t, 1<<40, res.TotalXP)
}

func TestAddXP_AtMaxLevelOnlyAccumulatesXP(t *testing.T) {
	curve := leveling.DefaultCurve()
	xp := leveling.CumulativeXP(50)
	res := curve.AddXP(50, xp, 10000, character.Warrior, character.Stats{HP: 1000})
	assert.Equal(t, 50, res.NewLevel)
	assert.Nil(t, res.NewStats)
	assert.Equal(t, xp+10000, res.TotalXP)
}

func TestAddXP_LevelAboveMaxIsClamped(t *testing.T) {
	curve := leveling.DefaultCurve()
	res := curve.AddXP(60, 0, 10, character.Warrior, character.Stats{HP: 500})
	assert.Equal(t, curve.MaxLevel, res.NewLevel)
	assert.Equal(t, 0, res.LevelsGained)
	assert.False(t, res.LeveledUp())
	assert.Nil(t, res.NewStats)
	assert.Equal(t, 10, res.TotalXP)
}

func TestAddXP_NegativeGainIgnored(t *testing.T) {
	curve := leveling.DefaultCurve()
	res := curve.AddXP(2, 150, -100, character.Warrior, character.Stats{})
	assert.Equal(t, 150, res.TotalXP)
	assert.Equal(t, 0, res.XPGained)
}

func TestAddXP_Property_LevelMatchesXP(t *testing.T) {
	curve := leveling.DefaultCurve()
	rapid.Check(t, func(rt *rapid.T) {
		start := rapid.IntRange(0, 200000).Draw(rt, "start_xp")
		gained := rapid.IntRange(0, 500000).Draw(rt, "gained")
		class := rapid.SampledFrom(character.Classes).Draw(rt, "class")
		level := curve.LevelFromXP(start)

		res := curve.AddXP(level, start, gained, class, curve.BaseStats(class, level))

		assert.Equal(rt, curve.LevelFromXP(start+gained), res.NewLevel)
		assert.LessOrEqual(rt, leveling.CumulativeXP(res.NewLevel), res.TotalXP)
		assert.Equal(rt, res.LevelsGained > 0, res.NewStats != nil)
	})
}

func TestApplyGrowth_ClassBonuses(t *testing.T) {
	curve := leveling.DefaultCurve()
	var zero character.Stats

	mage := curve.ApplyGrowth(zero, character.Mage, 1)
	assert.InDelta(t, 30.0, mage.MP, 1e-9)
	assert.Equal(t, 2, mage.Intelligence)

	rogue := curve.ApplyGrowth(zero, character.Rogue, 2)
	assert.InDelta(t, 3.0, rogue.Speed, 1e-9)
	assert.InDelta(t, 0.024, rogue.CritChance, 1e-9)
	assert.Equal(t, 4, rogue.Agility)
}

func TestNewCurve_RejectsUnknownClass(t *testing.T) {
	cfg := config.Default().Game.Leveling
	cfg.ClassBonuses = map[string]config.StatGrowth{"bard": {HP: 1}}
	_, err := leveling.NewCurve(cfg)
	assert.Error(t, err)
}

func TestBaseStats(t *testing.T) {
	curve := leveling.DefaultCurve()

	w := curve.BaseStats(character.Warrior, 1)
	assert.Equal(t, 120.0, w.HP)
	assert.Equal(t, 15.0, w.Attack)
	assert.Equal(t, 9, w.Strength)

	m := curve.BaseStats(character.Mage, 1)
	assert.Equal(t, 100.0, m.HP)
	assert.Equal(t, 9, m.Intelligence)

	r := curve.BaseStats(character.Rogue, 3)
	assert.Equal(t, 140.0, r.HP)
	assert.Equal(t, 11, r.Agility)
}

func TestLevelFromXP(t *testing.T) {
	curve := leveling.DefaultCurve()
	assert.Equal(t, 1, curve.LevelFromXP(0))
	assert.Equal(t, 1, curve.LevelFromXP(99))
	assert.Equal(t, 2, curve.LevelFromXP(100))
	assert.Equal(t, 3, curve.LevelFromXP(900))
	assert.Equal(t, 4, curve.LevelFromXP(901))
}

func TestProgressAndNextLevel(t *testing.T) {
	curve := leveling.DefaultCurve()
	p := curve.Progress(2, 241)
	assert.Equal(t, 141, p.Current)
	assert.Equal(t, 282, p.Required)
	assert.InDelta(t, 50.0, p.Percentage, 0.01)

	assert.Equal(t, 141, curve.XPToNextLevel(2, 241))
	assert.True(t, curve.CanLevelUp(1, 100))
	assert.False(t, curve.CanLevelUp(1, 99))
	assert.False(t, curve.CanLevelUp(50, 1<<40))
	assert.Equal(t, 0, curve.XPToNextLevel(50, 0))
	assert.Equal(t, 100.0, curve.Progress(50, leveling.CumulativeXP(50)).Percentage)
}
