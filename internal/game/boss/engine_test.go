package boss_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/boss"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

type fixedSource struct {
	f float64
	i int
}

func (s fixedSource) Intn(n int) int {
	if s.i >= n {
		return n - 1
	}
	return s.i
}

func (s fixedSource) Float64() float64 { return s.f }

func hero() *character.Character {
	return &character.Character{
		ID:    "c1",
		Name:  "Aria",
		Class: character.Warrior,
		Level: 5,
		Stats: character.Stats{HP: 500, MP: 60, Attack: 40, Defense: 10, CritChance: 0},
	}
}

func goblinChief(t *testing.T) *boss.Template {
	t.Helper()
	tmpl, ok := boss.DefaultRoster().Get("goblin_chief")
	require.True(t, ok)
	return tmpl
}

func TestNewBattle(t *testing.T) {
	e := boss.NewEngine(fixedSource{}, zap.NewNop())
	tmpl := goblinChief(t)
	s := e.NewBattle("b1", hero(), tmpl)
	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, 1500, s.BossHP)
	assert.Equal(t, 500, s.CharacterHP)
	assert.Equal(t, 60, s.CharacterMP)
	assert.False(t, s.Enraged)
	assert.Equal(t, []string{"Boss battle started! Goblin Chief appears!"}, s.Log)
}

func TestExecuteTurn_EnragesBelowThreshold(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.99}, zap.NewNop())
	tmpl := goblinChief(t)
	require.GreaterOrEqual(t, tmpl.EnrageThreshold, 0.4)

	s := e.NewBattle("b1", hero(), tmpl)
	s.BossHP = int(float64(s.BossMaxHP) * 0.4)

	next := e.ExecuteTurn(tmpl, s)
	assert.True(t, next.Enraged)
	assert.False(t, s.Enraged, "input state must not be modified")
	assert.Contains(t, next.Log, "Goblin Chief enters an enraged state! Attack power increased!")
}

func TestExecuteTurn_NoEnrageAboveThreshold(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.99}, zap.NewNop())
	tmpl := goblinChief(t)
	s := e.NewBattle("b1", hero(), tmpl)
	next := e.ExecuteTurn(tmpl, s)
	assert.False(t, next.Enraged)
}

func TestExecuteTurn_SkillDamageAndImmutability(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.99, i: 0}, zap.NewNop())
	tmpl := goblinChief(t)
	s := e.NewBattle("b1", hero(), tmpl)

	next := e.ExecuteTurn(tmpl, s)
	// Smash: floor(45 * 1.5 - 10) = 57
	assert.Equal(t, 500-57, next.CharacterHP)
	assert.Equal(t, 2, next.Turn)
	assert.Equal(t, 500, s.CharacterHP)
	assert.Equal(t, 1, s.Turn)
	assert.Len(t, s.Log, 1)
	assert.Equal(t, "Goblin Chief uses Smash for 57 damage!", next.Log[len(next.Log)-1])
}

func TestExecuteTurn_EnragedDamageBonus(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.99, i: 0}, zap.NewNop())
	tmpl := goblinChief(t)
	s := e.NewBattle("b1", hero(), tmpl)
	s.Enraged = true
	s.BossHP = 1000

	next := e.ExecuteTurn(tmpl, s)
	// Smash enraged: floor(45 * 1.5 * 1.2 - 10) = 71
	assert.Equal(t, 500-71, next.CharacterHP)
}

func TestExecuteTurn_CooldownSetAfterUse(t *testing.T) {
	// Index 1 of the non-Enrage skills is Roar (cooldown 3).
	e := boss.NewEngine(fixedSource{f: 0.99, i: 1}, zap.NewNop())
	tmpl := goblinChief(t)
	s := e.NewBattle("b1", hero(), tmpl)

	next := e.ExecuteTurn(tmpl, s)
	assert.Equal(t, 3, next.Cooldowns["Roar"])

	after := e.ExecuteTurn(tmpl, next)
	assert.Equal(t, 2, after.Cooldowns["Roar"], "nonzero cooldowns tick down each turn")
	assert.Equal(t, "Goblin Chief uses Smash for 57 damage!", after.Log[len(after.Log)-1], "Roar on cooldown leaves Smash")
}

func TestExecuteTurn_PlainAttackWhenAllOnCooldown(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.99}, zap.NewNop())
	tmpl, ok := boss.DefaultRoster().Get("dragon_guardian")
	require.True(t, ok)
	s := e.NewBattle("b1", hero(), tmpl)
	s.Cooldowns = map[string]int{"Stone Slam": 1, "Earthquake": 2}

	next := e.ExecuteTurn(tmpl, s)
	// floor(80 - 10) = 70
	assert.Equal(t, 500-70, next.CharacterHP)
	assert.Equal(t, "Dragon's Guardian attacks for 70 damage!", next.Log[len(next.Log)-1])
	assert.Equal(t, 0, next.Cooldowns["Stone Slam"])
	assert.Equal(t, 1, next.Cooldowns["Earthquake"])
}

func TestExecuteTurn_PrefersEnrageAtLowHP(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.99}, zap.NewNop())
	tmpl, ok := boss.DefaultRoster().Get("dragon_lord")
	require.True(t, ok)
	s := e.NewBattle("b1", hero(), tmpl)
	s.BossHP = int(float64(s.BossMaxHP) * 0.15)

	next := e.ExecuteTurn(tmpl, s)
	assert.True(t, next.Enraged)
	assert.Equal(t, 500, next.CharacterHP, "Enrage deals no damage")
	assert.Contains(t, next.Log, "Dragon Lord enters an enraged state! Attack power increased!")
}

func TestExecuteTurn_StunIsNarratedOnly(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.0, i: 1}, zap.NewNop())
	tmpl := goblinChief(t)
	s := e.NewBattle("b1", hero(), tmpl)

	next := e.ExecuteTurn(tmpl, s)
	assert.Contains(t, next.Log, "Aria is stunned!")
	// Roar: floor(45 * 0.3 - 10) = 3
	assert.Equal(t, 497, next.CharacterHP)
}

func TestExecuteTurn_TurnCountCondition(t *testing.T) {
	tmpl := &boss.Template{
		ID: "x", Name: "X", Level: 1, MaxHP: 100, Attack: 20,
		Skills: []boss.Skill{
			{Name: "Finisher", DamageMultiplier: 3, Condition: boss.Condition{TurnCount: 3}},
		},
	}
	e := boss.NewEngine(fixedSource{f: 0.99}, zap.NewNop())
	s := e.NewBattle("b1", hero(), tmpl)

	t1 := e.ExecuteTurn(tmpl, s)
	assert.Equal(t, 500-10, t1.CharacterHP, "turn 1 falls back to a plain attack")
	t2 := e.ExecuteTurn(tmpl, t1)
	t3 := e.ExecuteTurn(tmpl, t2)
	assert.Equal(t, t2.CharacterHP-50, t3.CharacterHP, "Finisher unlocks on turn 3")
}

func TestProperty_ExecuteTurn_NeverNegativeHP(t *testing.T) {
	roster := boss.DefaultRoster()
	rapid.Check(t, func(rt *rapid.T) {
		tmpl := rapid.SampledFrom(roster.All()).Draw(rt, "boss")
		seed := rapid.Uint64().Draw(rt, "seed")
		e := boss.NewEngine(dice.NewSeededSource(seed), zap.NewNop())
		c := hero()
		c.Stats.HP = float64(rapid.IntRange(1, 400).Draw(rt, "hp"))
		s := e.NewBattle("b", c, tmpl)
		s.BossHP = rapid.IntRange(1, tmpl.MaxHP).Draw(rt, "bossHP")
		for i := 0; i < 10 && !boss.CharacterDefeated(s); i++ {
			prev := s.CharacterHP
			s = e.ExecuteTurn(tmpl, s)
			if s.CharacterHP < 0 || s.CharacterHP > prev {
				rt.Fatalf("character hp %d -> %d", prev, s.CharacterHP)
			}
		}
	})
}

func TestCharacterStrike_Attack(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.99}, zap.NewNop())
	tmpl := goblinChief(t)
	c := hero()
	s := e.NewBattle("b1", c, tmpl)

	next, strike, err := e.CharacterStrike(tmpl, s, c.Stats, c.Class, combat.ActionAttack, "")
	require.NoError(t, err)
	// floor(40 - 20 * 0.5) = 30
	assert.Equal(t, 30, strike.Damage)
	assert.Equal(t, 1470, next.BossHP)
	assert.Equal(t, 1500, s.BossHP)
}

func TestCharacterStrike_SkillSpendsMP(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.99}, zap.NewNop())
	tmpl := goblinChief(t)
	c := hero()
	s := e.NewBattle("b1", c, tmpl)

	next, strike, err := e.CharacterStrike(tmpl, s, c.Stats, c.Class, combat.ActionSkill, "shield_slam")
	require.NoError(t, err)
	// floor(40 * 1.2 - 10) = 38
	assert.Equal(t, 38, strike.Damage)
	assert.Equal(t, 50, next.CharacterMP)
}

func TestCharacterStrike_NotEnoughMP(t *testing.T) {
	e := boss.NewEngine(fixedSource{f: 0.99}, zap.NewNop())
	tmpl := goblinChief(t)
	c := hero()
	s := e.NewBattle("b1", c, tmpl)
	s.CharacterMP = 5

	next, strike, err := e.CharacterStrike(tmpl, s, c.Stats, c.Class, combat.ActionSkill, "whirlwind")
	require.NoError(t, err)
	assert.True(t, strike.NotEnoughMP)
	assert.Equal(t, 0, strike.Damage)
	assert.Same(t, s, next)
}

func TestCharacterStrike_RejectsRun(t *testing.T) {
	e := boss.NewEngine(fixedSource{}, zap.NewNop())
	tmpl := goblinChief(t)
	c := hero()
	_, _, err := e.CharacterStrike(tmpl, e.NewBattle("b", c, tmpl), c.Stats, c.Class, combat.ActionRun, "")
	assert.ErrorIs(t, err, boss.ErrUnsupportedAction)
}

func TestDefeatChecks(t *testing.T) {
	s := &boss.BattleState{BossHP: 0, CharacterHP: 10}
	assert.True(t, boss.BossDefeated(s))
	assert.False(t, boss.CharacterDefeated(s))
	assert.True(t, boss.Finished(s))
}

func TestRewards(t *testing.T) {
	tmpl := goblinChief(t)

	r := boss.Rewards(tmpl, 5, fixedSource{f: 0.99})
	assert.Equal(t, 250, r.XP)
	assert.Equal(t, 100, r.Gold)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "rare_weapon", r.Items[0].ItemID)

	lucky := boss.Rewards(tmpl, 7, fixedSource{f: 0.0})
	assert.Equal(t, 300, lucky.XP)
	assert.Equal(t, 120, lucky.Gold)
	assert.Len(t, lucky.Items, 3)

	low := boss.Rewards(tmpl, 1, fixedSource{f: 0.99})
	// multiplier 1 + (1-5)*0.1 = 0.6
	assert.Equal(t, 150, low.XP)
}
