package pve_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/boss"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/pve"
	"github.com/cory-johannsen/arena/internal/storage/memory"
)

// fixedSource returns f from every Float64 draw and i (clamped to n-1) from every Intn draw.
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

// noLuck never crits and never drops optional loot.
var noLuck = fixedSource{f: 0.99}

type harness struct {
	coord   *pve.Coordinator
	chars   *memory.CharacterStore
	battles *memory.BattleStore
	states  *memory.BossStateStore
	wallet  *memory.Wallet
	quests  *memory.QuestLog
}

func hero(id string, level, xp int) *character.Character {
	return &character.Character{
		ID:    id,
		Name:  "Hero",
		Class: character.Warrior,
		Level: level,
		XP:    xp,
		Stats: character.Stats{HP: 100, MP: 30, Attack: 20, Defense: 10},
	}
}

func dummyRegistry(t *testing.T) *npc.Registry {
	t.Helper()
	reg, err := npc.NewRegistry([]*npc.Template{
		{ID: "dummy", Name: "Dummy", HP: 50, Attack: 15, Defense: 5},
		{ID: "goblin", Name: "Goblin", HP: 50, Attack: 12, Defense: 5, XPReward: 5},
	}, "goblin")
	require.NoError(t, err)
	return reg
}

func trainingRoster(t *testing.T) *boss.Roster {
	t.Helper()
	roster, err := boss.NewRoster([]*boss.Template{{
		ID: "training_golem", Name: "Training Golem", Level: 1, MaxHP: 30,
		Attack: 5, EnrageThreshold: 0.5,
		Skills:  []boss.Skill{{Name: "Slam", DamageMultiplier: 1}},
		Rewards: boss.RewardTable{XP: 50, Gold: 20, GuaranteedItems: []string{"golem_core"}},
	}})
	require.NoError(t, err)
	return roster
}

func newHarness(t *testing.T, chars ...*character.Character) *harness {
	t.Helper()
	h := &harness{
		chars:   memory.NewCharacterStore(chars...),
		battles: memory.NewBattleStore(),
		states:  memory.NewBossStateStore(),
		wallet:  memory.NewWallet(),
		quests:  memory.NewQuestLog(),
	}
	coord, err := pve.NewCoordinator(pve.Deps{
		Characters: h.chars,
		Battles:    h.battles,
		BossStates: h.states,
		Quests:     h.quests,
		Rewards:    h.wallet,
		Enemies:    dummyRegistry(t),
		Bosses:     trainingRoster(t),
		Dice:       noLuck,
		Logger:     zap.NewNop(),
		Now:        func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	require.NoError(t, err)
	h.coord = coord
	return h
}
