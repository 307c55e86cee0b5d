package pve_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/pve"
	"github.com/cory-johannsen/arena/internal/game/quest"
)

func TestNewCoordinator_RequiresStores(t *testing.T) {
	_, err := pve.NewCoordinator(pve.Deps{})
	assert.Error(t, err)
}

func TestStartBattle_UnknownCharacter(t *testing.T) {
	h := newHarness(t)
	_, err := h.coord.StartBattle(context.Background(), "ghost", "dummy", 1)
	assert.Error(t, err)
}

func TestStartBattle_UnknownEnemyFallsBackToGoblin(t *testing.T) {
	h := newHarness(t, hero("c1", 1, 0))
	b, err := h.coord.StartBattle(context.Background(), "c1", "chimera", 1)
	require.NoError(t, err)
	assert.Equal(t, "goblin", b.Enemy.TemplateID)
	assert.Equal(t, 1, b.State.Turn)
	assert.Equal(t, combat.Unresolved, b.Result)
	assert.Equal(t, b.Enemy.HP, b.State.EnemyHP)
}

func TestTakeTurn_AttackUntilWin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 0))
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	prevHP := b.State.EnemyHP
	var last *pve.TurnResult
	for i := 0; i < 10; i++ {
		last, err = h.coord.TakeTurn(ctx, b.ID, combat.ActionAttack, "")
		require.NoError(t, err)
		assert.Less(t, last.Battle.State.EnemyHP, prevHP)
		prevHP = last.Battle.State.EnemyHP
		if last.Result.Resolved() {
			break
		}
		assert.Equal(t, 17, last.Damage)
		assert.Equal(t, 10, last.EnemyDamage)
	}

	require.Equal(t, combat.Win, last.Result)
	assert.Equal(t, 0, last.Battle.State.EnemyHP)
	assert.Equal(t, 80, last.Battle.State.CharacterHP)
	assert.Equal(t, 4, last.Battle.State.Turn)
	require.NotNil(t, last.Rewards)
	assert.Greater(t, last.Rewards.XP, 0)
	assert.Greater(t, last.Rewards.Gold, 0)
	assert.Equal(t, 20, last.Battle.Score)

	assert.Equal(t, last.Rewards.Gold, h.wallet.Gold("c1"))
	c, err := h.chars.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, last.Rewards.XP, c.XP)

	stored, err := h.coord.GetBattle(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, combat.Win, stored.Result)
}

func TestTakeTurn_ResolvedBattleRejectsFurtherTurns(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 0))
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	_, err = h.coord.TakeTurn(ctx, b.ID, combat.ActionRun, "")
	require.NoError(t, err)

	for _, a := range []combat.Action{combat.ActionAttack, combat.ActionSkill, combat.ActionRun} {
		_, err = h.coord.TakeTurn(ctx, b.ID, a, "shield_slam")
		assert.ErrorIs(t, err, pve.ErrBattleResolved)
	}
}

func TestTakeTurn_RunFlees(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 0))
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	res, err := h.coord.TakeTurn(ctx, b.ID, combat.ActionRun, "")
	require.NoError(t, err)
	assert.Equal(t, combat.Fled, res.Result)
	assert.Equal(t, -5, res.Battle.Score)
	assert.Nil(t, res.Battle.Rewards)
	assert.Equal(t, 0, h.wallet.Gold("c1"))
	assert.Empty(t, h.quests.Kills())
}

func TestTakeTurn_InvalidAction(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 0))
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	_, err = h.coord.TakeTurn(ctx, b.ID, combat.Action("item"), "")
	assert.ErrorIs(t, err, pve.ErrInvalidAction)
}

func TestTakeTurn_SkillWithoutIDIsInvalid(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 0))
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	_, err = h.coord.TakeTurn(ctx, b.ID, combat.ActionSkill, "")
	assert.ErrorIs(t, err, pve.ErrInvalidAction)

	stored, err := h.coord.GetBattle(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.State, stored.State)
}

func TestTakeTurn_UnknownBattle(t *testing.T) {
	h := newHarness(t, hero("c1", 1, 0))
	_, err := h.coord.TakeTurn(context.Background(), "missing", combat.ActionAttack, "")
	assert.ErrorIs(t, err, pve.ErrBattleNotFound)
}

func TestTakeTurn_NotEnoughMPLeavesBattleUnchanged(t *testing.T) {
	ctx := context.Background()
	c := hero("c1", 1, 0)
	c.Stats.MP = 5
	h := newHarness(t, c)
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	res, err := h.coord.TakeTurn(ctx, b.ID, combat.ActionSkill, "shield_slam")
	require.NoError(t, err)
	assert.True(t, res.NotEnoughMP)
	assert.Equal(t, "Not enough MP", res.Message)

	stored, err := h.coord.GetBattle(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.State, stored.State)
}

func TestTakeTurn_SkillSpendsMP(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 0))
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	res, err := h.coord.TakeTurn(ctx, b.ID, combat.ActionSkill, "shield_slam")
	require.NoError(t, err)
	assert.Equal(t, 10, res.MPUsed)
	assert.Equal(t, 20, res.Battle.State.CharacterMP)
	// 20*1.2 - 2.5
	assert.Equal(t, 21, res.Damage)
}

func TestTakeTurn_UnknownSkillIsNeutralAttack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 0))
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	res, err := h.coord.TakeTurn(ctx, b.ID, combat.ActionSkill, "meteor")
	require.NoError(t, err)
	assert.Equal(t, 0, res.MPUsed)
	assert.Equal(t, 17, res.Damage)
}

func TestTakeTurn_LoseScoresNegative(t *testing.T) {
	ctx := context.Background()
	c := hero("c1", 1, 0)
	c.Stats.HP = 5
	h := newHarness(t, c)
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	res, err := h.coord.TakeTurn(ctx, b.ID, combat.ActionAttack, "")
	require.NoError(t, err)
	assert.Equal(t, combat.Lose, res.Result)
	assert.Equal(t, 0, res.Battle.State.CharacterHP)
	assert.Equal(t, -20, res.Battle.Score)
	assert.Nil(t, res.Rewards)
}

func TestTakeTurn_WinLevelsUpAndSavesStats(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 95))
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	var res *pve.TurnResult
	for !(res != nil && res.Result.Resolved()) {
		res, err = h.coord.TakeTurn(ctx, b.ID, combat.ActionAttack, "")
		require.NoError(t, err)
	}
	require.NotNil(t, res.LevelUp)
	assert.True(t, res.LevelUp.LeveledUp())
	assert.Equal(t, 2, res.LevelUp.NewLevel)

	c, err := h.chars.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, 100, c.XP)
	assert.Greater(t, c.Stats.HP, 100.0)
}

func TestTakeTurn_WinNotifiesQuestOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 0))
	h.quests.Assign(quest.Assignment{
		QuestID: "cull", CharacterID: "c1", Status: quest.StatusInProgress,
		Objective: quest.Objective{Type: quest.ObjectiveKill, Target: "dummy", Count: 1},
	})
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, resolved := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := h.coord.TakeTurn(ctx, b.ID, combat.ActionAttack, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, pve.ErrBattleResolved):
				resolved++
			case err == nil && res.Result == combat.Win:
				wins++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 7, resolved)
	require.Len(t, h.quests.Kills(), 1)
	assert.Equal(t, "Dummy", h.quests.Kills()[0].Target)
	assert.True(t, h.quests.Assignments("c1")[0].Done())

	stored, err := h.coord.GetBattle(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Rewards.Gold, h.wallet.Gold("c1"))
}

func TestTakeTurn_RewardDeliveryFailureStillResolves(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, hero("c1", 1, 0))
	h.wallet.Fail = errors.New("ledger offline")
	b, err := h.coord.StartBattle(ctx, "c1", "dummy", 1)
	require.NoError(t, err)

	var res *pve.TurnResult
	for i := 0; i < 3; i++ {
		res, err = h.coord.TakeTurn(ctx, b.ID, combat.ActionAttack, "")
	}
	assert.ErrorIs(t, err, pve.ErrRewardDelivery)
	require.NotNil(t, res)
	assert.Equal(t, combat.Win, res.Result)

	_, err = h.coord.TakeTurn(ctx, b.ID, combat.ActionAttack, "")
	assert.ErrorIs(t, err, pve.ErrBattleResolved)
}

func TestSpawnEnemy_UnknownAreaSpawnsNothing(t *testing.T) {
	h := newHarness(t)
	_, ok := h.coord.SpawnEnemy("nowhere", 1)
	assert.False(t, ok)
	assert.NotEmpty(t, h.coord.AvailableEnemies(1))
}
