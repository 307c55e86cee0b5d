package pve

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/boss"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/leveling"
	"github.com/cory-johannsen/arena/internal/game/npc"
)

// StartBossBattle opens an encounter between the character and bossID.
//
// Postcondition: The returned state is persisted at turn 1 with both sides at full hp.
func (c *Coordinator) StartBossBattle(ctx context.Context, characterID, bossID string) (*boss.BattleState, error) {
	tmpl, ok := c.roster.Get(bossID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBossNotFound, bossID)
	}
	ch, err := c.characters.Load(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("loading character %s: %w", characterID, err)
	}

	state := c.engine.NewBattle(uuid.NewString(), ch, tmpl)
	if err := c.bossStates.Create(ctx, state); err != nil {
		return nil, fmt.Errorf("creating boss battle: %w", err)
	}
	c.logger.Info("boss battle started",
		zap.String("battle_id", state.ID),
		zap.String("character_id", ch.ID),
		zap.String("boss_id", tmpl.ID),
	)
	return state, nil
}

// GetBossBattle returns the in-progress boss state.
func (c *Coordinator) GetBossBattle(ctx context.Context, battleID string) (*boss.BattleState, error) {
	return c.bossStates.Load(ctx, battleID)
}

// Bosses lists the boss roster ordered by level.
func (c *Coordinator) Bosses() []*boss.Template {
	return c.roster.All()
}

// TakeBossTurn resolves one boss round: the character's attack or skill, then
// the boss's turn if it is still standing. Run abandons the encounter as FLED.
// When either side falls the encounter is completed in the same call.
//
// Precondition: action is attack, skill or run, and skill names a skillID;
// otherwise ErrInvalidAction.
func (c *Coordinator) TakeBossTurn(ctx context.Context, battleID string, action combat.Action, skillID string) (*BossTurnResult, error) {
	switch action {
	case combat.ActionAttack, combat.ActionSkill, combat.ActionRun:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if action == combat.ActionSkill && skillID == "" {
		return nil, fmt.Errorf("%w: skill requires a skill id", ErrInvalidAction)
	}

	unlock := c.locks.Lock(battleID)
	defer unlock()

	state, err := c.bossStates.Load(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("loading boss battle %s: %w", battleID, err)
	}
	if boss.Finished(state) {
		return nil, fmt.Errorf("boss battle %s: %w", battleID, ErrBattleResolved)
	}
	tmpl, ok := c.roster.Get(state.BossID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBossNotFound, state.BossID)
	}

	if action == combat.ActionRun {
		next := state.Clone()
		next.Log = append(next.Log, fmt.Sprintf("%s fled from battle!", next.CharacterName))
		record, err := c.closeBossBattle(ctx, tmpl, next, combat.Fled, nil)
		if err != nil {
			return nil, err
		}
		return &BossTurnResult{State: next, Result: combat.Fled, Battle: record}, nil
	}

	ch, err := c.characters.Load(ctx, state.CharacterID)
	if err != nil {
		return nil, fmt.Errorf("loading character %s: %w", state.CharacterID, err)
	}

	next, strike, err := c.engine.CharacterStrike(tmpl, state, ch.Stats, ch.Class, action, skillID)
	if err != nil {
		return nil, err
	}
	if strike.NotEnoughMP {
		return &BossTurnResult{State: state, Strike: strike, NotEnoughMP: true}, nil
	}
	if !boss.BossDefeated(next) {
		next = c.engine.ExecuteTurn(tmpl, next)
	}
	if err := c.bossStates.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("saving boss battle %s: %w", battleID, err)
	}

	res := &BossTurnResult{State: next, Strike: strike}
	if !boss.Finished(next) {
		return res, nil
	}
	res.Result, res.Battle, res.Rewards, res.LevelUp, err = c.completeBoss(ctx, tmpl, next)
	return res, err
}

// CompleteBossBattle records a finished encounter as a terminal battle,
// delivers rewards on WIN and removes the in-progress state.
//
// Precondition: the stored state has one side at 0 hp; otherwise ErrBattleNotFinished.
// Postcondition: A second call for the same id returns ErrBattleNotFound.
func (c *Coordinator) CompleteBossBattle(ctx context.Context, battleID string) (*Battle, error) {
	unlock := c.locks.Lock(battleID)
	defer unlock()

	state, err := c.bossStates.Load(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("loading boss battle %s: %w", battleID, err)
	}
	tmpl, ok := c.roster.Get(state.BossID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBossNotFound, state.BossID)
	}
	_, record, _, _, err := c.completeBoss(ctx, tmpl, state)
	return record, err
}

func (c *Coordinator) completeBoss(ctx context.Context, tmpl *boss.Template, state *boss.BattleState) (combat.Result, *Battle, *npc.Reward, *leveling.Result, error) {
	var result combat.Result
	switch {
	case boss.BossDefeated(state):
		result = combat.Win
	case boss.CharacterDefeated(state):
		result = combat.Lose
	default:
		return combat.Unresolved, nil, nil, nil, fmt.Errorf("boss battle %s: %w", state.ID, ErrBattleNotFinished)
	}

	var reward *npc.Reward
	if result == combat.Win {
		r := boss.Rewards(tmpl, state.CharacterLevel, c.src)
		reward = &r
	}
	record, err := c.closeBossBattle(ctx, tmpl, state, result, reward)
	if err != nil {
		return result, nil, nil, nil, err
	}
	if result != combat.Win {
		return result, record, nil, nil, nil
	}

	levelUp, err := c.deliver(ctx, state.CharacterID, *reward)
	c.notifyKill(ctx, state.CharacterID, tmpl.Name)
	if err != nil {
		return result, record, reward, levelUp, fmt.Errorf("boss battle %s: %w: %w", state.ID, ErrRewardDelivery, err)
	}
	return result, record, reward, levelUp, nil
}

// closeBossBattle persists the terminal record and drops the in-progress state.
func (c *Coordinator) closeBossBattle(ctx context.Context, tmpl *boss.Template, state *boss.BattleState, result combat.Result, reward *npc.Reward) (*Battle, error) {
	now := c.now()
	record := &Battle{
		ID:          state.ID,
		CharacterID: state.CharacterID,
		Enemy: npc.Enemy{
			TemplateID: tmpl.ID,
			Name:       tmpl.Name,
			Level:      tmpl.Level,
			HP:         tmpl.MaxHP,
			Attack:     int(tmpl.Attack),
			Defense:    int(tmpl.Defense),
			Speed:      tmpl.Speed,
		},
		State: State{
			Turn:        state.Turn,
			CharacterHP: state.CharacterHP,
			CharacterMP: state.CharacterMP,
			EnemyHP:     state.BossHP,
			Log:         append([]string(nil), state.Log...),
		},
		Result:    result,
		Rewards:   reward,
		Score:     combat.BattleScore(state.CharacterLevel, tmpl.Level, result),
		BossID:    tmpl.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.battles.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("recording boss battle %s: %w", state.ID, err)
	}
	if err := c.bossStates.Delete(ctx, state.ID); err != nil {
		return nil, fmt.Errorf("closing boss battle %s: %w", state.ID, err)
	}
	c.logResolved(record)
	return record, nil
}
