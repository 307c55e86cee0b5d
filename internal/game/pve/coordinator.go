package pve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/boss"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/keylock"
	"github.com/cory-johannsen/arena/internal/game/leveling"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/skill"
)

// Deps are the collaborators of a Coordinator. Characters, Battles and
// BossStates are required; nil sinks drop their notifications and nil
// content falls back to the embedded defaults.
type Deps struct {
	Characters CharacterStore
	Battles    BattleStore
	BossStates BossStateStore
	Quests     QuestSink
	Rewards    RewardSink

	Curve   *leveling.Curve
	Enemies *npc.Registry
	Spawns  npc.SpawnTable
	Bosses  *boss.Roster

	Dice   dice.Source
	Locks  *keylock.Map
	Logger *zap.Logger
	Now    func() time.Time
}

// Coordinator runs PvE battles. It keeps no battle state between calls; every
// call loads from and saves to its stores.
type Coordinator struct {
	characters CharacterStore
	battles    BattleStore
	bossStates BossStateStore
	quests     QuestSink
	rewards    RewardSink

	curve   *leveling.Curve
	enemies *npc.Registry
	spawns  npc.SpawnTable
	roster  *boss.Roster
	engine  *boss.Engine

	src    dice.Source
	locks  *keylock.Map
	logger *zap.Logger
	now    func() time.Time
}

// NewCoordinator builds a Coordinator from d.
//
// Precondition: d.Characters, d.Battles and d.BossStates must be non-nil.
// Postcondition: Returns a ready Coordinator or an error naming the missing dependency.
func NewCoordinator(d Deps) (*Coordinator, error) {
	if d.Characters == nil || d.Battles == nil || d.BossStates == nil {
		return nil, errors.New("pve: characters, battles and boss states stores are required")
	}
	c := &Coordinator{
		characters: d.Characters,
		battles:    d.Battles,
		bossStates: d.BossStates,
		quests:     d.Quests,
		rewards:    d.Rewards,
		curve:      d.Curve,
		enemies:    d.Enemies,
		spawns:     d.Spawns,
		roster:     d.Bosses,
		src:        d.Dice,
		locks:      d.Locks,
		logger:     d.Logger,
		now:        d.Now,
	}
	if c.curve == nil {
		c.curve = leveling.DefaultCurve()
	}
	if c.enemies == nil {
		c.enemies = npc.DefaultRegistry()
	}
	if c.spawns == nil {
		spawns, err := npc.LoadSpawnTable("")
		if err != nil {
			return nil, fmt.Errorf("pve: %w", err)
		}
		c.spawns = spawns
	}
	if c.roster == nil {
		c.roster = boss.DefaultRoster()
	}
	if c.src == nil {
		c.src = dice.NewCryptoSource()
	}
	if c.locks == nil {
		c.locks = keylock.New()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.engine = boss.NewEngine(c.src, c.logger.Named("boss"))
	return c, nil
}

// StartBattle creates a skirmish between the character and an enemy of
// enemyType scaled to enemyLevel. Unknown enemy types use the default
// template; enemyLevel <= 0 picks a level near the character's.
//
// Postcondition: The returned battle is persisted, unresolved, at turn 1.
func (c *Coordinator) StartBattle(ctx context.Context, characterID, enemyType string, enemyLevel int) (*Battle, error) {
	ch, err := c.characters.Load(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("loading character %s: %w", characterID, err)
	}

	level := enemyLevel
	if level <= 0 {
		level = npc.RollLevel(c.src, ch.Level)
	}
	enemy := c.enemies.Resolve(enemyType).Scale(level)

	now := c.now()
	b := &Battle{
		ID:          uuid.NewString(),
		CharacterID: ch.ID,
		Enemy:       enemy,
		State: State{
			Turn:        1,
			CharacterHP: int(ch.Stats.HP),
			CharacterMP: int(ch.Stats.MP),
			EnemyHP:     enemy.HP,
			Log:         []string{fmt.Sprintf("Battle started! %s appears!", enemy.Name)},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.battles.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("creating battle: %w", err)
	}

	c.logger.Info("battle started",
		zap.String("battle_id", b.ID),
		zap.String("character_id", ch.ID),
		zap.String("enemy", enemy.Name),
		zap.Int("enemy_level", enemy.Level),
	)
	return b, nil
}

// GetBattle returns the stored battle.
func (c *Coordinator) GetBattle(ctx context.Context, battleID string) (*Battle, error) {
	return c.battles.Load(ctx, battleID)
}

// TakeTurn resolves one turn of a skirmish. Run ends the battle as FLED.
// Attack and skill strike the enemy once and, if it survives, take one
// retaliation hit. A skill the character cannot afford returns an in-band
// NotEnoughMP result without changing the battle.
//
// On WIN the battle is saved as resolved before rewards are delivered; a
// delivery failure returns the result together with an error wrapping
// ErrRewardDelivery.
//
// Precondition: action is attack, skill or run, and skill names a skillID;
// otherwise ErrInvalidAction.
// Postcondition: A resolved battle is never advanced; ErrBattleResolved is returned instead.
func (c *Coordinator) TakeTurn(ctx context.Context, battleID string, action combat.Action, skillID string) (*TurnResult, error) {
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

	b, err := c.battles.Load(ctx, battleID)
	if err != nil {
		return nil, fmt.Errorf("loading battle %s: %w", battleID, err)
	}
	if b.Resolved() {
		return nil, fmt.Errorf("battle %s: %w", battleID, ErrBattleResolved)
	}
	ch, err := c.characters.Load(ctx, b.CharacterID)
	if err != nil {
		return nil, fmt.Errorf("loading character %s: %w", b.CharacterID, err)
	}

	next := b.Clone()
	next.UpdatedAt = c.now()

	if action == combat.ActionRun {
		next.Result = combat.Fled
		next.Score = combat.BattleScore(ch.Level, b.Enemy.Level, combat.Fled)
		next.State.Log = append(next.State.Log, fmt.Sprintf("%s fled from battle!", ch.DisplayName()))
		if err := c.battles.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("saving battle %s: %w", battleID, err)
		}
		c.logResolved(next)
		return &TurnResult{Battle: next, Result: combat.Fled, Message: "Successfully fled from battle"}, nil
	}

	sk := skill.Neutral("attack")
	if action == combat.ActionSkill {
		sk = skill.Lookup(ch.Class, skillID)
	}
	if b.State.CharacterMP < sk.MPCost {
		return &TurnResult{Battle: b, Skill: sk, NotEnoughMP: true, Message: "Not enough MP"}, nil
	}

	res := &TurnResult{Battle: next, Skill: sk, MPUsed: sk.MPCost}
	enemyStats := b.Enemy.Stats()

	res.Crit = combat.IsCriticalHit(c.src, ch.Stats.CritChance+sk.CritBonus)
	res.Damage = combat.CalculateDamage(ch.Stats, enemyStats, sk.DamageMultiplier, res.Crit)
	next.State.CharacterMP -= sk.MPCost
	next.State.EnemyHP = combat.ApplyDamage(next.State.EnemyHP, res.Damage)

	line := fmt.Sprintf("%s attacks for %d damage", ch.DisplayName(), res.Damage)
	if action == combat.ActionSkill {
		line = fmt.Sprintf("%s casts %s for %d damage", ch.DisplayName(), sk.Name, res.Damage)
	}
	if res.Crit {
		line += " (Critical Hit!)"
	}
	next.State.Log = append(next.State.Log, line)

	if next.State.EnemyHP == 0 {
		next.Result = combat.Win
		next.State.Log = append(next.State.Log, fmt.Sprintf("%s is defeated!", b.Enemy.Name))
	} else {
		res.EnemyCrit = combat.IsCriticalHit(c.src, b.Enemy.CritChance)
		res.EnemyDamage = combat.CalculateDamage(enemyStats, ch.Stats, 1.0, res.EnemyCrit)
		next.State.CharacterHP = combat.ApplyDamage(next.State.CharacterHP, res.EnemyDamage)
		next.State.Log = append(next.State.Log, fmt.Sprintf("%s deals %d damage to %s", b.Enemy.Name, res.EnemyDamage, ch.DisplayName()))
		if next.State.CharacterHP == 0 {
			next.Result = combat.Lose
			next.State.Log = append(next.State.Log, fmt.Sprintf("%s is defeated!", ch.DisplayName()))
		}
	}
	next.State.Turn++

	if next.Result == combat.Win {
		reward := npc.Rewards(b.Enemy, ch.Level, c.src)
		next.Rewards = &reward
		res.Rewards = &reward
	}
	if next.Resolved() {
		next.Score = combat.BattleScore(ch.Level, b.Enemy.Level, next.Result)
	}
	res.Result = next.Result

	if err := c.battles.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("saving battle %s: %w", battleID, err)
	}

	c.logger.Debug("turn resolved",
		zap.String("battle_id", battleID),
		zap.Int("turn", b.State.Turn),
		zap.Int("damage", res.Damage),
		zap.Int("enemy_damage", res.EnemyDamage),
		zap.Int("enemy_hp", next.State.EnemyHP),
		zap.Int("character_hp", next.State.CharacterHP),
	)

	if !next.Resolved() {
		return res, nil
	}
	c.logResolved(next)
	if next.Result != combat.Win {
		return res, nil
	}

	levelUp, err := c.deliver(ctx, b.CharacterID, *next.Rewards)
	res.LevelUp = levelUp
	c.notifyKill(ctx, b.CharacterID, b.Enemy.Name)
	if err != nil {
		return res, fmt.Errorf("battle %s: %w: %w", battleID, ErrRewardDelivery, err)
	}
	return res, nil
}

// SpawnEnemy rolls a wilderness encounter for area near characterLevel.
//
// Postcondition: ok is false when nothing spawns.
func (c *Coordinator) SpawnEnemy(area string, characterLevel int) (npc.Spawn, bool) {
	return c.spawns.Roll(c.src, area, characterLevel)
}

// AvailableEnemies lists the spawn entries within reach of characterLevel.
func (c *Coordinator) AvailableEnemies(characterLevel int) []npc.Spawn {
	return c.spawns.Available(characterLevel)
}

func (c *Coordinator) logResolved(b *Battle) {
	fields := []zap.Field{
		zap.String("battle_id", b.ID),
		zap.String("character_id", b.CharacterID),
		zap.String("enemy", b.Enemy.Name),
		zap.String("result", string(b.Result)),
		zap.Int("score", b.Score),
	}
	if b.Rewards != nil {
		fields = append(fields, zap.Int("xp", b.Rewards.XP), zap.Int("gold", b.Rewards.Gold))
	}
	c.logger.Info("battle resolved", fields...)
}
