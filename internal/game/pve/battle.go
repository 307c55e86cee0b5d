// Package pve coordinates player-versus-environment battles: skirmishes
// against scaled enemies and scripted boss encounters.
package pve

import (
	"context"
	"errors"
	"time"

	"github.com/cory-johannsen/arena/internal/game/boss"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/leveling"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/skill"
)

var (
	// ErrBattleNotFound is returned by battle and boss state stores for unknown ids.
	ErrBattleNotFound = errors.New("battle not found")
	// ErrBattleExists is returned by stores when creating a battle whose id is taken.
	ErrBattleExists = errors.New("battle already exists")
	// ErrBattleResolved is returned for any turn on a battle that already has a result.
	ErrBattleResolved = errors.New("battle already resolved")
	// ErrBattleNotFinished is returned when completing a boss battle with both sides standing.
	ErrBattleNotFinished = errors.New("boss battle is not complete")
	// ErrInvalidAction is returned for actions other than attack, skill or run.
	ErrInvalidAction = errors.New("invalid battle action")
	// ErrBossNotFound is returned for unknown boss ids.
	ErrBossNotFound = errors.New("boss not found")
	// ErrRewardDelivery wraps reward sink or character store failures that
	// occur after a battle was saved as resolved. The battle stays resolved.
	ErrRewardDelivery = errors.New("reward delivery failed")
)

// State is the mutable part of a battle.
type State struct {
	Turn        int      `json:"turn"`
	CharacterHP int      `json:"characterHp"`
	CharacterMP int      `json:"characterMp"`
	EnemyHP     int      `json:"enemyHp"`
	Log         []string `json:"log"`
}

// Battle is a PvE battle record. A battle with a non-empty Result is terminal.
type Battle struct {
	ID          string        `json:"id"`
	CharacterID string        `json:"characterId"`
	Enemy       npc.Enemy     `json:"enemy"`
	State       State         `json:"state"`
	Result      combat.Result `json:"result,omitempty"`
	Rewards     *npc.Reward   `json:"rewards,omitempty"`
	Score       int           `json:"score"`
	// BossID is set on terminal records of boss encounters.
	BossID    string    `json:"bossId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of b.
func (b *Battle) Clone() *Battle {
	c := *b
	c.State.Log = append([]string(nil), b.State.Log...)
	if b.Rewards != nil {
		r := *b.Rewards
		r.Items = append([]npc.LootItem(nil), b.Rewards.Items...)
		c.Rewards = &r
	}
	return &c
}

// Resolved reports whether b has a result.
func (b *Battle) Resolved() bool { return b.Result.Resolved() }

// TurnResult describes one resolved skirmish turn.
type TurnResult struct {
	Battle      *Battle
	Skill       skill.Skill
	Damage      int
	Crit        bool
	EnemyDamage int
	EnemyCrit   bool
	MPUsed      int
	// NotEnoughMP is set when the requested skill costs more MP than the
	// character has. Nothing else happened and nothing was saved.
	NotEnoughMP bool
	Message     string
	Result      combat.Result
	Rewards     *npc.Reward
	LevelUp     *leveling.Result
}

// BossTurnResult describes one boss round: the character's strike followed by
// the boss's turn when the boss survived.
type BossTurnResult struct {
	State       *boss.BattleState
	Strike      boss.Strike
	NotEnoughMP bool
	Result      combat.Result
	// Battle is the terminal record, set once the encounter has ended.
	Battle  *Battle
	Rewards *npc.Reward
	LevelUp *leveling.Result
}

// CharacterStore loads and updates characters.
type CharacterStore interface {
	// Load returns character.ErrNotFound for unknown ids.
	Load(ctx context.Context, id string) (*character.Character, error)
	// Save applies a partial update. A level change always carries xp and stats.
	Save(ctx context.Context, id string, u character.Update) error
}

// BattleStore persists PvE battle records.
type BattleStore interface {
	Create(ctx context.Context, b *Battle) error
	// Load returns ErrBattleNotFound for unknown ids.
	Load(ctx context.Context, id string) (*Battle, error)
	Save(ctx context.Context, b *Battle) error
}

// BossStateStore persists in-progress boss encounters.
type BossStateStore interface {
	Create(ctx context.Context, s *boss.BattleState) error
	// Load returns ErrBattleNotFound for unknown ids.
	Load(ctx context.Context, id string) (*boss.BattleState, error)
	Save(ctx context.Context, s *boss.BattleState) error
	Delete(ctx context.Context, id string) error
}

// QuestSink is notified once per resolved WIN.
type QuestSink interface {
	NotifyKill(ctx context.Context, characterID, target string, count int) error
}

// RewardSink receives gold and items after a WIN has been saved.
type RewardSink interface {
	GrantGold(ctx context.Context, characterID string, amount int) error
	GrantItem(ctx context.Context, characterID, itemID string) error
}
