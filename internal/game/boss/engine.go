package boss

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/skill"
)

const (
	// EnragedAttackMultiplier scales boss damage while enraged.
	EnragedAttackMultiplier = 1.2
	// EnragePreferenceFraction is the hp fraction at or below which an
	// available Enrage skill is always chosen.
	EnragePreferenceFraction = 0.3
)

// ErrUnsupportedAction is returned by CharacterStrike for actions other than attack or skill.
var ErrUnsupportedAction = errors.New("unsupported boss battle action")

// Engine runs boss turns. It holds no per-battle state.
type Engine struct {
	src    dice.Source
	logger *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: src must be non-nil. A nil logger discards output.
func NewEngine(src dice.Source, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{src: src, logger: logger}
}

// NewBattle builds the opening state of an encounter between c and tmpl.
//
// Postcondition: Turn == 1, both sides at full hp, cooldowns empty, not enraged.
func (e *Engine) NewBattle(id string, c *character.Character, tmpl *Template) *BattleState {
	return &BattleState{
		ID:               id,
		CharacterID:      c.ID,
		CharacterName:    c.DisplayName(),
		CharacterLevel:   c.Level,
		BossID:           tmpl.ID,
		BossName:         tmpl.Name,
		Turn:             1,
		CharacterHP:      int(c.Stats.HP),
		CharacterMP:      int(c.Stats.MP),
		CharacterDefense: c.Stats.Defense,
		BossHP:           tmpl.MaxHP,
		BossMaxHP:        tmpl.MaxHP,
		Cooldowns:        map[string]int{},
		Log:              []string{fmt.Sprintf("Boss battle started! %s appears!", tmpl.Name)},
	}
}

// ExecuteTurn runs one boss turn against the character and returns the next state.
//
// The enrage flag flips once the hp fraction is at or below the template's
// threshold. The boss then uses a skill that is off cooldown and whose
// condition holds, or a plain attack when none is. Termination is left to the
// caller via BossDefeated and CharacterDefeated.
//
// Precondition: tmpl and state must be non-nil and describe the same boss.
// Postcondition: state is unchanged; result.Turn == state.Turn + 1; result.CharacterHP >= 0.
func (e *Engine) ExecuteTurn(tmpl *Template, state *BattleState) *BattleState {
	next := state.Clone()
	next.Turn = state.Turn + 1

	frac := state.HPFraction()
	if frac <= tmpl.EnrageThreshold && !next.Enraged {
		e.enrage(tmpl, next)
	}

	available := make([]Skill, 0, len(tmpl.Skills))
	for _, s := range tmpl.Skills {
		if next.Cooldowns[s.Name] == 0 && conditionMet(s.Condition, frac, state.Turn) {
			available = append(available, s)
		}
	}

	var used *Skill
	if len(available) == 0 {
		dmg := e.bossDamage(tmpl, next, 1.0)
		next.CharacterHP = combat.ApplyDamage(next.CharacterHP, dmg)
		next.Log = append(next.Log, fmt.Sprintf("%s attacks for %d damage!", tmpl.Name, dmg))
	} else {
		s := e.selectSkill(available, frac)
		used = &s
		e.useSkill(tmpl, next, s)
	}

	for name, cd := range next.Cooldowns {
		if cd > 0 {
			next.Cooldowns[name] = cd - 1
		}
	}
	if used != nil && used.Cooldown > 0 {
		next.Cooldowns[used.Name] = used.Cooldown
	}

	e.logger.Debug("boss turn",
		zap.String("battle_id", next.ID),
		zap.String("boss_id", tmpl.ID),
		zap.Int("turn", state.Turn),
		zap.Int("character_hp", next.CharacterHP),
		zap.Bool("enraged", next.Enraged),
	)
	return next
}

func conditionMet(c Condition, frac float64, turn int) bool {
	if c.HPThreshold > 0 && frac > c.HPThreshold {
		return false
	}
	if c.TurnCount > 0 && turn < c.TurnCount {
		return false
	}
	return true
}

func (e *Engine) selectSkill(available []Skill, frac float64) Skill {
	var others []Skill
	for _, s := range available {
		if s.IsEnrage() {
			if frac <= EnragePreferenceFraction {
				return s
			}
			continue
		}
		others = append(others, s)
	}
	if len(others) == 0 {
		return available[0]
	}
	return others[dice.Pick(e.src, len(others))]
}

func (e *Engine) enrage(tmpl *Template, s *BattleState) {
	s.Enraged = true
	s.Log = append(s.Log, fmt.Sprintf("%s enters an enraged state! Attack power increased!", tmpl.Name))
	e.logger.Info("boss enraged",
		zap.String("battle_id", s.ID),
		zap.String("boss_id", tmpl.ID),
		zap.Int("boss_hp", s.BossHP),
	)
}

// bossDamage is max(1, floor(attack*mult*(1.2 if enraged) - character defense)).
func (e *Engine) bossDamage(tmpl *Template, s *BattleState, mult float64) int {
	raw := tmpl.Attack * mult
	if s.Enraged {
		raw *= EnragedAttackMultiplier
	}
	return max(1, int(math.Floor(raw-s.CharacterDefense)))
}

func (e *Engine) useSkill(tmpl *Template, s *BattleState, sk Skill) {
	if sk.IsEnrage() {
		if !s.Enraged {
			e.enrage(tmpl, s)
		} else {
			s.Log = append(s.Log, fmt.Sprintf("%s roars with fury!", tmpl.Name))
		}
		return
	}

	dmg := e.bossDamage(tmpl, s, sk.DamageMultiplier)
	s.CharacterHP = combat.ApplyDamage(s.CharacterHP, dmg)
	s.Log = append(s.Log, fmt.Sprintf("%s uses %s for %d damage!", tmpl.Name, sk.Name, dmg))

	// Secondary effects are narrated only.
	if sk.Effects.Stun > 0 && dice.Chance(e.src, sk.Effects.Stun) {
		s.Log = append(s.Log, fmt.Sprintf("%s is stunned!", s.CharacterName))
	}
	if sk.Effects.DefenseReduction > 0 {
		s.Log = append(s.Log, fmt.Sprintf("%s's defense is reduced!", s.CharacterName))
	}
}

// Strike is the character's half of a boss round.
type Strike struct {
	Damage      int
	Crit        bool
	MPCost      int
	Skill       skill.Skill
	NotEnoughMP bool
}

// CharacterStrike resolves the character's attack or skill against the boss.
//
// An MP shortfall is reported in-band through Strike.NotEnoughMP, in which
// case state is returned unchanged.
//
// Precondition: action is combat.ActionAttack or combat.ActionSkill.
// Postcondition: state is unchanged; result.BossHP >= 0.
func (e *Engine) CharacterStrike(tmpl *Template, state *BattleState, stats character.Stats, class character.Class, action combat.Action, skillID string) (*BattleState, Strike, error) {
	var sk skill.Skill
	switch action {
	case combat.ActionAttack:
		sk = skill.Neutral("attack")
	case combat.ActionSkill:
		sk = skill.Lookup(class, skillID)
	default:
		return nil, Strike{}, fmt.Errorf("%w: %q", ErrUnsupportedAction, action)
	}

	if state.CharacterMP < sk.MPCost {
		return state, Strike{Skill: sk, NotEnoughMP: true}, nil
	}

	bossStats := character.Stats{Defense: tmpl.Defense}
	crit := combat.IsCriticalHit(e.src, stats.CritChance+sk.CritBonus)
	dmg := combat.CalculateDamage(stats, bossStats, sk.DamageMultiplier, crit)

	next := state.Clone()
	next.CharacterMP -= sk.MPCost
	next.BossHP = combat.ApplyDamage(next.BossHP, dmg)

	line := fmt.Sprintf("%s attacks for %d damage", next.CharacterName, dmg)
	if action == combat.ActionSkill {
		line = fmt.Sprintf("%s casts %s for %d damage", next.CharacterName, sk.Name, dmg)
	}
	if crit {
		line += " (Critical Hit!)"
	}
	next.Log = append(next.Log, line)
	if BossDefeated(next) {
		next.Log = append(next.Log, fmt.Sprintf("%s is defeated!", tmpl.Name))
	}

	return next, Strike{Damage: dmg, Crit: crit, MPCost: sk.MPCost, Skill: sk}, nil
}

// Rewards computes the reward for defeating tmpl at characterLevel: base xp
// and gold scaled by the level multiplier, every guaranteed item, and each
// rare item that passes its chance roll.
//
// Postcondition: XP >= 1 and Gold >= 1.
func Rewards(tmpl *Template, characterLevel int, src dice.Source) npc.Reward {
	mult := npc.LevelMultiplier(characterLevel, tmpl.Level)
	r := npc.Reward{
		XP:   npc.ScaleReward(tmpl.Rewards.XP, mult),
		Gold: npc.ScaleReward(tmpl.Rewards.Gold, mult),
	}
	drops := npc.LootTable{}
	for _, id := range tmpl.Rewards.GuaranteedItems {
		drops.Items = append(drops.Items, npc.ItemDrop{ItemID: id, Chance: 1, MinQty: 1, MaxQty: 1})
	}
	for _, ri := range tmpl.Rewards.RareItems {
		drops.Items = append(drops.Items, npc.ItemDrop{ItemID: ri.ItemID, Chance: ri.Chance, MinQty: 1, MaxQty: 1})
	}
	r.Items = npc.GenerateLoot(drops, src).Items
	return r
}
