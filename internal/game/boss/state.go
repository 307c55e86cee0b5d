package boss

import "maps"

// BattleState is the mutable per-encounter instance of a boss fight. Engine
// methods never modify a state in place; they return a new one.
type BattleState struct {
	ID               string         `json:"id"`
	CharacterID      string         `json:"characterId"`
	CharacterName    string         `json:"characterName"`
	CharacterLevel   int            `json:"characterLevel"`
	BossID           string         `json:"bossId"`
	BossName         string         `json:"bossName"`
	Turn             int            `json:"turn"`
	CharacterHP      int            `json:"characterHp"`
	CharacterMP      int            `json:"characterMp"`
	CharacterDefense float64        `json:"characterDefense"`
	BossHP           int            `json:"bossHp"`
	BossMaxHP        int            `json:"bossMaxHp"`
	Cooldowns        map[string]int `json:"cooldowns"`
	Enraged          bool           `json:"enraged"`
	Log              []string       `json:"log"`
}

// Clone returns a deep copy of s.
func (s *BattleState) Clone() *BattleState {
	c := *s
	c.Cooldowns = maps.Clone(s.Cooldowns)
	if c.Cooldowns == nil {
		c.Cooldowns = map[string]int{}
	}
	c.Log = append([]string(nil), s.Log...)
	return &c
}

// HPFraction is the boss's remaining hp as a share of its maximum.
func (s *BattleState) HPFraction() float64 {
	if s.BossMaxHP <= 0 {
		return 0
	}
	return float64(s.BossHP) / float64(s.BossMaxHP)
}

// BossDefeated reports whether the boss has no hp left.
func BossDefeated(s *BattleState) bool { return s.BossHP <= 0 }

// CharacterDefeated reports whether the character has no hp left.
func CharacterDefeated(s *BattleState) bool { return s.CharacterHP <= 0 }

// Finished reports whether either side is defeated.
func Finished(s *BattleState) bool { return BossDefeated(s) || CharacterDefeated(s) }
