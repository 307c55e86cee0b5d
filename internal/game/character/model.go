// Package character defines the character domain model consumed by the
// combat and progression engine.
package character

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by character stores when no character has the requested id.
var ErrNotFound = errors.New("character not found")

// Class is the closed set of playable character classes.
type Class int

const (
	Warrior Class = iota
	Mage
	Rogue
)

// Classes lists every class in declaration order.
var Classes = []Class{Warrior, Mage, Rogue}

// String returns the upper-case wire name of the class.
func (c Class) String() string {
	switch c {
	case Warrior:
		return "WARRIOR"
	case Mage:
		return "MAGE"
	case Rogue:
		return "ROGUE"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Valid reports whether c is one of the declared classes.
func (c Class) Valid() bool {
	switch c {
	case Warrior, Mage, Rogue:
		return true
	default:
		return false
	}
}

// ParseClass resolves a class name case-insensitively.
//
// Postcondition: Returns a valid Class or an error naming the input.
func ParseClass(s string) (Class, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WARRIOR":
		return Warrior, nil
	case "MAGE":
		return Mage, nil
	case "ROGUE":
		return Rogue, nil
	default:
		return 0, fmt.Errorf("unknown character class %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid character class %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(b []byte) error {
	parsed, err := ParseClass(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Stats is a character's combat statistics. All fields are non-negative.
type Stats struct {
	HP           float64 `json:"hp" yaml:"hp"`
	MP           float64 `json:"mp" yaml:"mp"`
	Attack       float64 `json:"attack" yaml:"attack"`
	Defense      float64 `json:"defense" yaml:"defense"`
	Speed        float64 `json:"speed" yaml:"speed"`
	CritChance   float64 `json:"critChance" yaml:"crit_chance"`
	Strength     int     `json:"strength" yaml:"strength"`
	Agility      int     `json:"agility" yaml:"agility"`
	Intelligence int     `json:"intelligence" yaml:"intelligence"`
}

// Character is the engine's per-call snapshot of a persisted character.
//
// Invariant: Level is the greatest L such that leveling.CumulativeXP(L) <= XP,
// capped at the configured max level.
type Character struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class Class  `json:"class"`
	Level int    `json:"level"`
	XP    int    `json:"xp"`
	Stats Stats  `json:"stats"`
}

// DisplayName returns Name, or the id when the character is unnamed.
func (c *Character) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Update is a partial write to a persisted character. Nil fields are left unchanged.
type Update struct {
	Level *int
	XP    *int
	Stats *Stats
}

// ErrInconsistentUpdate is returned when an Update changes the level without
// carrying the matching xp and stats.
var ErrInconsistentUpdate = errors.New("level change must carry xp and stats")

// Validate enforces that a level change always travels with xp and stats.
//
// Postcondition: Returns nil or ErrInconsistentUpdate.
func (u Update) Validate() error {
	if u.Level != nil && (u.XP == nil || u.Stats == nil) {
		return ErrInconsistentUpdate
	}
	return nil
}

// Apply writes the non-nil fields of u onto c.
//
// Precondition: u.Validate() == nil.
func (u Update) Apply(c *Character) {
	if u.Level != nil {
		c.Level = *u.Level
	}
	if u.XP != nil {
		c.XP = *u.XP
	}
	if u.Stats != nil {
		c.Stats = *u.Stats
	}
}
