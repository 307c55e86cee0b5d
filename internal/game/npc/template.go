// Package npc provides enemy template definitions, level scaling, the spawn
// table, and PvE reward generation.
package npc

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/character"
)

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	HP          int     `yaml:"hp"`
	Attack      int     `yaml:"attack"`
	Defense     int     `yaml:"defense"`
	Speed       float64 `yaml:"speed"`
	CritChance  float64 `yaml:"crit_chance"`
	// XPReward is the level-1 experience reward; 0 derives it from hp.
	XPReward int        `yaml:"xp_reward"`
	Loot     *LootTable `yaml:"loot"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, HP >= 1, Attack >= 0,
// Defense >= 0, and CritChance is in [0, 1]; returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.HP < 1 {
		return fmt.Errorf("npc template %q: hp must be >= 1", t.ID)
	}
	if t.Attack < 0 || t.Defense < 0 || t.Speed < 0 || t.XPReward < 0 {
		return fmt.Errorf("npc template %q: attack, defense, speed and xp_reward must be >= 0", t.ID)
	}
	if t.CritChance < 0 || t.CritChance > 1 {
		return fmt.Errorf("npc template %q: crit_chance must be in [0, 1], got %v", t.ID, t.CritChance)
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			return fmt.Errorf("npc template %q: %w", t.ID, err)
		}
	}
	return nil
}

// Enemy is a template scaled to a concrete level. It is the immutable enemy
// snapshot stored on a battle.
type Enemy struct {
	TemplateID string     `json:"templateId"`
	Name       string     `json:"name"`
	Level      int        `json:"level"`
	HP         int        `json:"hp"`
	Attack     int        `json:"attack"`
	Defense    int        `json:"defense"`
	Speed      float64    `json:"speed"`
	CritChance float64    `json:"critChance"`
	XPReward   int        `json:"xpReward"`
	Loot       *LootTable `json:"loot,omitempty"`
}

// Stats returns the enemy as damage-model stats.
func (e Enemy) Stats() character.Stats {
	return character.Stats{
		HP:         float64(e.HP),
		Attack:     float64(e.Attack),
		Defense:    float64(e.Defense),
		Speed:      e.Speed,
		CritChance: e.CritChance,
	}
}

// Scale returns the template grown linearly to level: +10 hp, +2 attack,
// +1 defense, +0.5 speed and +5 xp reward per level above 1.
//
// Postcondition: result.Level == max(1, level).
func (t *Template) Scale(level int) Enemy {
	if level < 1 {
		level = 1
	}
	steps := level - 1
	return Enemy{
		TemplateID: t.ID,
		Name:       t.Name,
		Level:      level,
		HP:         t.HP + steps*10,
		Attack:     t.Attack + steps*2,
		Defense:    t.Defense + steps,
		Speed:      t.Speed + float64(steps)*0.5,
		CritChance: t.CritChance,
		XPReward:   t.XPReward + steps*5,
		Loot:       t.Loot,
	}
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	return LoadTemplatesFS(os.DirFS(dir), ".")
}

// LoadTemplatesFS is LoadTemplates over an fs.FS.
func LoadTemplatesFS(fsys fs.FS, dir string) ([]*Template, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", p, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
