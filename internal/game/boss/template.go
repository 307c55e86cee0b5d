// Package boss implements scripted boss encounters: the static roster, the
// boss AI turn, and boss rewards.
package boss

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var defaultContent embed.FS

// EnrageSkillName marks the skill the boss AI prefers at low health.
const EnrageSkillName = "Enrage"

// Effects are the narrated secondary effects of a boss skill.
type Effects struct {
	Stun             float64 `yaml:"stun"`
	DefenseReduction float64 `yaml:"defense_reduction"`
	AttackBuff       float64 `yaml:"attack_buff"`
}

// Condition gates when a skill may be chosen. Zero fields impose nothing.
type Condition struct {
	// HPThreshold allows the skill only at or below this boss hp fraction.
	HPThreshold float64 `yaml:"hp_threshold"`
	// TurnCount allows the skill only from this turn onward.
	TurnCount int `yaml:"turn_count"`
}

// Skill is one entry of a boss's ordered skill list.
type Skill struct {
	Name             string    `yaml:"name"`
	Description      string    `yaml:"description"`
	DamageMultiplier float64   `yaml:"damage_multiplier"`
	MPCost           int       `yaml:"mp_cost"`
	Cooldown         int       `yaml:"cooldown"`
	Effects          Effects   `yaml:"effects"`
	Condition        Condition `yaml:"condition"`
}

// IsEnrage reports whether s is the boss's enrage skill.
func (s Skill) IsEnrage() bool {
	return strings.EqualFold(s.Name, EnrageSkillName)
}

// RareItem is a chance-based boss drop.
type RareItem struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
}

// RewardTable is a boss's base reward before level scaling.
type RewardTable struct {
	XP              int        `yaml:"xp"`
	Gold            int        `yaml:"gold"`
	GuaranteedItems []string   `yaml:"guaranteed_items"`
	RareItems       []RareItem `yaml:"rare_items"`
}

// Template is an immutable boss definition.
type Template struct {
	ID              string      `yaml:"id"`
	Name            string      `yaml:"name"`
	Level           int         `yaml:"level"`
	MaxHP           int         `yaml:"max_hp"`
	Attack          float64     `yaml:"attack"`
	Defense         float64     `yaml:"defense"`
	Speed           float64     `yaml:"speed"`
	EnrageThreshold float64     `yaml:"enrage_threshold"`
	Skills          []Skill     `yaml:"skills"`
	Rewards         RewardTable `yaml:"rewards"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil or an error describing the first violation.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("boss template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("boss template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("boss template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("boss template %q: max_hp must be >= 1", t.ID)
	}
	if t.Attack < 0 || t.Defense < 0 {
		return fmt.Errorf("boss template %q: attack and defense must be >= 0", t.ID)
	}
	if t.EnrageThreshold < 0 || t.EnrageThreshold > 1 {
		return fmt.Errorf("boss template %q: enrage_threshold must be in [0, 1], got %v", t.ID, t.EnrageThreshold)
	}
	seen := make(map[string]bool, len(t.Skills))
	for i, s := range t.Skills {
		if s.Name == "" {
			return fmt.Errorf("boss template %q: skill[%d] name must not be empty", t.ID, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("boss template %q: duplicate skill %q", t.ID, s.Name)
		}
		seen[s.Name] = true
		if s.DamageMultiplier < 0 || s.Cooldown < 0 || s.MPCost < 0 {
			return fmt.Errorf("boss template %q: skill %q has a negative multiplier, cooldown or mp cost", t.ID, s.Name)
		}
	}
	if t.Rewards.XP < 0 || t.Rewards.Gold < 0 {
		return fmt.Errorf("boss template %q: rewards must be >= 0", t.ID)
	}
	for i, r := range t.Rewards.RareItems {
		if r.ItemID == "" || r.Chance <= 0 || r.Chance > 1 {
			return fmt.Errorf("boss template %q: rare_items[%d] needs an item and a chance in (0, 1]", t.ID, i)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single boss template from YAML.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing boss YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Roster is the immutable set of boss templates.
type Roster struct {
	byID    map[string]*Template
	ordered []*Template
}

// NewRoster indexes templates by id.
//
// Postcondition: Returns an error on duplicate ids.
func NewRoster(templates []*Template) (*Roster, error) {
	r := &Roster{byID: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("boss roster: duplicate id %q", t.ID)
		}
		r.byID[t.ID] = t
		r.ordered = append(r.ordered, t)
	}
	sort.SliceStable(r.ordered, func(i, j int) bool {
		if r.ordered[i].Level != r.ordered[j].Level {
			return r.ordered[i].Level < r.ordered[j].Level
		}
		return r.ordered[i].ID < r.ordered[j].ID
	})
	return r, nil
}

// LoadRoster reads every *.yaml boss in dir, or the embedded roster when dir is empty.
func LoadRoster(dir string) (*Roster, error) {
	var (
		fsys fs.FS = defaultContent
		root       = "content"
	)
	if dir != "" {
		fsys, root = os.DirFS(dir), "."
	}
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("reading boss dir %q: %w", dir, err)
	}
	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		p := path.Join(root, entry.Name())
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
	return NewRoster(templates)
}

// DefaultRoster returns the embedded roster.
func DefaultRoster() *Roster {
	r, err := LoadRoster("")
	if err != nil {
		panic("boss: embedded roster: " + err.Error())
	}
	return r
}

// Get returns the template with id.
func (r *Roster) Get(id string) (*Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// All returns every template ordered by level.
func (r *Roster) All() []*Template {
	out := make([]*Template, len(r.ordered))
	copy(out, r.ordered)
	return out
}
