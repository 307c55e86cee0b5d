package npc

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// SpawnLevelWindow is the maximum level gap between a spawn entry and the
// character for the entry to be eligible.
const SpawnLevelWindow = 2

// Spawn is one entry of the wilderness spawn table.
type Spawn struct {
	Type   string  `yaml:"type"`
	Level  int     `yaml:"level"`
	Area   string  `yaml:"area"`
	Chance float64 `yaml:"chance"`
}

// SpawnTable is the ordered list of spawn entries.
type SpawnTable []Spawn

// Validate checks every entry.
func (t SpawnTable) Validate() error {
	for i, s := range t {
		if s.Type == "" || s.Area == "" {
			return fmt.Errorf("spawn[%d]: type and area must not be empty", i)
		}
		if s.Level < 1 {
			return fmt.Errorf("spawn[%d] %q: level must be >= 1", i, s.Type)
		}
		if s.Chance <= 0 || s.Chance > 1 {
			return fmt.Errorf("spawn[%d] %q: chance must be in (0, 1], got %v", i, s.Type, s.Chance)
		}
	}
	return nil
}

// LoadSpawnTable reads a spawn table from path, or the embedded default when path is empty.
//
// Postcondition: Returns a validated table or an error.
func LoadSpawnTable(path string) (SpawnTable, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = fs.ReadFile(defaultContent, "content/spawns.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading spawn table: %w", err)
	}
	var table SpawnTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing spawn table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func withinWindow(spawnLevel, characterLevel int) bool {
	d := spawnLevel - characterLevel
	return d >= -SpawnLevelWindow && d <= SpawnLevelWindow
}

// Available returns every entry within the level window of characterLevel, in table order.
func (t SpawnTable) Available(characterLevel int) []Spawn {
	var out []Spawn
	for _, s := range t {
		if withinWindow(s.Level, characterLevel) {
			out = append(out, s)
		}
	}
	return out
}

// Roll picks one eligible entry for area uniformly and then rolls its spawn chance.
//
// Postcondition: ok is false when no entry is eligible or the chance roll fails.
func (t SpawnTable) Roll(src dice.Source, area string, characterLevel int) (Spawn, bool) {
	var eligible []Spawn
	for _, s := range t {
		if s.Area == area && withinWindow(s.Level, characterLevel) {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return Spawn{}, false
	}
	s := eligible[dice.Pick(src, len(eligible))]
	if !dice.Chance(src, s.Chance) {
		return Spawn{}, false
	}
	return s, true
}

// RollLevel picks an enemy level for a character: uniform in
// [max(1, characterLevel-1), characterLevel+2].
func RollLevel(src dice.Source, characterLevel int) int {
	lo := characterLevel - 1
	if lo < 1 {
		lo = 1
	}
	return dice.Between(src, lo, characterLevel+2)
}
