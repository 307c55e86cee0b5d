package npc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/npc"
)

const orcYAML = `
id: orc
name: Orc
description: A brute.
hp: 80
attack: 20
defense: 8
speed: 6
crit_chance: 0.03
xp_reward: 8
`

func TestLoadTemplateFromBytes(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(orcYAML))
	require.NoError(t, err)
	assert.Equal(t, "orc", tmpl.ID)
	assert.Equal(t, 80, tmpl.HP)
	assert.Equal(t, 0.03, tmpl.CritChance)
	assert.Nil(t, tmpl.Loot)
}

func TestLoadTemplateFromBytes_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing id":  "name: X\nhp: 10\n",
		"zero hp":     "id: x\nname: X\nhp: 0\n",
		"crit over 1": "id: x\nname: X\nhp: 5\ncrit_chance: 1.5\n",
		"bad loot":    "id: x\nname: X\nhp: 5\nloot:\n  items:\n    - item: ''\n      chance: 0.5\n      min_qty: 1\n      max_qty: 1\n",
		"not yaml":    "{{{",
	}
	for name, data := range cases {
		_, err := npc.LoadTemplateFromBytes([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestLoadTemplates_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orc.yaml"), []byte(orcYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644))

	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Orc", templates[0].Name)
}

func TestScale_LevelOneIsBase(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(orcYAML))
	require.NoError(t, err)
	e := tmpl.Scale(1)
	assert.Equal(t, 80, e.HP)
	assert.Equal(t, 20, e.Attack)
	assert.Equal(t, 8, e.XPReward)
}

func TestScale_GrowsPerLevel(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(orcYAML))
	require.NoError(t, err)
	e := tmpl.Scale(4)
	assert.Equal(t, 4, e.Level)
	assert.Equal(t, 110, e.HP)
	assert.Equal(t, 26, e.Attack)
	assert.Equal(t, 11, e.Defense)
	assert.Equal(t, 7.5, e.Speed)
	assert.Equal(t, 23, e.XPReward)
}

func TestProperty_Scale_Linear(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(orcYAML))
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 60).Draw(rt, "level")
		e := tmpl.Scale(level)
		next := tmpl.Scale(level + 1)
		if next.HP-e.HP != 10 || next.Attack-e.Attack != 2 || next.Defense-e.Defense != 1 || next.XPReward-e.XPReward != 5 {
			rt.Fatalf("non-linear growth from %d: %+v -> %+v", level, e, next)
		}
	})
}
