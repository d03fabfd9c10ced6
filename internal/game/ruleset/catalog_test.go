package ruleset_test

import (
	"path/filepath"
	"testing"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/game/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_RegisterAndLookup(t *testing.T) {
	c := ruleset.NewCatalog()
	require.NoError(t, c.RegisterRace(&ruleset.Race{ID: "elf", Name: "Elf",
		Bonus: ruleset.BonusDef{Skills: map[string]int{"bows": 2}}}))
	assert.Error(t, c.RegisterRace(&ruleset.Race{ID: "elf", Name: "Elf again"}))
	assert.Error(t, c.RegisterRace(&ruleset.Race{ID: "", Name: "Nameless"}))
	assert.Error(t, c.RegisterClass(&ruleset.Class{ID: "bad", Name: "Bad",
		Bonus: ruleset.BonusDef{Skills: map[string]int{"juggling": 1}}}))
	assert.Error(t, c.RegisterOrigin(&ruleset.Origin{ID: "o", Name: "O", ChooseSkills: -1}))

	r, ok := c.Race("elf")
	require.True(t, ok)
	assert.Equal(t, "Elf", r.Name)

	rec, ok := c.BonusRecord(character.KindRace, "elf")
	require.True(t, ok)
	assert.Equal(t, 2, rec.SkillBonuses["bows"])

	_, ok = c.BonusRecord(character.KindRace, "orc")
	assert.False(t, ok)
	_, ok = c.BonusRecord(character.KindClassChoice, "elf")
	assert.False(t, ok)
	_, ok = c.Class("bad")
	assert.False(t, ok, "failed registration leaves no trace")
}

func TestLoadCatalog_TempDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "classes", "fighter.yaml"), `
id: fighter
name: Fighter
bonus:
  hp: 6
  extra_die_slots: 2
starting_items: [club]
`)
	writeFile(t, filepath.Join(dir, "items", "club.yaml"), "id: club\nname: Club\nkind: weapon\ndamage: 1d6\n")

	c, err := ruleset.LoadCatalog(dir)
	require.NoError(t, err)
	assert.Empty(t, c.Races())
	require.Len(t, c.Classes(), 1)
	rec, ok := c.BonusRecord(character.KindClass, "fighter")
	require.True(t, ok)
	assert.Equal(t, 2, rec.Stats.ExtraDieSlots)
	assert.Equal(t, ruleset.DefaultRules(), c.Rules)
}

func TestLoadCatalog_UnknownItemReference(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "origins", "soldier.yaml"), "id: soldier\nname: Soldier\nitems: [railgun]\n")
	_, err := ruleset.LoadCatalog(dir)
	assert.ErrorContains(t, err, "railgun")
}

func TestLoadCatalog_MissingDir(t *testing.T) {
	_, err := ruleset.LoadCatalog(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadCatalog_BundledContent(t *testing.T) {
	c, err := ruleset.LoadCatalog(filepath.Join("..", "..", "..", "content"))
	require.NoError(t, err)

	assert.Len(t, c.Classes(), 14)
	assert.NotEmpty(t, c.Races())
	assert.NotEmpty(t, c.Origins())

	demon, ok := c.BonusRecord(character.KindRace, "demon")
	require.True(t, ok)
	require.NotNil(t, demon.SoulDelta)
	assert.Equal(t, 0, *demon.SoulDelta)

	amnesiac, ok := c.Origin("amnesiac")
	require.True(t, ok)
	assert.Equal(t, 2, amnesiac.ChooseSkills)

	for _, cl := range c.Classes() {
		_, ok := c.Rules.ClassChoiceFor(cl.ID)
		assert.True(t, ok, "class %s has a choice table", cl.ID)
	}
	_, ok = c.Items.Item("longsword")
	assert.True(t, ok)
}
