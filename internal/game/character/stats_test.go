package character_test

import (
	"testing"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestComputeDerivedStats_BaseScenario(t *testing.T) {
	got := character.NewSheet("Base").Stats(nil)
	assert.Equal(t, character.DerivedStats{
		HP: 10, Mana: 15, Sanity: 10, Soul: 15,
		Defense: 10, Dodge: 10, Block: 0, CarryCapacity: 3,
	}, got)
}

func TestComputeDerivedStats_Formulas(t *testing.T) {
	attrs := character.NewAttributes()
	attrs[character.Resilience] = 2
	attrs[character.Magic] = 1
	attrs[character.Intellect] = 3
	attrs[character.Charisma] = -1
	attrs[character.Constitution] = 2
	attrs[character.Dexterity] = 1
	attrs[character.Strength] = 4

	skills := character.NewSkills()
	skills[character.Reflexes] = character.Skill{Personal: 2}
	skills[character.Fortitude] = character.Skill{Die: 3}

	ledger, skills := character.ApplyBonus(character.Ledger{}, skills, character.KindClass, character.BonusRecord{
		ID:    "fighter",
		Stats: character.StatBonus{HP: 5, Mana: 1, Sanity: 2, Defense: 3},
	})

	got := character.ComputeDerivedStats(attrs, skills, ledger, 12, 2, testRules())
	// level 12 grants two progression steps.
	assert.Equal(t, 2*3+10+5+2*2*4, got.HP)
	assert.Equal(t, 1*5+15+1+2*1*2, got.Mana)
	assert.Equal(t, 3*5-3+10+2+2*-1*2, got.Sanity)
	assert.Equal(t, 1*5+2*3+3*2+15, got.Soul)
	assert.Equal(t, 2+10+3, got.Defense)
	assert.Equal(t, 15+2+1, got.Dodge)
	assert.Equal(t, 2*2+2, got.Block)
	assert.Equal(t, 4*2+3+2, got.CarryCapacity)
}

func TestComputeDerivedStats_BlockRoundsTowardPositiveInfinity(t *testing.T) {
	skills := character.NewSkills()
	skills[character.Fortitude] = character.Skill{Personal: -3}
	attrs := character.NewAttributes()
	attrs[character.Constitution] = 1
	got := character.ComputeDerivedStats(attrs, skills, character.Ledger{}, 0, 0, nil)
	assert.Equal(t, 1, got.Block, "2 + ceil(-3/2) = 2 - 1")
}

func TestComputeDerivedStats_ClassSoulPenalty(t *testing.T) {
	ledger, skills := character.ApplyBonus(character.Ledger{}, character.NewSkills(), character.KindClass,
		character.BonusRecord{ID: "demonologist"})
	got := character.ComputeDerivedStats(character.NewAttributes(), skills, ledger, 0, 0, testRules())
	assert.Equal(t, 12, got.Soul)
}

func TestComputeDerivedStats_UnknownClassHasNoProgression(t *testing.T) {
	attrs := character.NewAttributes()
	attrs[character.Resilience] = 5
	ledger, skills := character.ApplyBonus(character.Ledger{}, character.NewSkills(), character.KindClass,
		character.BonusRecord{ID: "bard"})
	got := character.ComputeDerivedStats(attrs, skills, ledger, 100, 0, testRules())
	assert.Equal(t, 25, got.HP)
}

func TestComputeDerivedStats_SoulZeroing_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		attrs := attributesGen().Draw(rt, "attrs")
		skills := character.NewSkills()
		rules := testRules()

		demon, s := character.ApplyBonus(character.Ledger{}, skills, character.KindRace,
			character.BonusRecord{ID: "demon", SoulDelta: intPtr(0)})
		assert.Equal(rt, 0, character.ComputeDerivedStats(attrs, s, demon, 0, 0, rules).Soul)

		human, s := character.ApplyBonus(character.Ledger{}, skills, character.KindRace,
			character.BonusRecord{ID: "human", SoulDelta: intPtr(0)})
		want := max(0, attrs[character.Magic]*5+attrs[character.Resilience]*3+attrs[character.Intellect]*2+15)
		assert.Equal(rt, want, character.ComputeDerivedStats(attrs, s, human, 0, 0, rules).Soul)
	})
}

func TestComputeDerivedStats_Floors_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		attrs := attributesGen().Draw(rt, "attrs")
		level := rapid.IntRange(0, 100).Draw(rt, "level")
		kind := rapid.SampledFrom(character.Kinds()).Draw(rt, "kind")
		skills := skillsGen(kind).Draw(rt, "skills")
		class := rapid.SampledFrom([]string{"fighter", "demonologist", "bard"}).Draw(rt, "class")
		ledger, skills := character.ApplyBonus(character.Ledger{}, skills, character.KindClass, character.BonusRecord{
			ID: class,
			Stats: character.StatBonus{
				HP:      rapid.IntRange(-10, 10).Draw(rt, "hp"),
				Mana:    rapid.IntRange(-10, 10).Draw(rt, "mana"),
				Sanity:  rapid.IntRange(-10, 10).Draw(rt, "sanity"),
				Defense: rapid.IntRange(-10, 10).Draw(rt, "defense"),
			},
		})
		bag := rapid.IntRange(-5, 10).Draw(rt, "bag")

		d := character.ComputeDerivedStats(attrs, skills, ledger, level, bag, testRules())
		assert.GreaterOrEqual(rt, d.HP, 1)
		for name, v := range map[string]int{
			"mana": d.Mana, "sanity": d.Sanity, "soul": d.Soul, "defense": d.Defense,
			"dodge": d.Dodge, "block": d.Block, "carry": d.CarryCapacity,
		} {
			assert.GreaterOrEqual(rt, v, 0, name)
		}
		assert.Equal(rt, d, character.ComputeDerivedStats(attrs, skills, ledger, level, bag, testRules()))
	})
}

func TestPools_Reconcile(t *testing.T) {
	var p character.Pools
	p = p.Reconcile(character.DerivedStats{HP: 20, Mana: 10, Sanity: 8, Soul: 5})
	assert.Equal(t, character.Pools{HP: 20, Mana: 10, Sanity: 8, Soul: 5, Initialized: true}, p)

	p.HP = 12
	p = p.Reconcile(character.DerivedStats{HP: 30, Mana: 4, Sanity: 8, Soul: 5})
	assert.Equal(t, 12, p.HP, "growth does not refill")
	assert.Equal(t, 4, p.Mana, "shrink clamps")

	p = p.Reconcile(character.DerivedStats{HP: 0, Mana: 0})
	assert.Equal(t, 0, p.HP)
}
