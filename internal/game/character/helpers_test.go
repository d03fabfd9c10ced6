package character_test

import (
	"github.com/cory-johannsen/dvh/internal/game/character"
	"pgregory.net/rapid"
)

func testRules() *character.Rules {
	return &character.Rules{
		Progression: map[string]character.ClassProgression{
			"fighter": {
				HP:     character.ProgressionStep{Attribute: character.Resilience, Multiplier: 4},
				Mana:   character.ProgressionStep{Attribute: character.Magic, Multiplier: 2},
				Sanity: character.ProgressionStep{Attribute: character.Charisma, Multiplier: 2},
			},
			"demonologist": {
				HP:     character.ProgressionStep{Attribute: character.Resilience, Multiplier: 2},
				Mana:   character.ProgressionStep{Attribute: character.Magic, Multiplier: 3},
				Sanity: character.ProgressionStep{Attribute: character.Charisma, Multiplier: 2},
			},
		},
		ClassChoices: map[string]character.ClassChoice{
			"fighter":      {Skills: []character.SkillID{"brawling", "swords"}, Bonus: 5},
			"demonologist": {Skills: []character.SkillID{"necromancy", "demonology"}, Bonus: 7},
		},
		SoullessRaces:    []string{"demon"},
		ClassSoulPenalty: map[string]int{"demonologist": 3},
	}
}

func intPtr(v int) *int { return &v }

func attributesGen() *rapid.Generator[character.Attributes] {
	return rapid.Custom(func(t *rapid.T) character.Attributes {
		a := character.NewAttributes()
		for _, id := range character.AllAttributes() {
			a[id] = rapid.IntRange(character.MinValue, character.MaxValue).Draw(t, string(id))
		}
		return a
	})
}

// skillsGen draws a full skill map whose kind component is zero, the state a
// sheet is in whenever no record of that kind is applied. The class choice
// layers onto whatever the class field holds, so it keeps a drawn value.
func skillsGen(kind character.BonusKind) *rapid.Generator[character.Skills] {
	comp := rapid.IntRange(character.MinValue, character.MaxValue)
	return rapid.Custom(func(t *rapid.T) character.Skills {
		s := character.NewSkills()
		for _, id := range character.AllSkills() {
			sk := character.Skill{
				Die:      rapid.IntRange(0, 6).Draw(t, "die"),
				Personal: comp.Draw(t, "personal"),
				Origin:   comp.Draw(t, "origin"),
				Class:    comp.Draw(t, "class"),
				Race:     comp.Draw(t, "race"),
			}
			switch kind {
			case character.KindRace:
				sk.Race = 0
			case character.KindClass:
				sk.Class = 0
			case character.KindOrigin:
				sk.Origin = 0
			}
			s[id] = sk
		}
		return s
	})
}

func recordGen() *rapid.Generator[character.BonusRecord] {
	skills := rapid.SampledFrom(character.AllSkills())
	return rapid.Custom(func(t *rapid.T) character.BonusRecord {
		return character.BonusRecord{
			ID:             rapid.StringMatching(`[a-z]{3,8}`).Draw(t, "id"),
			SkillBonuses:   rapid.MapOfN(skills, rapid.IntRange(1, 7), 0, 6).Draw(t, "bonuses"),
			SkillPenalties: rapid.MapOfN(skills, rapid.IntRange(-7, -1), 0, 6).Draw(t, "penalties"),
		}
	})
}
