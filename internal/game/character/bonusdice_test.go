package character_test

import (
	"errors"
	"testing"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/game/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRollBonusDie_UnavailableBelowUnlock(t *testing.T) {
	skills := character.NewSkills()
	got, _, err := character.RollBonusDie(skills, "arts", character.D4, 10, dice.NewFixedSource(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, character.ErrDieUnavailable))
	assert.Nil(t, got)
	assert.Equal(t, 0, skills["arts"].Bonus.D4)
}

func TestRollBonusDie_D4CapAtLevel15(t *testing.T) {
	assert.Equal(t, map[character.Face]int{character.D4: 5}, character.AvailableBonusDice(15))

	skills := character.NewSkills()
	src := dice.NewFixedSource(3)
	for _, id := range []character.SkillID{"arts", "bows", "runes", "cooking", "history"} {
		var roll character.DieRoll
		var err error
		skills, roll, err = character.RollBonusDie(skills, id, character.D4, 15, src)
		require.NoError(t, err)
		assert.Equal(t, 3, roll.Value)
	}
	assert.Equal(t, 5, character.CountBonusDie(skills, character.D4))

	_, _, err := character.RollBonusDie(skills, "stealth", character.D4, 15, src)
	assert.True(t, errors.Is(err, character.ErrDieCapReached))
}

func TestRollBonusDie_ToggleOffFreesSlot(t *testing.T) {
	skills := character.NewSkills()
	skills, _, err := character.RollBonusDie(skills, "arts", character.D8, 75, dice.NewFixedSource(7))
	require.NoError(t, err)
	assert.Equal(t, 7, skills["arts"].Bonus.D8)

	skills, roll, err := character.RollBonusDie(skills, "arts", character.D8, 75, dice.NewFixedSource(2))
	require.NoError(t, err)
	assert.True(t, roll.Cleared)
	assert.Equal(t, 0, skills["arts"].Bonus.D8)
}

func TestRollBonusDie_UnknownFaceAndSkill(t *testing.T) {
	_, _, err := character.RollBonusDie(character.NewSkills(), "arts", character.Face(12), 100, dice.NewFixedSource(1))
	assert.True(t, errors.Is(err, character.ErrDieUnavailable))
	_, _, err = character.RollBonusDie(character.NewSkills(), "juggling", character.D4, 100, dice.NewFixedSource(1))
	assert.True(t, errors.Is(err, character.ErrUnknownSkill))
}

func TestBonusDie_InactiveFaceDoesNotCount(t *testing.T) {
	sk := character.Skill{Bonus: character.BonusDice{D10: 9}}
	assert.Equal(t, 0, sk.Total(99))
	assert.Equal(t, 9, sk.Total(100))
}

func TestManualDieCap_Bands(t *testing.T) {
	cases := map[int]int{0: 10, 4: 10, 5: 13, 15: 15, 34: 15, 35: 17, 55: 19, 75: 21, 95: 23, 100: 25}
	for level, want := range cases {
		assert.Equal(t, want, character.ManualDieCap(level), "level %d", level)
	}
}

func TestRollSkillDie_CapIncludesClassSlots(t *testing.T) {
	skills := character.NewSkills()
	src := dice.NewFixedSource(4)
	all := character.AllSkills()
	for i := 0; i < 12; i++ {
		var err error
		skills, _, err = character.RollSkillDie(skills, all[i], 0, 2, src)
		require.NoError(t, err, "roll %d", i)
	}
	_, _, err := character.RollSkillDie(skills, all[12], 0, 2, src)
	assert.True(t, errors.Is(err, character.ErrDieCapReached))

	skills, roll, err := character.RollSkillDie(skills, all[0], 0, 2, src)
	require.NoError(t, err)
	assert.True(t, roll.Cleared)
	assert.Equal(t, 0, skills[all[0]].Die)
}

func TestRollSkillDie_NeverExceedsCap_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(0, 100).Draw(rt, "level")
		extra := rapid.IntRange(0, 3).Draw(rt, "extra")
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		skills := character.NewSkills()
		limit := character.ManualDieCap(level) + extra
		for i := 0; i < 40; i++ {
			id := rapid.SampledFrom(character.AllSkills()).Draw(rt, "skill")
			next, _, err := character.RollSkillDie(skills, id, level, extra, src)
			if err == nil {
				skills = next
			}
			assert.LessOrEqual(rt, character.CountManualDie(skills), limit)
			for _, sk := range skills {
				assert.GreaterOrEqual(rt, sk.Die, 0)
				assert.LessOrEqual(rt, sk.Die, 6)
			}
		}
	})
}
