package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/dvh/internal/game/character"
)

// BonusDef is the catalog shape of a selection's effect.
type BonusDef struct {
	Skills        map[string]int `yaml:"skills"`
	Penalties     map[string]int `yaml:"penalties"`
	Soul          *int           `yaml:"soul"`
	HP            int            `yaml:"hp"`
	Mana          int            `yaml:"mana"`
	Sanity        int            `yaml:"sanity"`
	Defense       int            `yaml:"defense"`
	ExtraDieSlots int            `yaml:"extra_die_slots"`
}

// Record normalizes b into the engine's BonusRecord for selection id.
//
// Postcondition: returns an error naming every unknown skill and every
// non-negative penalty.
func (b BonusDef) Record(id string) (character.BonusRecord, error) {
	var errs []error
	convert := func(in map[string]int, penalty bool) map[character.SkillID]int {
		if len(in) == 0 {
			return nil
		}
		out := make(map[character.SkillID]int, len(in))
		for k, v := range in {
			sid := character.SkillID(k)
			if !sid.Valid() {
				errs = append(errs, fmt.Errorf("%w: %q", character.ErrUnknownSkill, k))
				continue
			}
			if penalty && v >= 0 {
				errs = append(errs, fmt.Errorf("penalty for %q must be negative, got %d", k, v))
				continue
			}
			out[sid] = v
		}
		return out
	}
	rec := character.BonusRecord{
		ID:             id,
		SkillBonuses:   convert(b.Skills, false),
		SkillPenalties: convert(b.Penalties, true),
		Stats: character.StatBonus{
			HP:            b.HP,
			Mana:          b.Mana,
			Sanity:        b.Sanity,
			Defense:       b.Defense,
			ExtraDieSlots: b.ExtraDieSlots,
		},
	}
	if b.Soul != nil {
		v := *b.Soul
		rec.SoulDelta = &v
	}
	if len(errs) > 0 {
		return character.BonusRecord{}, errors.Join(errs...)
	}
	return rec, nil
}
