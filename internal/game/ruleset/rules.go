package ruleset

import (
	"errors"
	"fmt"
	"os"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"gopkg.in/yaml.v3"
)

func step(attr character.AttributeID, mult int) character.ProgressionStep {
	return character.ProgressionStep{Attribute: attr, Multiplier: mult}
}

func progression(hp int, sanityAttr character.AttributeID, sanity, mana int) character.ClassProgression {
	return character.ClassProgression{
		HP:     step(character.Resilience, hp),
		Sanity: step(sanityAttr, sanity),
		Mana:   step(character.Magic, mana),
	}
}

func choice(bonus int, skills ...character.SkillID) character.ClassChoice {
	return character.ClassChoice{Skills: skills, Bonus: bonus}
}

// DefaultRules returns the built-in progression, class choice and soul tables.
// A rules.yaml in the content directory replaces them.
func DefaultRules() *character.Rules {
	c := character.Charisma
	return &character.Rules{
		Progression: map[string]character.ClassProgression{
			"mage":          progression(2, character.Magic, 2, 3),
			"marksman":      progression(3, c, 2, 2),
			"trapper":       progression(3, c, 2, 2),
			"fighter":       progression(4, c, 2, 2),
			"investigator":  progression(2, c, 3, 2),
			"healer":        progression(2, character.Magic, 2, 3),
			"support":       progression(2, c, 3, 2),
			"technologist":  progression(3, c, 3, 2),
			"cleric":        progression(2, c, 3, 2),
			"demonologist":  progression(2, c, 2, 3),
			"tamer":         progression(2, c, 2, 3),
			"spy":           progression(2, c, 3, 2),
			"card_thrower":  progression(2, c, 2, 3),
			"human_arsenal": progression(3, c, 2, 2),
		},
		ClassChoices: map[string]character.ClassChoice{
			"mage":          choice(7, "enchantment", "runes"),
			"marksman":      choice(7, "heavy_firearms", "bows"),
			"trapper":       choice(7, "traps", "explosives"),
			"fighter":       choice(5, "brawling", "swords"),
			"investigator":  choice(7, "investigation", "forensics"),
			"healer":        choice(7, "alchemy", "medicine"),
			"support":       choice(7, "exorcism", "willpower"),
			"technologist":  choice(7, "technology", "explosives"),
			"cleric":        choice(7, "arcane_knowledge", "religion"),
			"demonologist":  choice(7, "necromancy", "demonology"),
			"tamer":         choice(7, "conjuration", "demonology"),
			"spy":           choice(7, "trickery", "stealth"),
			"card_thrower":  choice(7, "marksmanship", "traps"),
			"human_arsenal": choice(7, "swords", "brawling"),
		},
		SoullessRaces:    []string{"demon"},
		ClassSoulPenalty: map[string]int{"demonologist": 3},
	}
}

// LoadRules reads a rules file.
//
// Precondition: path must be a readable YAML file.
// Postcondition: Returns validated rules or a non-nil error.
func LoadRules(path string) (*character.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var r character.Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if err := ValidateRules(&r); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return &r, nil
}

// ValidateRules checks every attribute and skill id referenced by r.
//
// Postcondition: returns nil iff every reference is registered; otherwise all
// violations joined.
func ValidateRules(r *character.Rules) error {
	var errs []error
	for class, p := range r.Progression {
		for stat, s := range map[string]character.ProgressionStep{"hp": p.HP, "mana": p.Mana, "sanity": p.Sanity} {
			if !s.Attribute.Valid() {
				errs = append(errs, fmt.Errorf("progression %s.%s: %w: %q", class, stat, character.ErrUnknownAttribute, s.Attribute))
			}
		}
	}
	for class, c := range r.ClassChoices {
		if len(c.Skills) == 0 {
			errs = append(errs, fmt.Errorf("class_choices %s: no candidate skills", class))
		}
		for _, s := range c.Skills {
			if !s.Valid() {
				errs = append(errs, fmt.Errorf("class_choices %s: %w: %q", class, character.ErrUnknownSkill, s))
			}
		}
	}
	return errors.Join(errs...)
}
