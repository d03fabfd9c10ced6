// Package inventory provides item definitions, the carried-item list bound by
// carry capacity, and weapon damage resolution.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cory-johannsen/dvh/internal/game/dice"
	"gopkg.in/yaml.v3"
)

// Kind constants for ItemDef.Kind.
const (
	KindWeapon     = "weapon"
	KindArmor      = "armor"
	KindConsumable = "consumable"
	KindGear       = "gear"
)

var validKinds = map[string]bool{
	KindWeapon:     true,
	KindArmor:      true,
	KindConsumable: true,
	KindGear:       true,
}

// ItemDef defines the static properties of a catalog item loaded from YAML.
type ItemDef struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Kind        string   `yaml:"kind" json:"kind"`
	Weight      float64  `yaml:"weight" json:"weight"`
	Damage      string   `yaml:"damage" json:"damage,omitempty"`
	Skill       string   `yaml:"skill" json:"skill,omitempty"`
	Properties  []string `yaml:"properties" json:"properties,omitempty"`
	Stackable   bool     `yaml:"stackable" json:"stackable"`
	Value       int      `yaml:"value" json:"value"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of weapon, armor, consumable, gear; got %q", d.Kind))
	}
	if d.Weight < 0 {
		errs = append(errs, errors.New("Weight must be >= 0"))
	}
	if d.Kind == KindWeapon {
		if d.Damage == "" {
			errs = append(errs, errors.New("Damage is required when Kind is weapon"))
		} else if _, err := dice.Parse(d.Damage); err != nil {
			errs = append(errs, fmt.Errorf("Damage: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadItems reads all *.yaml and *.yml files from dir. Each file holds either a
// single ItemDef or a list of them.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		defs, err := decodeItems(data)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		for _, d := range defs {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("LoadItems: invalid item %q in %q: %w", d.ID, path, err)
			}
		}
		items = append(items, defs...)
	}
	return items, nil
}

func decodeItems(data []byte) ([]*ItemDef, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var defs []*ItemDef
		if err := node.Content[0].Decode(&defs); err != nil {
			return nil, err
		}
		return defs, nil
	}
	var d ItemDef
	if err := node.Content[0].Decode(&d); err != nil {
		return nil, err
	}
	return []*ItemDef{&d}, nil
}
