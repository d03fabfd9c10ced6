package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/game/inventory"
)

// Catalog is the read-only lookup of every selectable record, built once at
// startup. Bonus records are normalized and validated at registration.
type Catalog struct {
	races   map[string]*Race
	classes map[string]*Class
	origins map[string]*Origin
	records map[character.BonusKind]map[string]character.BonusRecord

	Items *inventory.Registry
	Rules *character.Rules
}

// NewCatalog returns an empty Catalog using DefaultRules.
func NewCatalog() *Catalog {
	return &Catalog{
		races:   make(map[string]*Race),
		classes: make(map[string]*Class),
		origins: make(map[string]*Origin),
		records: map[character.BonusKind]map[string]character.BonusRecord{
			character.KindRace:   {},
			character.KindClass:  {},
			character.KindOrigin: {},
		},
		Items: inventory.NewRegistry(),
		Rules: DefaultRules(),
	}
}

func (c *Catalog) register(kind character.BonusKind, id, name string, bonus BonusDef) error {
	if err := validateHeader(id, name); err != nil {
		return fmt.Errorf("ruleset: %s: %w", kind, err)
	}
	if _, exists := c.records[kind][id]; exists {
		return fmt.Errorf("ruleset: %s ID %q already registered", kind, id)
	}
	rec, err := bonus.Record(id)
	if err != nil {
		return fmt.Errorf("ruleset: %s %q: %w", kind, id, err)
	}
	c.records[kind][id] = rec
	return nil
}

// RegisterRace adds r to the catalog.
//
// Precondition: r must not be nil.
// Postcondition: Race(r.ID) returns (r, true); returns error on duplicates or invalid bonuses.
func (c *Catalog) RegisterRace(r *Race) error {
	if err := c.register(character.KindRace, r.ID, r.Name, r.Bonus); err != nil {
		return err
	}
	c.races[r.ID] = r
	return nil
}

// RegisterClass adds cl to the catalog.
func (c *Catalog) RegisterClass(cl *Class) error {
	if err := c.register(character.KindClass, cl.ID, cl.Name, cl.Bonus); err != nil {
		return err
	}
	c.classes[cl.ID] = cl
	return nil
}

// RegisterOrigin adds o to the catalog.
func (c *Catalog) RegisterOrigin(o *Origin) error {
	if o.ChooseSkills < 0 {
		return fmt.Errorf("ruleset: origin %q: choose_skills must be >= 0", o.ID)
	}
	if err := c.register(character.KindOrigin, o.ID, o.Name, o.Bonus); err != nil {
		return err
	}
	c.origins[o.ID] = o
	return nil
}

// Race returns the race with id.
func (c *Catalog) Race(id string) (*Race, bool) {
	r, ok := c.races[id]
	return r, ok
}

// Class returns the class with id.
func (c *Catalog) Class(id string) (*Class, bool) {
	cl, ok := c.classes[id]
	return cl, ok
}

// Origin returns the origin with id.
func (c *Catalog) Origin(id string) (*Origin, bool) {
	o, ok := c.origins[id]
	return o, ok
}

// BonusRecord returns the normalized record of the kind selection id.
//
// Postcondition: ok is false for unknown ids and for kinds the catalog does not hold.
func (c *Catalog) BonusRecord(kind character.BonusKind, id string) (character.BonusRecord, bool) {
	rec, ok := c.records[kind][id]
	return rec, ok
}

func sortedValues[T any](m map[string]*T) []*T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*T, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// Races returns every race sorted by ID.
func (c *Catalog) Races() []*Race { return sortedValues(c.races) }

// Classes returns every class sorted by ID.
func (c *Catalog) Classes() []*Class { return sortedValues(c.classes) }

// Origins returns every origin sorted by ID.
func (c *Catalog) Origins() []*Origin { return sortedValues(c.origins) }

// Content subdirectory and file names read by LoadCatalog.
const (
	RacesDir   = "races"
	ClassesDir = "classes"
	OriginsDir = "origins"
	ItemsDir   = "items"
	RulesFile  = "rules.yaml"
)

// LoadCatalog builds a Catalog from dir. Missing subdirectories are treated as
// empty and a missing rules file keeps DefaultRules.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns a fully validated Catalog or a non-nil error.
func LoadCatalog(dir string) (*Catalog, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("ruleset: content directory: %w", err)
	}
	c := NewCatalog()

	races, err := loadOptional(filepath.Join(dir, RacesDir), LoadRaces)
	if err != nil {
		return nil, err
	}
	for _, r := range races {
		if err := c.RegisterRace(r); err != nil {
			return nil, err
		}
	}
	classes, err := loadOptional(filepath.Join(dir, ClassesDir), LoadClasses)
	if err != nil {
		return nil, err
	}
	for _, cl := range classes {
		if err := c.RegisterClass(cl); err != nil {
			return nil, err
		}
	}
	origins, err := loadOptional(filepath.Join(dir, OriginsDir), LoadOrigins)
	if err != nil {
		return nil, err
	}
	for _, o := range origins {
		if err := c.RegisterOrigin(o); err != nil {
			return nil, err
		}
	}
	items, err := loadOptional(filepath.Join(dir, ItemsDir), inventory.LoadItems)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := c.Items.RegisterItem(it); err != nil {
			return nil, err
		}
	}

	rulesPath := filepath.Join(dir, RulesFile)
	if _, err := os.Stat(rulesPath); err == nil {
		rules, err := LoadRules(rulesPath)
		if err != nil {
			return nil, err
		}
		c.Rules = rules
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ruleset: %w", err)
	}
	if err := c.validateItemRefs(); err != nil {
		return nil, err
	}
	return c, nil
}

func loadOptional[T any](dir string, load func(string) ([]*T, error)) ([]*T, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return load(dir)
}

func (c *Catalog) validateItemRefs() error {
	var errs []error
	check := func(owner string, ids []string) {
		for _, id := range ids {
			if _, ok := c.Items.Item(id); !ok {
				errs = append(errs, fmt.Errorf("%s references unknown item %q", owner, id))
			}
		}
	}
	for _, cl := range c.classes {
		check("class "+cl.ID, cl.StartingItems)
	}
	for _, o := range c.origins {
		check("origin "+o.ID, o.Items)
	}
	if len(errs) > 0 {
		return fmt.Errorf("ruleset: %w", errors.Join(errs...))
	}
	return nil
}
