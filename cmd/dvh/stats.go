package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/game/ruleset"
	"github.com/cory-johannsen/dvh/internal/game/session"
	"github.com/cory-johannsen/dvh/internal/storage"
)

// sheetFile is the YAML description of a character accepted by the stats command.
type sheetFile struct {
	Name         string                        `yaml:"name"`
	Level        int                           `yaml:"level"`
	BagBonus     int                           `yaml:"bag_bonus"`
	Attributes   map[character.AttributeID]int `yaml:"attributes"`
	Race         string                        `yaml:"race"`
	Class        string                        `yaml:"class"`
	Origin       string                        `yaml:"origin"`
	ClassChoice  character.SkillID             `yaml:"class_choice"`
	OriginSkills []character.SkillID           `yaml:"origin_skills"`
	Personal     map[character.SkillID]int     `yaml:"personal"`
}

func loadSheetFile(path string) (*sheetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f sheetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = "unnamed"
	}
	return &f, nil
}

// build replays f through a throwaway in-memory session so every value passes
// the same rules as the server.
func (f *sheetFile) build(ctx context.Context, g *globals, catalog *ruleset.Catalog) (*character.Sheet, error) {
	mgr := session.NewManager(session.Deps{
		Catalog: catalog,
		Store:   storage.NewMemoryStore(),
		Rolls:   storage.NewMemoryRollLog(1),
		Roller:  g.roller(),
		Logger:  g.logger(),
	})
	sess, err := mgr.Create(ctx, f.Name)
	if err != nil {
		return nil, err
	}
	level, bag := f.Level, f.BagBonus
	if _, err := sess.Update(ctx, session.Patch{Level: &level, BagBonus: &bag}); err != nil {
		return nil, err
	}

	for id := range f.Attributes {
		if !id.Valid() {
			return nil, fmt.Errorf("%w: %q", character.ErrUnknownAttribute, id)
		}
	}

	// Refunds first so negative attributes free points for the rest.
	for _, refunds := range []bool{true, false} {
		for _, id := range character.AllAttributes() {
			v := f.Attributes[id]
			if v == 0 || (v < 0) != refunds {
				continue
			}
			if _, err := sess.AllocateAttribute(ctx, id, v); err != nil {
				return nil, fmt.Errorf("attribute %s: %w", id, err)
			}
		}
	}

	for _, sel := range []struct {
		kind character.BonusKind
		id   string
	}{
		{character.KindRace, f.Race},
		{character.KindClass, f.Class},
		{character.KindOrigin, f.Origin},
	} {
		if sel.id == "" {
			continue
		}
		if _, err := sess.Select(ctx, sel.kind, sel.id); err != nil {
			return nil, err
		}
	}
	if f.ClassChoice != "" {
		if _, err := sess.ChooseClassSkill(ctx, f.ClassChoice); err != nil {
			return nil, err
		}
	}
	if len(f.OriginSkills) > 0 {
		if _, err := sess.ChooseOriginSkills(ctx, f.OriginSkills); err != nil {
			return nil, err
		}
	}
	for id, delta := range f.Personal {
		if _, err := sess.AdjustPersonal(ctx, id, delta); err != nil {
			return nil, fmt.Errorf("skill %s: %w", id, err)
		}
	}
	return sess.Sheet(), nil
}

func newStatsCmd(g *globals) *cobra.Command {
	var showSkills bool
	cmd := &cobra.Command{
		Use:   "stats <sheet.yaml>",
		Short: "Compute derived stats for a sheet file",
		Long: `Build a character from a YAML sheet file against the catalog and print its
derived stats.

  Example: dvh stats sheets/vex.yaml --skills`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadSheetFile(args[0])
			if err != nil {
				return err
			}
			catalog, err := ruleset.LoadCatalog(g.content)
			if err != nil {
				return err
			}
			sheet, err := f.build(cmd.Context(), g, catalog)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), sheet, sheet.Stats(catalog.Rules), showSkills)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSkills, "skills", false, "also list every nonzero skill total")
	return cmd
}

func printStats(out io.Writer, sheet *character.Sheet, d character.DerivedStats, showSkills bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tlevel %d\t%d points left\n", sheet.Name, sheet.Level, sheet.Remaining())
	for _, kind := range []character.BonusKind{character.KindRace, character.KindClass, character.KindOrigin} {
		if id := sheet.Ledger.SelectionID(kind); id != "" {
			fmt.Fprintf(w, "%s\t%s\n", kind, id)
		}
	}
	rows := []struct {
		label string
		value int
	}{
		{"hp", d.HP}, {"mana", d.Mana}, {"sanity", d.Sanity}, {"soul", d.Soul},
		{"defense", d.Defense}, {"dodge", d.Dodge}, {"block", d.Block}, {"carry", d.CarryCapacity},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\n", r.label, r.value)
	}
	if showSkills {
		for _, id := range character.AllSkills() {
			if t := sheet.SkillTotal(id); t != 0 {
				fmt.Fprintf(w, "skill %s\t%+d\n", id, t)
			}
		}
	}
	_ = w.Flush()
}
