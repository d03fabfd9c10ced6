package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/game/dice"
)

func newRollCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Roll checks and damage",
	}
	cmd.AddCommand(newRollCheckCmd(g), newRollSkillCmd(g), newRollDamageCmd(g))
	return cmd
}

func newRollCheckCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check <modifier>",
		Short: "Roll an attribute check pool",
		Long: `Roll the d20 pool for a modifier: positive rolls that many and keeps the
highest, zero rolls two and keeps the lowest, negative rolls |m|+2 and keeps the lowest.

  Example: dvh roll check -- -2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("modifier %q: %w", args[0], err)
			}
			res := character.RollAttributeCheck(m, g.roller())
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Pool)
			return nil
		},
	}
}

func newRollSkillCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "skill <attribute> <skill-total>",
		Short: "Roll a skill check",
		Long: `Roll a skill check: the pool size comes from the attribute value, the keep
rule from attribute plus skill total, and the skill total is added to the kept die.

  Example: dvh roll skill 2 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			attr, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("attribute %q: %w", args[0], err)
			}
			total, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("skill total %q: %w", args[1], err)
			}
			res := character.RollSkillCheck(attr, total, g.roller())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %+d = %d\n", res.Pool, res.SkillTotal, res.Result)
			return nil
		},
	}
}

func parseCritPolicy(raw string) (dice.CritPolicy, error) {
	for _, p := range []dice.CritPolicy{dice.CritRollTwice, dice.CritDouble, dice.CritTriple} {
		if p.String() == raw {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown critical policy %q (want roll-twice, x2 or x3)", raw)
}

func newRollDamageCmd(g *globals) *cobra.Command {
	var crit string
	cmd := &cobra.Command{
		Use:   "damage <expression>",
		Short: "Roll a damage expression",
		Long: `Roll a dice expression such as 2d6+3. With --crit the roll is resolved as a
critical hit under the given policy.

  Example: dvh roll damage 1d8+1 --crit x2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := dice.Parse(args[0])
			if err != nil {
				return err
			}
			roller := g.roller()
			out := cmd.OutOrStdout()
			if crit == "" {
				fmt.Fprintf(out, "%s\n", roller.Roll(expr))
				return nil
			}
			policy, err := parseCritPolicy(crit)
			if err != nil {
				return err
			}
			res := roller.RollCritical(expr, policy)
			for _, r := range res.Rolls {
				fmt.Fprintf(out, "%s\n", r)
			}
			fmt.Fprintf(out, "critical %s = %d\n", res.Policy, res.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&crit, "crit", "", "resolve as a critical: roll-twice, x2 or x3")
	return cmd
}
