package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dvh/internal/game/character"
)

func newPointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "points <level>",
		Short: "Show the point pool and die caps at a level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("level %q: %w", args[0], err)
			}
			level = character.ClampLevel(level)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "level %d: %d attribute points, %d manual d6\n",
				level, character.TotalPoints(level), character.ManualDieCap(level))
			avail := character.AvailableBonusDice(level)
			for _, face := range character.BonusFaces() {
				if limit, ok := avail[face]; ok {
					fmt.Fprintf(out, "  d%d: up to %d skills\n", face, limit)
				}
			}
			return nil
		},
	}
}
