package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dvh/internal/config"
	"github.com/cory-johannsen/dvh/internal/game/dice"
	"github.com/cory-johannsen/dvh/internal/observability"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	seed    uint64
	content string
	verbose bool
}

func (g *globals) logger() *zap.Logger {
	if !g.verbose {
		return zap.NewNop()
	}
	logger, err := observability.NewLogger(config.LoggingConfig{Level: "debug", Format: "console"})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (g *globals) roller() *dice.Roller {
	src := dice.NewCryptoSource()
	if g.seed != 0 {
		src = dice.NewSeededSource(g.seed)
	}
	return dice.NewLoggedRoller(src, g.logger())
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "dvh",
		Short:         "Dice roller and character sheet inspector",
		Long:          `dvh resolves dice pools and damage rolls and computes derived stats for sheets described in YAML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Uint64Var(&g.seed, "seed", 0, "seed for reproducible rolls (0 = crypto/rand)")
	root.PersistentFlags().StringVar(&g.content, "content", "content", "catalog directory")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log every die at debug level")

	root.AddCommand(newRollCmd(g), newStatsCmd(g), newPointsCmd())
	return root
}
