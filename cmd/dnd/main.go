// Package main provides the dnd command, a terminal kanban board that
// drives the drag engine against a sqlite store.
//
// Usage:
//
//	dnd board                 Open the interactive board
//	dnd seed                  Create the default columns and sample cards
//	dnd renumber [column...]  Rewrite order keys to 1..n
//	dnd version               Print version information
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grindlemire/go-dnd/internal/config"
	"github.com/grindlemire/go-dnd/internal/debug"
)

const version = "0.1.0"

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	dbPath     string
	logPath    string

	cfg config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "dnd",
		Short:         "Terminal kanban board driven by the go-dnd engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return debug.Close()
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (TOML)")
	root.PersistentFlags().StringVar(&g.dbPath, "db", "", "sqlite database path (overrides store.path)")
	root.PersistentFlags().StringVar(&g.logPath, "debug-log", "", "write debug logs to this file")

	root.AddCommand(
		newBoardCmd(g),
		newSeedCmd(g),
		newRenumberCmd(g),
		newVersionCmd(),
	)
	return root
}

func (g *globals) load() error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.dbPath != "" {
		cfg.Store.Path = g.dbPath
	}
	if g.logPath != "" {
		cfg.Log.Path = g.logPath
	}
	if cfg.Log.Path != "" {
		if err := debug.Init(cfg.Log.Path); err != nil {
			return fmt.Errorf("init debug log: %w", err)
		}
	}
	g.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "dnd version %s\n", version)
			return nil
		},
	}
}
