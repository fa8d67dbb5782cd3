package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grindlemire/go-dnd/internal/debug"
	"github.com/grindlemire/go-dnd/internal/store"
)

func newBoardCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(g.cfg.Store.Path, store.WithLogger(debug.Logger()))
			if err != nil {
				return err
			}
			defer st.Close()

			m, err := newModel(cmd.Context(), g.cfg, st)
			if err != nil {
				return err
			}
			defer m.close()

			debug.Logger().Info("board opened", zap.String("store", g.cfg.Store.Path))
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(cmd.Context()),
			)
			_, err = p.Run()
			return err
		},
	}
}
