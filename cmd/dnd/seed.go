package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	dnd "github.com/grindlemire/go-dnd"
	"github.com/grindlemire/go-dnd/internal/debug"
	"github.com/grindlemire/go-dnd/internal/store"
)

var defaultColumns = []store.Column{
	{ID: "todo", Title: "To do"},
	{ID: "doing", Title: "Doing"},
	{ID: "done", Title: "Done"},
}

var sampleCards = map[string][]string{
	"todo": {
		"Write release notes",
		"Triage open issues",
		"Update screenshots",
		"Review pointer sensor",
		"Profile auto-scroll",
		"Document order keys",
	},
	"doing": {
		"Keyboard dragging",
		"Undo toasts",
	},
	"done": {
		"Collision detection",
	},
}

func newSeedCmd(g *globals) *cobra.Command {
	var empty bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default columns and sample cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(g.cfg.Store.Path, store.WithLogger(debug.Logger()))
			if err != nil {
				return err
			}
			defer st.Close()

			var items []dnd.Item
			if !empty {
				items = sampleItems()
			}
			if err := st.Seed(cmd.Context(), defaultColumns, items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d columns and %d cards into %s\n",
				len(defaultColumns), len(items), g.cfg.Store.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&empty, "empty", false, "create columns only")
	return cmd
}

// sampleItems returns the sample cards with keys 1..n per column.
func sampleItems() []dnd.Item {
	var items []dnd.Item
	for _, col := range defaultColumns {
		titles := sampleCards[col.ID]
		keys := dnd.RenumberedKeys(len(titles))
		for i, title := range titles {
			items = append(items, dnd.Item{
				ID:          uuid.NewString(),
				ContainerID: col.ID,
				OrderKey:    keys[i],
				Payload:     title,
			})
		}
	}
	return items
}
