package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	dnd "github.com/grindlemire/go-dnd"
	"github.com/grindlemire/go-dnd/internal/debug"
	"github.com/grindlemire/go-dnd/internal/store"
)

func newRenumberCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "renumber [column...]",
		Short: "Rewrite order keys to 1..n, keeping card order",
		Long: "Renumber rewrites the order keys of the named columns (all columns\n" +
			"when none are given) to 1..n in display order. Cards already in\n" +
			"place are not written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(g.cfg.Store.Path, store.WithLogger(debug.Logger()))
			if err != nil {
				return err
			}
			defer st.Close()

			board, err := st.LoadBoard(cmd.Context())
			if err != nil {
				return err
			}
			return renumber(cmd.OutOrStdout(), board, st, args, g.cfg.MutatorOptions()...)
		},
	}
}

// renumber renumbers columns through a Mutator and drains its results on
// the calling goroutine until every write has landed.
func renumber(w io.Writer, board *dnd.Board, p dnd.Persister, columns []string, opts ...dnd.MutatorOption) error {
	if len(columns) == 0 {
		columns = board.Containers()
	}

	sched := dnd.NewLoopScheduler(0)
	defer sched.Close()
	m := dnd.NewMutator(board, p, sched, append(opts, dnd.WithMutatorLogger(debug.Logger()))...)

	var failed []dnd.MutationError
	unsubscribe := m.Errors().Subscribe(func(e dnd.MutationError) {
		failed = append(failed, e)
	})
	defer unsubscribe()

	changed := make(map[string]int, len(columns))
	for _, col := range columns {
		n, err := m.Renumber(col)
		if err != nil {
			return err
		}
		changed[col] = n
	}

	done := make(chan struct{})
	go func() {
		m.Wait()
		close(done)
	}()
	drain(sched, done)

	for _, col := range columns {
		fmt.Fprintf(w, "%s: %d cards renumbered\n", col, changed[col])
	}
	if len(failed) > 0 {
		for _, e := range failed {
			fmt.Fprintf(w, "failed: %s: %v\n", e.Description, e)
		}
		return fmt.Errorf("%d renumber writes failed", len(failed))
	}
	return nil
}

// drain runs queued callbacks until done closes, then flushes whatever is
// left without blocking.
func drain(sched *dnd.LoopScheduler, done <-chan struct{}) {
	for {
		select {
		case fn := <-sched.Queue():
			fn()
		case <-done:
			for {
				select {
				case fn := <-sched.Queue():
					fn()
				default:
					return
				}
			}
		}
	}
}
