package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/luminacrm/lumina/internal/derive"
	"github.com/luminacrm/lumina/internal/entity"
)

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show the pipeline as a kanban board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			_, store, err := newPipeline(ctx)
			if err != nil {
				return err
			}

			cols := derive.Kanban(store.Snapshot())

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, status := range entity.Statuses {
				leads := cols[status]
				fmt.Fprintf(w, "%s (%d)\n", status, len(leads))
				for _, l := range leads {
					fmt.Fprintf(w, "  %s\t%s\t%.2f\n", l.ID, l.Name, l.Value)
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}
}
