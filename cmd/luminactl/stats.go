package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/luminacrm/lumina/internal/derive"
	"github.com/luminacrm/lumina/internal/entity"
)

func newStatsCmd() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics computed from the lead cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			_, store, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			leads := store.Snapshot()

			stats := derive.LeadStats(leads)
			fmt.Printf("Total leads:      %d\n", stats.Total)
			fmt.Printf("New:              %d\n", stats.New)
			fmt.Printf("Contacted:        %d\n", stats.Contacted)
			fmt.Printf("Converted:        %d\n", stats.Converted)
			fmt.Printf("Lost:             %d\n", stats.Lost)
			fmt.Printf("Pipeline value:   %.2f\n", stats.Value)
			fmt.Printf("Conversion rate:  %.1f%%\n", derive.ConversionRate(stats))
			fmt.Printf("Avg deal size:    %.2f\n", derive.AvgDealSize(stats))

			if trend := periodTrend(leads, window); trend != nil {
				fmt.Printf("Trend vs previous %d days: %+d%%\n", window, *trend)
			}

			fmt.Println("\nBy source:")
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, b := range derive.BySource(leads) {
				fmt.Fprintf(w, "  %s\t%d\t%.2f\n", b.Label, b.Count, b.Value)
			}
			w.Flush()

			fmt.Printf("\nLast %d days:\n", window)
			w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, b := range derive.TimeSeries(leads, window) {
				fmt.Fprintf(w, "  %s\t%d\t%.2f\n", b.Day.Format("2006-01-02"), b.Count, b.Value)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&window, "window", 7, "trailing window in days")
	return cmd
}

// periodTrend compares lead counts in the current window against the
// window before it.
func periodTrend(leads []entity.Lead, window int) *int {
	if window <= 0 {
		return nil
	}
	now := time.Now().UTC()
	currentStart := now.AddDate(0, 0, -window)
	previousStart := now.AddDate(0, 0, -2*window)

	var current, previous float64
	for _, l := range leads {
		switch {
		case l.DateAdded.After(currentStart):
			current++
		case l.DateAdded.After(previousStart):
			previous++
		}
	}
	return derive.Trend(current, &previous)
}
