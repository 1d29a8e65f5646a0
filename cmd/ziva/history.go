package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/store"
	"github.com/raysh454/ziva/internal/utils"
)

var (
	historyLimit int
	scansLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history <link>",
	Short: "Show recorded prices for a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "List recent scans",
	Args:  cobra.NoArgs,
	RunE:  runScans,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of observations to show")
	scansCmd.Flags().IntVar(&scansLimit, "limit", 20, "Number of scans to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	key, err := utils.ProductKey(args[0])
	if err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}

	a, err := loadApplication(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	st := newStyles()

	stats, err := a.Store.Stats(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		st.alert.Fprintf(out, "No prices recorded for %s\n", key)
		return nil
	}
	if err != nil {
		return err
	}
	observations, err := a.Store.Observations(ctx, key, historyLimit)
	if err != nil {
		return err
	}
	printHistory(out, st, stats, observations)
	return nil
}

func printHistory(out io.Writer, st styles, stats *store.Stats, observations []store.Observation) {
	st.heading.Fprintln(out, stats.ProductKey)
	fmt.Fprintf(out, "  Lowest:  %s\n", st.safe.Sprint(scan.FormatPrice(stats.Lowest)))
	fmt.Fprintf(out, "  Average: %s\n", scan.FormatPrice(stats.Average))
	fmt.Fprintf(out, "  Seen %d times between %s and %s\n",
		stats.Count, stats.FirstSeen.Format(time.DateOnly), stats.LastSeen.Format(time.DateOnly))
	fmt.Fprintln(out)
	for _, o := range observations {
		fmt.Fprintf(out, "  %s  %-10s %s\n",
			st.dim.Sprint(o.ObservedAt.Format(time.DateTime)),
			scan.FormatPrice(o.Price),
			utils.Truncate(o.Title, 60))
	}
}

func runScans(cmd *cobra.Command, args []string) error {
	a, err := loadApplication(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.Store.RecentScans(commandContext(cmd), scansLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	st := newStyles()
	if len(records) == 0 {
		st.alert.Fprintln(out, "No scans recorded yet")
		return nil
	}
	for _, r := range records {
		c := st.neutral
		switch scan.Classify(r.Verdict).Class {
		case scan.ClassSafe:
			c = st.safe
		case scan.ClassScam:
			c = st.scam
		}
		fmt.Fprintf(out, "%s  %s  %s\n",
			st.dim.Sprint(r.CreatedAt.Format(time.DateTime)),
			c.Sprint(r.Verdict),
			utils.Truncate(r.URL, 80))
		if r.Reason != "" {
			fmt.Fprintf(out, "    %s\n", r.Reason)
		}
	}
	return nil
}
