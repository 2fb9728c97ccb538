package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/portfolio-ai/internal/db"
	"github.com/ziadkadry99/portfolio-ai/internal/interactions"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent AI interactions",
	Long:  `Lists recorded insight requests with their outcome, token usage, estimated cost and latency.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete interactions older than a given age",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	historyCmd.Flags().String("use-case", "", "only show this use case")
	historyCmd.Flags().String("outcome", "", "only show this outcome: success, fallback or error")
	historyCmd.Flags().Int("limit", 20, "maximum number of interactions")
	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "age of interactions to delete")
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func openInteractions(ctx context.Context) (*interactions.Store, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Open(ctx, string(cfg.Database.Driver), cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	return interactions.NewStore(database), func() { database.Close() }, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openInteractions(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	useCase, _ := cmd.Flags().GetString("use-case")
	outcome, _ := cmd.Flags().GetString("outcome")
	limit, _ := cmd.Flags().GetInt("limit")

	records, err := store.List(cmd.Context(), interactions.Filter{UseCase: useCase, Outcome: outcome, Limit: limit})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No interactions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tUSE CASE\tOUTCOME\tTOKENS\tCOST\tLATENCY\tPROMPT")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t$%s\t%s\t%s\n",
			humanize.Time(r.CreatedAt),
			r.UseCase,
			outcomeLabel(r),
			humanize.Comma(int64(r.InputTokens+r.OutputTokens)),
			humanize.FormatFloat("#,###.####", r.CostUSD),
			(time.Duration(r.LatencyMS) * time.Millisecond).String(),
			shorten(r.Prompt, 48),
		)
	}
	return w.Flush()
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	store, closeDB, err := openInteractions(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	age, _ := cmd.Flags().GetDuration("older-than")
	cutoff := time.Now().Add(-age)
	n, err := store.DeleteBefore(cmd.Context(), cutoff)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s interactions recorded before %s\n", humanize.Comma(n), humanize.Time(cutoff))
	return nil
}

func outcomeLabel(r interactions.Record) string {
	if r.ErrorKind != "" {
		return r.Outcome + " (" + r.ErrorKind + ")"
	}
	return r.Outcome
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
