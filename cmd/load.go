package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/portfolio-ai/internal/db"
	"github.com/ziadkadry99/portfolio-ai/internal/importer"
	"github.com/ziadkadry99/portfolio-ai/internal/logging"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
	"github.com/ziadkadry99/portfolio-ai/internal/progress"
)

var loadCmd = &cobra.Command{
	Use:   "load <glob>...",
	Short: "Load portfolio fixtures from YAML files",
	Long: `Loads projects, transactions, baselines and documents from YAML files into
the portfolio store. Patterns support ** (e.g. "fixtures/**/*.yml"). Rows
are upserted, so loading the same files twice is safe.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
		ctx := logger.WithContext(context.Background())

		files, err := importer.Expand(args)
		if err != nil {
			return err
		}

		database, err := db.Open(ctx, string(cfg.Database.Driver), cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer database.Close()

		imp := importer.New(portfolio.NewStore(database), progress.NewReporter("Loading fixtures"))
		stats, err := imp.Import(ctx, files)
		if err != nil {
			return fmt.Errorf("loading fixtures: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s rows from %d files: %s projects, %s transactions, %s baselines, %s documents\n",
			humanize.Comma(int64(stats.Rows())), stats.Files,
			humanize.Comma(int64(stats.Projects)), humanize.Comma(int64(stats.Transactions)),
			humanize.Comma(int64(stats.Baselines)), humanize.Comma(int64(stats.Documents)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
