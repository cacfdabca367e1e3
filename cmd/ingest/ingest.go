// Package ingest loads seed data and labels stored transactions
package ingest

import (
	"context"
	"fmt"

	"fintrack/cmd/root"
	"fintrack/internal/container"

	"github.com/spf13/cobra"
)

var seedFile string

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the seed CSV and categorize uncategorized transactions",
	Long: `Loads the seed CSV into an empty database, then predicts a category for
every stored transaction that has none.`,
	RunE: ingestFunc,
}

func init() {
	Cmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed CSV (overrides data.seed_path)")
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		path := seedFile
		if path == "" {
			path = c.GetConfig().Data.SeedPath
		}

		seeded, err := c.GetIngest().Seed(ctx, path)
		if err != nil {
			return err
		}
		labeled, err := c.GetIngest().ApplyPredictions(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d transactions, categorized %d\n", seeded, labeled)
		return nil
	})
}
