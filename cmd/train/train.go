// Package train retrains the categorization model
package train

import (
	"context"
	"fmt"

	"fintrack/cmd/root"
	"fintrack/internal/container"
	"fintrack/internal/corpus"

	"github.com/spf13/cobra"
)

var (
	seedFile string
	fromDB   bool
)

// Cmd represents the train command
var Cmd = &cobra.Command{
	Use:   "train",
	Short: "Train the categorization model and persist it",
	Long: `Fits a new TF-IDF + Naive Bayes bundle from the configured corpus (or the
given seed file, or the categorized transactions in the database) and
replaces the persisted model. A failed run leaves the previous model in place.`,
	RunE: trainFunc,
}

func init() {
	Cmd.Flags().StringVarP(&seedFile, "file", "f", "", "Train from this seed CSV instead of the configured corpus")
	Cmd.Flags().BoolVar(&fromDB, "from-db", false, "Train from categorized transactions in the database")
	Cmd.MarkFlagsMutuallyExclusive("file", "from-db")
}

func trainFunc(cmd *cobra.Command, args []string) error {
	return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		var src corpus.Source
		switch {
		case seedFile != "":
			src = corpus.NewCSVSource(seedFile, c.GetConfig().DelimiterRune())
		case fromDB:
			src = &corpus.StoreSource{Store: c.GetStore()}
		}

		bundle, err := c.GetModels().Retrain(ctx, src)
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Model %s trained on %d samples\n", bundle.ID, bundle.Samples)
		fmt.Fprintf(out, "Categories: %v\n", bundle.Classes())
		fmt.Fprintf(out, "Features:   %d\n", bundle.Vectorizer.Features())
		return nil
	})
}
