// Package export writes stored transactions as CSV
package export

import (
	"context"
	"fmt"

	"fintrack/cmd/root"
	"fintrack/internal/container"
	"fintrack/internal/corpus"
	"fintrack/internal/fileutils"
	"fintrack/internal/logging"

	"github.com/spf13/cobra"
)

var output string

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export all transactions as CSV in the seed file layout",
	Long: `Writes every stored transaction as CSV with the columns
Date, Raw_Text, Amount, Type and Manual_Category, so the file can be used
as a seed or training corpus.`,
	Args: cobra.NoArgs,
	RunE: exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
}

func exportFunc(cmd *cobra.Command, args []string) error {
	return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		txs, err := c.GetStore().ListTransactions(ctx)
		if err != nil {
			return err
		}
		rows := make([]corpus.SeedRow, 0, len(txs))
		for i := len(txs) - 1; i >= 0; i-- {
			rows = append(rows, corpus.SeedRowOf(txs[i]))
		}

		delimiter := c.GetConfig().DelimiterRune()
		if output == "" {
			return corpus.WriteSeedFile(cmd.OutOrStdout(), rows, delimiter)
		}

		f, err := fileutils.CreateFile(output)
		if err != nil {
			return err
		}
		if err := corpus.WriteSeedFile(f, rows, delimiter); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
		c.GetLogger().Info("Transactions exported",
			logging.F(logging.FieldFile, output),
			logging.F(logging.FieldCount, len(rows)))
		return nil
	})
}
