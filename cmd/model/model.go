// Package model reports the state of the categorization model
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fintrack/cmd/root"
	"fintrack/internal/container"

	"github.com/spf13/cobra"
)

var asJSON bool

// Cmd represents the model command
var Cmd = &cobra.Command{
	Use:   "model",
	Short: "Show the categorization model status",
	Long: `Loads the persisted model (training one when none exists) and prints its
state, version, training time, sample count, categories and vocabulary size.`,
	Args: cobra.NoArgs,
	RunE: modelFunc,
}

func init() {
	Cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")
}

func modelFunc(cmd *cobra.Command, args []string) error {
	return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		// Failures are reported through Info.
		_, _ = c.GetModels().LoadOrTrain(ctx)
		info := c.GetModels().Info()

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Fprintf(out, "State:      %s\n", info.State)
		if info.Version != "" {
			fmt.Fprintf(out, "Version:    %s\n", info.Version)
			fmt.Fprintf(out, "Trained at: %s\n", info.TrainedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Samples:    %d\n", info.Samples)
			fmt.Fprintf(out, "Categories: %v\n", info.Classes)
			fmt.Fprintf(out, "Features:   %d\n", info.Features)
		}
		if info.LastError != "" {
			fmt.Fprintf(out, "Last error: %s\n", info.LastError)
		}
		return nil
	})
}
