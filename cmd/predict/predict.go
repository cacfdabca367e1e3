// Package predict categorizes text without storing it
package predict

import (
	"context"
	"fmt"
	"strings"

	"fintrack/cmd/root"
	"fintrack/internal/container"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var explain bool

// Cmd represents the predict command
var Cmd = &cobra.Command{
	Use:   "predict <text>",
	Short: "Predict the spending category of a transaction text",
	Long: `Predicts the category of a raw transaction text such as a bank SMS.
The model is loaded from disk, or trained when none exists. When no model can
be produced the answer is Uncategorized.`,
	Args: cobra.MinimumNArgs(1),
	RunE: predictFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&explain, "explain", "e", false, "Show why the fallback category was used")
}

func predictFunc(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		res := c.GetCategorizer().Categorize(ctx, text)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.Category)
		if explain && !res.OK() {
			color.New(color.FgYellow).Fprintf(out, "fallback: %s: %v\n", res.Kind, res.Err)
		}
		return nil
	})
}
