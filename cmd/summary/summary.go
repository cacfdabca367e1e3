// Package summary prints the dashboard figures
package summary

import (
	"context"
	"fmt"
	"sort"

	"fintrack/cmd/root"
	"fintrack/internal/container"
	"fintrack/internal/currencyutils"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var days int

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Show income, expenses and spending by category",
	Long: `Shows total income, total expense and net savings over the last N days,
the spending breakdown by category and recommendations.`,
	Args: cobra.NoArgs,
	RunE: summaryFunc,
}

func init() {
	Cmd.Flags().IntVarP(&days, "days", "d", 0, "Window in days (default analytics.window_days)")
}

func summaryFunc(cmd *cobra.Command, args []string) error {
	if days < 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}
	return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		svc := c.GetAnalytics()
		window := days
		if window == 0 {
			window = svc.WindowDays()
		}

		sum, err := svc.Summary(ctx, window)
		if err != nil {
			return err
		}
		breakdown, err := svc.Breakdown(ctx, window)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		bold.Fprintf(out, "Last %d days\n", window)

		totals := tablewriter.NewWriter(out)
		totals.SetHeader([]string{"Income", "Expense", "Net savings"})
		totals.Append([]string{
			currencyutils.FormatAmount(sum.TotalIncome, currencyutils.DefaultCurrency),
			currencyutils.FormatAmount(sum.TotalExpense, currencyutils.DefaultCurrency),
			currencyutils.FormatAmount(sum.NetSavings, currencyutils.DefaultCurrency),
		})
		totals.Render()

		if len(breakdown) > 0 {
			categories := make([]string, 0, len(breakdown))
			for category := range breakdown {
				categories = append(categories, category)
			}
			sort.Slice(categories, func(i, j int) bool {
				return breakdown[categories[i]].GreaterThan(breakdown[categories[j]])
			})

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Category", "Spent"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, category := range categories {
				table.Append([]string{category, currencyutils.FormatAmount(breakdown[category], currencyutils.DefaultCurrency)})
			}
			table.Render()
		}

		tip := color.New(color.FgCyan)
		for _, rec := range sum.Recommendations {
			tip.Fprintf(out, "* %s\n", rec)
		}
		return nil
	})
}
