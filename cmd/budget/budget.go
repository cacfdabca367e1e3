// Package budget manages monthly category budgets
package budget

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

// Cmd represents the budget command group
var Cmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage monthly category budgets",
}

var setCmd = &cobra.Command{
	Use:   "set <category> <monthly limit>",
	Short: "Set the monthly limit for a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := currencyutils.ParseAmount(args[1])
		if err != nil {
			return fmt.Errorf("invalid monthly limit %q: %w", args[1], err)
		}
		return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
			b, err := c.GetAnalytics().SetBudget(ctx, args[0], limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget for %s set to %s\n", b.Category, b.MonthlyLimit.StringFixed(2))
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every budget with this month's spending",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
			status, err := c.GetAnalytics().BudgetStatus(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(status) == 0 {
				fmt.Fprintln(out, "No budgets set.")
				return nil
			}

			categories := make([]string, 0, len(status))
			for category := range status {
				categories = append(categories, category)
			}
			sort.Strings(categories)

			over := color.New(color.FgRed).SprintFunc()
			under := color.New(color.FgGreen).SprintFunc()

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Category", "Limit", "Spent", "Remaining"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, category := range categories {
				s := status[category]
				remaining := currencyutils.FormatAmount(s.Remaining(), currencyutils.DefaultCurrency)
				if s.OverBudget() {
					remaining = over(remaining)
				} else {
					remaining = under(remaining)
				}
				table.Append([]string{
					category,
					currencyutils.FormatAmount(s.Limit, currencyutils.DefaultCurrency),
					currencyutils.FormatAmount(s.Spent, currencyutils.DefaultCurrency),
					remaining,
				})
			}
			table.Render()
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import budgets from a YAML file",
	Long: `Imports monthly limits from a YAML file of the form

  budgets:
    Food: 5000
    Transport: 2000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
			imported, err := c.GetAnalytics().ImportBudgets(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d budgets\n", len(imported))
			return nil
		})
	},
}

func init() {
	Cmd.AddCommand(setCmd, listCmd, importCmd)
}
