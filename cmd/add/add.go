// Package add stores a single transaction
package add

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/cmd/root"
	"fintrack/internal/container"
	"fintrack/internal/currencyutils"
	"fintrack/internal/dateutils"
	"fintrack/internal/ingest"
	"fintrack/internal/models"

	"github.com/spf13/cobra"
)

var (
	amount      string
	date        string
	kind        string
	category    string
	description string
)

// Cmd represents the add command
var Cmd = &cobra.Command{
	Use:   "add <raw text>",
	Short: "Add a transaction, predicting its category",
	Long: `Adds a transaction. With only a raw text (for example a bank SMS) the
amount, direction and description are parsed from it. With --amount the
transaction is entered manually; a missing --category is predicted.`,
	Example: `  fintrack add "INR 450.00 debited at Swiggy via UPI"
  fintrack add --amount 1200 --type expense --description "Electricity bill"`,
	RunE: addFunc,
}

func init() {
	Cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount (switches to manual entry)")
	Cmd.Flags().StringVarP(&date, "date", "d", "", "Date YYYY-MM-DD (default today)")
	Cmd.Flags().StringVarP(&kind, "type", "t", "expense", "expense or income")
	Cmd.Flags().StringVar(&category, "category", "", "Category (predicted when empty)")
	Cmd.Flags().StringVar(&description, "description", "", "Description")
}

func addFunc(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")
	if amount == "" && strings.TrimSpace(raw) == "" {
		return fmt.Errorf("either a raw text argument or --amount is required")
	}

	return root.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		var (
			tx  models.Transaction
			err error
		)
		if amount == "" {
			tx, err = c.GetIngest().PredictAndSave(ctx, raw)
		} else {
			value, perr := currencyutils.ParseAmount(amount)
			if perr != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, perr)
			}
			day := date
			if day == "" {
				day = dateutils.ToISODate(time.Now())
			}
			tx, err = c.GetIngest().SaveManual(ctx, ingest.ManualInput{
				Date:        day,
				Amount:      value,
				Type:        kind,
				Category:    category,
				Description: description,
				RawText:     raw,
			})
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved #%d %s %s %s -> %s\n",
			tx.ID, tx.Date, tx.Type, tx.Amount.StringFixed(2), tx.CategoryName())
		return nil
	})
}
