package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func summaryCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary [YYYY-MM]",
		Short: "Show the monthly cash-flow summary",
		Long: `Total income, expense, and net for one calendar month, broken down by
category. Defaults to the current month. Uncategorized transactions are
counted but not totalled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := time.Now().Format("2006-01")
			if len(args) == 1 {
				month = args[0]
			}

			return withSession(cmd, func(s *session) error {
				summary, err := s.ledger.Summaries.MonthlySummary(cmd.Context(), month)
				if err != nil {
					return fmt.Errorf("failed to summarize %s: %w", month, describeError(err))
				}

				switch format {
				case "json":
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(summary)
				case "table":
					_, err := fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
					return err
				default:
					return fmt.Errorf("invalid --format %q: use table or json", format)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")

	return cmd
}

func renderSummary(summary *model.MonthlySummary) string {
	income := model.CategoryKindIncome
	expense := model.CategoryKindExpense

	var b strings.Builder
	fmt.Fprintf(&b, "Income:       %s\n", cli.FormatAmount(summary.IncomeCents, &income))
	fmt.Fprintf(&b, "Expense:      %s\n", cli.FormatAmount(summary.ExpenseCents, &expense))
	fmt.Fprintf(&b, "Net:          %s\n", cli.BoldStyle.Render(summary.NetCents.String()))
	fmt.Fprintf(&b, "Transactions: %d", summary.TransactionCount)

	if len(summary.Categories) == 0 {
		b.WriteString("\n\n" + cli.SubtleStyle.Render("No categorized transactions this month."))
	} else {
		rows := make([][]string, 0, len(summary.Categories))
		for _, c := range summary.Categories {
			kind := c.Kind
			rows = append(rows, []string{c.Name, cli.FormatKind(c.Kind), cli.FormatAmount(c.TotalCents, &kind)})
		}
		b.WriteString("\n\n" + strings.TrimRight(cli.RenderTable([]string{"Category", "Kind", "Total"}, rows), "\n"))
	}

	return cli.RenderBox(fmt.Sprintf("%s %s Cash Flow", cli.ChartIcon, summary.Month), b.String())
}
