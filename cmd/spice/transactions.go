package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"transaction", "tx"},
		Short:   "Manage transactions",
		Long:    `List, add, show, update, and delete dated money movements.`,
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(getTransactionCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var from, to, category, kindFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long:  `Display transactions newest first. All filters combine; date bounds are inclusive.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter service.TransactionFilter
			var err error

			if filter.Kind, err = parseKindFlag(kindFlag); err != nil {
				return err
			}
			if filter.From, err = parseDateFlag("from", from); err != nil {
				return err
			}
			if filter.To, err = parseDateFlag("to", to); err != nil {
				return err
			}

			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				if category != "" {
					c, err := resolveCategory(ctx, s.ledger, category, filter.Kind)
					if err != nil {
						return fmt.Errorf("failed to resolve category: %w", err)
					}
					filter.CategoryID = &c.ID
				}

				txns, err := s.ledger.Transactions.List(ctx, filter)
				if err != nil {
					return fmt.Errorf("failed to list transactions: %w", describeError(err))
				}

				out := cmd.OutOrStdout()
				if len(txns) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No transactions found."))
					return nil
				}

				rows := make([][]string, 0, len(txns))
				for _, t := range txns {
					rows = append(rows, []string{
						t.PostedDate.String(),
						cli.FormatAmount(t.AmountCents, t.CategoryKind),
						stringOrDash(t.CategoryName),
						t.Description,
						t.ID,
					})
				}
				fmt.Fprint(out, cli.RenderTable([]string{"Date", "Amount", "Category", "Description", "ID"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "earliest posted date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "latest posted date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category id or name")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "only transactions in categories of this kind (income, expense)")

	return cmd
}

func addTransactionCmd() *cobra.Command {
	var date, description, amount, category, kindFlag string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a transaction. Amounts are positive decimals such as 12.34; the
category's kind decides whether it counts as income or expense.`,
		Example: `  spice transactions add --amount 12.34 --description "Coffee beans" --category Groceries
  spice transactions add --date 2024-03-01 --amount 5000 --description Paycheck --category Salary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cents, err := model.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			kind, err := parseKindFlag(kindFlag)
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				input := service.TransactionInput{
					PostedDate:  date,
					Description: description,
					AmountCents: cents,
				}
				if input.PostedDate == "" {
					input.PostedDate = model.DateOf(time.Now()).String()
				}
				if category != "" {
					c, err := resolveCategory(ctx, s.ledger, category, kind)
					if err != nil {
						return fmt.Errorf("failed to resolve category: %w", err)
					}
					input.CategoryID = &c.ID
				}

				txn, err := s.ledger.Transactions.Create(ctx, input)
				if err != nil {
					return fmt.Errorf("failed to create transaction: %w", describeError(err))
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s on %s (ID: %s)",
					txn.AmountCents, txn.PostedDate, txn.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "posted date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the money was for")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount such as 12.34")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category id or name (omit for uncategorized)")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "kind used to disambiguate a category name")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func getTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"show"},
		Short:   "Show one transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				t, err := s.ledger.Transactions.Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to get transaction: %w", describeError(err))
				}

				kind := "-"
				if t.CategoryKind != nil {
					kind = cli.FormatKind(*t.CategoryKind)
				}
				content := fmt.Sprintf("ID:       %s\nDate:     %s\nAmount:   %s\nCategory: %s (%s)",
					t.ID, t.PostedDate, cli.FormatAmount(t.AmountCents, t.CategoryKind), stringOrDash(t.CategoryName), kind)
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(t.Description, content))
				return nil
			})
		},
	}
}

func updateTransactionCmd() *cobra.Command {
	var date, description, amount, category, kindFlag string
	var uncategorize bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a transaction",
		Long: `Replace fields of a transaction. Fields that are not given keep their current
value; --uncategorize clears the category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if uncategorize && flags.Changed("category") {
				return fmt.Errorf("--category and --uncategorize are mutually exclusive")
			}
			kind, err := parseKindFlag(kindFlag)
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				current, err := s.ledger.Transactions.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get transaction: %w", describeError(err))
				}

				input, err := mergeTransactionInput(cmd, s.ledger, current, transactionFlags{
					date:         date,
					description:  description,
					amount:       amount,
					category:     category,
					kind:         kind,
					uncategorize: uncategorize,
				})
				if err != nil {
					return err
				}

				updated, err := s.ledger.Transactions.Update(ctx, current.ID, input)
				if err != nil {
					return fmt.Errorf("failed to update transaction: %w", describeError(err))
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated transaction %s", updated.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "posted date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the money was for")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount such as 12.34")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category id or name")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "kind used to disambiguate a category name")
	cmd.Flags().BoolVar(&uncategorize, "uncategorize", false, "remove the category")

	return cmd
}

type transactionFlags struct {
	kind         *model.CategoryKind
	date         string
	description  string
	amount       string
	category     string
	uncategorize bool
}

// mergeTransactionInput overlays the flags the user changed onto current.
func mergeTransactionInput(cmd *cobra.Command, l *ledger.Ledger, current *model.Transaction, f transactionFlags) (service.TransactionInput, error) {
	flags := cmd.Flags()
	input := service.TransactionInput{
		CategoryID:  current.CategoryID,
		PostedDate:  current.PostedDate.String(),
		Description: current.Description,
		AmountCents: current.AmountCents,
	}

	if flags.Changed("date") {
		input.PostedDate = f.date
	}
	if flags.Changed("description") {
		input.Description = f.description
	}
	if flags.Changed("amount") {
		cents, err := model.ParseAmount(f.amount)
		if err != nil {
			return input, fmt.Errorf("invalid --amount %q: %w", f.amount, err)
		}
		input.AmountCents = cents
	}
	switch {
	case f.uncategorize:
		input.CategoryID = nil
	case flags.Changed("category"):
		c, err := resolveCategory(cmd.Context(), l, f.category, f.kind)
		if err != nil {
			return input, fmt.Errorf("failed to resolve category: %w", err)
		}
		input.CategoryID = &c.ID
	}

	return input, nil
}

func deleteTransactionCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				t, err := s.ledger.Transactions.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get transaction: %w", describeError(err))
				}

				ok, err := confirmed(cmd, yes, fmt.Sprintf("Delete %s %q from %s?", t.AmountCents, t.Description, t.PostedDate))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Deletion cancelled."))
					return nil
				}

				if err := s.ledger.Transactions.Delete(ctx, t.ID); err != nil {
					return fmt.Errorf("failed to delete transaction: %w", describeError(err))
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted transaction %s", t.ID)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")

	return cmd
}

func parseDateFlag(name, raw string) (*model.Date, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", name, raw)
	}
	return &d, nil
}
