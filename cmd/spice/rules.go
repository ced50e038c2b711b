package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/ofx"
	"github.com/Veraticus/spice-ledger/internal/pattern"
)

// ruleSet pairs compiled import rules with the categories they resolve to.
type ruleSet struct {
	matcher     *pattern.Matcher
	categories  []model.Category
	categoryIDs []string
}

// newRuleSet compiles rules and resolves every rule's category up front so a
// bad rule fails before anything is imported.
func newRuleSet(ctx context.Context, l *ledger.Ledger, rules []pattern.Rule) (*ruleSet, error) {
	matcher, err := pattern.NewMatcher(rules)
	if err != nil {
		return nil, err
	}

	rs := &ruleSet{
		matcher:     matcher,
		categories:  make([]model.Category, len(rules)),
		categoryIDs: make([]string, len(rules)),
	}
	for i, rule := range rules {
		c, err := resolveCategory(ctx, l, rule.Category, pattern.ExpectedKind(rule.Direction))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category for rule %q: %w", rule.Name, err)
		}
		if err := pattern.ValidateCategory(rule, *c); err != nil {
			return nil, err
		}
		rs.categories[i] = *c
		rs.categoryIDs[i] = c.ID
	}
	return rs, nil
}

func (rs *ruleSet) match(s pattern.Subject) (pattern.Rule, *model.Category, bool) {
	rule, index, ok := rs.matcher.Match(s)
	if !ok {
		return pattern.Rule{}, nil, false
	}
	return rule, &rs.categories[index], true
}

func (rs *ruleSet) categoryFor(e ofx.Entry) *string {
	_, index, ok := rs.matcher.Match(pattern.Subject{
		Description: e.Description,
		AmountCents: e.AmountCents,
		Credit:      e.Credit,
	})
	if !ok {
		return nil
	}
	id := rs.categoryIDs[index]
	return &id
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect import rules",
		Long: `Import rules live in the configuration file under import.rules and file
imported statement lines under categories:

  import:
    rules:
      - name: coffee
        pattern: starbucks
        direction: debit
        category: Dining
      - name: rent
        pattern: "^acme property"
        regex: true
        amount_condition: ge
        amount: 1500
        category: Rent
        priority: 10`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(testRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List import rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(s *session) error {
				out := cmd.OutOrStdout()
				if len(s.cfg.Import.Rules) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No import rules configured."))
					return nil
				}

				rs, err := newRuleSet(cmd.Context(), s.ledger, s.cfg.Import.Rules)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, rs.matcher.Len())
				for _, rule := range rs.matcher.Rules() {
					kind := "any"
					if rule.Direction != pattern.DirectionAny {
						kind = string(rule.Direction)
					}
					match := rule.Pattern
					if rule.Regex {
						match = "/" + rule.Pattern + "/"
					}
					rows = append(rows, []string{
						rule.Name, match, kind, describeAmount(rule), rule.Category, strconv.Itoa(rule.Priority),
					})
				}
				fmt.Fprint(out, cli.RenderTable([]string{"Name", "Pattern", "Direction", "Amount", "Category", "Priority"}, rows))
				return nil
			})
		},
	}
}

func testRuleCmd() *cobra.Command {
	var (
		amount string
		credit bool
	)

	cmd := &cobra.Command{
		Use:   "test <description>",
		Short: "Show which rule would file a statement line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := model.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}

			return withSession(cmd, func(s *session) error {
				rs, err := newRuleSet(cmd.Context(), s.ledger, s.cfg.Import.Rules)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				rule, category, ok := rs.match(pattern.Subject{Description: args[0], AmountCents: cents, Credit: credit})
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("No rule matches; the line would use the default category."))
					return nil
				}

				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Rule %q files it under %s category %q",
					rule.Name, category.Kind, category.Name)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "1", "line amount such as 12.34")
	cmd.Flags().BoolVar(&credit, "credit", false, "treat the line as money coming in")

	return cmd
}

func describeAmount(rule pattern.Rule) string {
	switch rule.AmountCondition {
	case pattern.AmountAny:
		return "any"
	case pattern.AmountRange:
		lo, hi := rule.AmountMin, rule.AmountMax
		if lo == "" {
			lo = "*"
		}
		if hi == "" {
			hi = "*"
		}
		return lo + ".." + hi
	default:
		return string(rule.AmountCondition) + " " + rule.Amount
	}
}
