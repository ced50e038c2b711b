package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/ofx"
)

type importOFXOptions struct {
	incomeCategory  string
	expenseCategory string
	dryRun          bool
	noProgress      bool
	noRules         bool
}

func importOFXCmd() *cobra.Command {
	var opts importOFXOptions

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.

Lines matching an import rule from the configuration file are filed under
that rule's category. Remaining credits can be filed under an income category
and debits under an expense category; otherwise they are imported
uncategorized. Lines repeated across
files (same account and FITID) are imported once.

Examples:
  # Import single file
  spice import-ofx ~/Downloads/chase_jan_2024.qfx

  # Import all QFX files in a directory, filing lines by direction
  spice import-ofx --income-category Salary --expense-category Groceries ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportOFX(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "preview import without saving")
	cmd.Flags().StringVar(&opts.incomeCategory, "income-category", "", "income category (id or name) for credits")
	cmd.Flags().StringVar(&opts.expenseCategory, "expense-category", "", "expense category (id or name) for debits")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")
	cmd.Flags().BoolVar(&opts.noRules, "no-rules", false, "ignore configured import rules")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string, opts importOFXOptions) error {
	files, err := expandImportPaths(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	handler := cli.NewInterruptHandler(out, "Import").
		WithResumeHint("Transactions imported so far were kept.")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	return withSession(cmd, func(s *session) error {
		importOpts, err := resolveImportCategories(ctx, s.ledger, opts)
		if err != nil {
			return err
		}
		if !opts.noRules {
			rules, err := newRuleSet(ctx, s.ledger, s.cfg.Import.Rules)
			if err != nil {
				return err
			}
			importOpts.CategoryFor = rules.categoryFor
		}

		entries, err := parseImportFiles(ctx, files)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, cli.FormatWarning("No transactions found in any file"))
			return nil
		}

		var bar *progressbar.ProgressBar
		if !opts.noProgress {
			bar = newImportProgressBar(out, len(entries))
			importOpts.OnEntry = func() {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			}
		}

		result, err := ofx.NewImporter(s.ledger.Transactions).Import(ctx, entries, importOpts)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			if handler.WasInterrupted() {
				return nil
			}
			return fmt.Errorf("import failed: %w", err)
		}

		printImportResult(out, result, opts.dryRun)
		return nil
	})
}

// expandImportPaths expands globs; a pattern without matches is kept when it
// names an existing file.
func expandImportPaths(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func parseImportFiles(ctx context.Context, files []string) ([]ofx.Entry, error) {
	parser := ofx.NewParser()
	var entries []ofx.Entry

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		stmt, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"entries", len(stmt.Entries),
			"accounts", len(stmt.Accounts),
			"rejected", stmt.Rejected)
		entries = append(entries, stmt.Entries...)
	}

	return entries, nil
}

func resolveImportCategories(ctx context.Context, l *ledger.Ledger, opts importOFXOptions) (ofx.ImportOptions, error) {
	result := ofx.ImportOptions{DryRun: opts.dryRun}

	if opts.incomeCategory != "" {
		income := model.CategoryKindIncome
		c, err := resolveCategory(ctx, l, opts.incomeCategory, &income)
		if err != nil {
			return result, fmt.Errorf("failed to resolve income category: %w", err)
		}
		if c.Kind != model.CategoryKindIncome {
			return result, fmt.Errorf("category %q is not an income category", c.Name)
		}
		result.IncomeCategoryID = &c.ID
	}

	if opts.expenseCategory != "" {
		expense := model.CategoryKindExpense
		c, err := resolveCategory(ctx, l, opts.expenseCategory, &expense)
		if err != nil {
			return result, fmt.Errorf("failed to resolve expense category: %w", err)
		}
		if c.Kind != model.CategoryKindExpense {
			return result, fmt.Errorf("category %q is not an expense category", c.Name)
		}
		result.ExpenseCategoryID = &c.ID
	}

	return result, nil
}

func newImportProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func printImportResult(w io.Writer, result *ofx.ImportResult, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported, %d duplicates skipped",
			result.Pending, result.Duplicates)))
	} else {
		fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions, %d duplicates skipped",
			result.Created, result.Duplicates)))
	}
	if result.Matched > 0 {
		fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("%d lines filed by import rules", result.Matched)))
	}

	if len(result.Failures) == 0 {
		return
	}

	fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%d lines were rejected:", len(result.Failures))))
	for _, f := range result.Failures {
		fmt.Fprintf(w, "  %s  %-12s %s: %v\n", f.Entry.PostedDate, f.Entry.AmountCents, f.Entry.Description, describeError(f.Err))
	}
}
