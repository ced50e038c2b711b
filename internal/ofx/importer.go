package ofx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// ImportOptions controls how entries become transactions.
type ImportOptions struct {
	// IncomeCategoryID is assigned to credits when set.
	IncomeCategoryID *string
	// ExpenseCategoryID is assigned to debits when set.
	ExpenseCategoryID *string
	// CategoryFor picks a category for an entry. A nil result falls back to
	// IncomeCategoryID or ExpenseCategoryID.
	CategoryFor func(Entry) *string
	// OnEntry is called after each entry has been handled.
	OnEntry func()
	// DryRun counts entries without writing anything.
	DryRun bool
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Failures   []ImportFailure
	Created    int
	Duplicates int
	// Matched counts entries filed by CategoryFor.
	Matched int
	// Pending counts entries a dry run would have written.
	Pending int
}

// ImportFailure records an entry the ledger refused.
type ImportFailure struct {
	Err   error
	Entry Entry
}

// Importer feeds parsed statement entries into the ledger.
type Importer struct {
	transactions service.TransactionService
	seen         map[string]struct{}
}

// NewImporter creates an importer writing through transactions. Entries are
// de-duplicated by account and FITID for the lifetime of the importer.
func NewImporter(transactions service.TransactionService) *Importer {
	return &Importer{
		transactions: transactions,
		seen:         make(map[string]struct{}),
	}
}

// Import creates one transaction per entry. Entries the ledger rejects with a
// business error are recorded in the result; any other error aborts the import.
func (im *Importer) Import(ctx context.Context, entries []Entry, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := im.importEntry(ctx, entry, opts, result)
		if opts.OnEntry != nil {
			opts.OnEntry()
		}
		if err != nil {
			return result, err
		}
	}

	slog.Info("Imported OFX entries",
		"created", result.Created,
		"duplicates", result.Duplicates,
		"matched", result.Matched,
		"failed", len(result.Failures),
		"dry_run", opts.DryRun)

	return result, nil
}

func (im *Importer) importEntry(ctx context.Context, entry Entry, opts ImportOptions, result *ImportResult) error {
	if entry.FitID != "" {
		key := entry.AccountID + "/" + entry.FitID
		if _, dup := im.seen[key]; dup {
			result.Duplicates++
			return nil
		}
		im.seen[key] = struct{}{}
	}

	input := service.TransactionInput{
		PostedDate:  entry.PostedDate.String(),
		Description: entry.Description,
		AmountCents: entry.AmountCents,
	}
	if opts.CategoryFor != nil {
		input.CategoryID = opts.CategoryFor(entry)
	}
	switch {
	case input.CategoryID != nil:
		result.Matched++
	case entry.Credit:
		input.CategoryID = opts.IncomeCategoryID
	default:
		input.CategoryID = opts.ExpenseCategoryID
	}

	if opts.DryRun {
		result.Pending++
		return nil
	}

	if _, err := im.transactions.Create(ctx, input); err != nil {
		if common.IsBusinessError(err) {
			result.Failures = append(result.Failures, ImportFailure{Entry: entry, Err: err})
			return nil
		}
		return fmt.Errorf("failed to import transaction %s: %w", entry.FitID, err)
	}

	result.Created++
	return nil
}
