package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// SummaryEngine aggregates transactions into monthly totals.
type SummaryEngine struct {
	storage service.Storage
}

var _ service.SummaryService = (*SummaryEngine)(nil)

// NewSummaryEngine creates a summary engine reading from storage.
func NewSummaryEngine(storage service.Storage) *SummaryEngine {
	return &SummaryEngine{storage: storage}
}

// MonthlySummary totals the transactions posted in the given YYYY-MM month.
// An empty month yields zero totals.
func (e *SummaryEngine) MonthlySummary(ctx context.Context, yearMonth string) (*model.MonthlySummary, error) {
	month, err := model.ParseYearMonth(yearMonth)
	if err != nil {
		return nil, common.NewValidationError("month", "must be a month in YYYY-MM format")
	}

	from, to := month.FirstDay(), month.LastDay()
	transactions, err := e.storage.ListTransactions(ctx, service.TransactionFilter{
		From: &from,
		To:   &to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for %s: %w", month, err)
	}

	summary, err := Summarize(month, transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s: %w", month, err)
	}
	return &summary, nil
}

// Summarize computes the summary of transactions for month. Callers are
// expected to pass only transactions posted within the month. A total that
// does not fit in model.Cents fails with model.ErrAmountOverflow.
func Summarize(month model.YearMonth, transactions []model.Transaction) (model.MonthlySummary, error) {
	summary := model.MonthlySummary{
		Month:            month,
		Categories:       []model.CategoryTotal{},
		TransactionCount: len(transactions),
	}

	totals := make(map[string]*model.CategoryTotal)
	for i := range transactions {
		txn := &transactions[i]
		// Uncategorized or unresolvable: counted, never summed.
		if !txn.HasCategory() || txn.CategoryKind == nil {
			continue
		}

		var sum *model.Cents
		switch *txn.CategoryKind {
		case model.CategoryKindIncome:
			sum = &summary.IncomeCents
		case model.CategoryKindExpense:
			sum = &summary.ExpenseCents
		default:
			continue
		}
		var err error
		if *sum, err = sum.Add(txn.AmountCents); err != nil {
			return model.MonthlySummary{}, err
		}

		total, ok := totals[*txn.CategoryID]
		if !ok {
			total = &model.CategoryTotal{
				CategoryID: *txn.CategoryID,
				Kind:       *txn.CategoryKind,
			}
			if txn.CategoryName != nil {
				total.Name = *txn.CategoryName
			}
			totals[*txn.CategoryID] = total
		}
		if total.TotalCents, err = total.TotalCents.Add(txn.AmountCents); err != nil {
			return model.MonthlySummary{}, err
		}
	}
	summary.NetCents = summary.IncomeCents - summary.ExpenseCents

	for _, total := range totals {
		summary.Categories = append(summary.Categories, *total)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		a, b := summary.Categories[i], summary.Categories[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.CategoryID < b.CategoryID
	})

	return summary, nil
}
