package ledger_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/testutil"
	"github.com/Veraticus/spice-ledger/internal/testutil/categories"
)

func strPtr(s string) *string { return &s }

func basicDB(t *testing.T) *testutil.TestDB {
	t.Helper()
	return testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithBasicCategories()
	})
}

func TestTransactionStore_Create(t *testing.T) {
	db := basicDB(t)
	store := db.Ledger.Transactions
	ctx := context.Background()
	groceriesID := db.MustGetCategoryID(categories.CategoryGroceries)

	txn, err := store.Create(ctx, service.TransactionInput{
		PostedDate:  "2024-06-01",
		Description: "  Farmers market  ",
		AmountCents: 4250,
		CategoryID:  &groceriesID,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, "2024-06-01", txn.PostedDate.String())
	assert.Equal(t, "Farmers market", txn.Description)
	assert.Equal(t, model.Cents(4250), txn.AmountCents)
	assert.True(t, testutil.Now.Equal(txn.CreatedAt))
	require.NotNil(t, txn.CategoryName)
	assert.Equal(t, "Groceries", *txn.CategoryName)
	require.NotNil(t, txn.CategoryKind)
	assert.Equal(t, model.CategoryKindExpense, *txn.CategoryKind)

	t.Run("without category", func(t *testing.T) {
		txn, err := store.Create(ctx, service.TransactionInput{
			PostedDate:  "2024-06-02",
			Description: "Cash withdrawal",
			AmountCents: 2000,
		})
		require.NoError(t, err)
		assert.False(t, txn.HasCategory())
		assert.Nil(t, txn.CategoryName)
	})

	t.Run("blank category id means uncategorized", func(t *testing.T) {
		txn, err := store.Create(ctx, service.TransactionInput{
			PostedDate:  "2024-06-02",
			Description: "Parking",
			AmountCents: 300,
			CategoryID:  strPtr("  "),
		})
		require.NoError(t, err)
		assert.False(t, txn.HasCategory())
	})

	t.Run("today is allowed", func(t *testing.T) {
		_, err := store.Create(ctx, service.TransactionInput{
			PostedDate:  testutil.Today.String(),
			Description: "Lunch",
			AmountCents: 1500,
		})
		assert.NoError(t, err)
	})
}

func TestTransactionStore_CreateValidation(t *testing.T) {
	db := basicDB(t)
	store := db.Ledger.Transactions
	ctx := context.Background()

	valid := func() service.TransactionInput {
		return service.TransactionInput{
			PostedDate:  "2024-06-01",
			Description: "Coffee",
			AmountCents: 450,
		}
	}

	tests := []struct {
		mutate    func(*service.TransactionInput)
		name      string
		wantField string
	}{
		{name: "empty description", wantField: "description", mutate: func(in *service.TransactionInput) { in.Description = "   " }},
		{name: "description too long", wantField: "description", mutate: func(in *service.TransactionInput) { in.Description = strings.Repeat("a", 101) }},
		{name: "zero amount", wantField: "amountCents", mutate: func(in *service.TransactionInput) { in.AmountCents = 0 }},
		{name: "negative amount", wantField: "amountCents", mutate: func(in *service.TransactionInput) { in.AmountCents = -100 }},
		{name: "amount above maximum", wantField: "amountCents", mutate: func(in *service.TransactionInput) { in.AmountCents = model.MaxCents + 1 }},
		{name: "malformed date", wantField: "postedDate", mutate: func(in *service.TransactionInput) { in.PostedDate = "06/01/2024" }},
		{name: "impossible date", wantField: "postedDate", mutate: func(in *service.TransactionInput) { in.PostedDate = "2024-02-30" }},
		{name: "tomorrow", wantField: "postedDate", mutate: func(in *service.TransactionInput) { in.PostedDate = testutil.Today.AddDays(1).String() }},
		{name: "unknown category", wantField: "categoryId", mutate: func(in *service.TransactionInput) { in.CategoryID = strPtr("no-such-category") }},
		{name: "description checked first", wantField: "description", mutate: func(in *service.TransactionInput) {
			in.Description = ""
			in.AmountCents = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid()
			tt.mutate(&input)

			_, err := store.Create(ctx, input)
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.NotErrorIs(t, err, common.ErrNotFound)
		})
	}

	t.Run("100 characters is accepted", func(t *testing.T) {
		input := valid()
		input.Description = strings.Repeat("ü", 100)
		_, err := store.Create(ctx, input)
		assert.NoError(t, err)
	})

	all, err := store.List(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1, "rejected input is never persisted")
}

func TestTransactionStore_ArchivedCategoryPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed by default", func(t *testing.T) {
		db := basicDB(t)
		id := db.MustGetCategoryID(categories.CategoryGroceries)
		require.NoError(t, db.Ledger.Categories.Archive(ctx, id))

		txn, err := db.Ledger.Transactions.Create(ctx, service.TransactionInput{
			PostedDate:  "2024-06-01",
			Description: "Old habit",
			AmountCents: 100,
			CategoryID:  &id,
		})
		require.NoError(t, err)
		assert.Equal(t, "Groceries", *txn.CategoryName)
	})

	t.Run("rejected when configured", func(t *testing.T) {
		db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
			Config: ledger.Config{RejectArchivedCategories: true},
			Configure: func(b categories.Builder) categories.Builder {
				return b.WithBasicCategories()
			},
		})
		id := db.MustGetCategoryID(categories.CategoryGroceries)

		existing := db.MustCreateTransaction("2024-05-01", "Before archive", 100, categories.CategoryGroceries)
		require.NoError(t, db.Ledger.Categories.Archive(ctx, id))

		_, err := db.Ledger.Transactions.Create(ctx, service.TransactionInput{
			PostedDate:  "2024-06-01",
			Description: "After archive",
			AmountCents: 100,
			CategoryID:  &id,
		})
		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "categoryId", verr.Field)

		// Existing references stay valid.
		got, err := db.Ledger.Transactions.Get(ctx, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, id, *got.CategoryID)
	})
}

func TestTransactionStore_List(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithFixture(categories.FixtureHousehold)
	})
	store := db.Ledger.Transactions
	ctx := context.Background()

	db.MustCreateTransaction("2023-12-31", "New year's eve", 9000, categories.CategoryDining)
	db.MustCreateTransaction("2024-01-01", "Rent January", 150000, categories.CategoryRent)
	db.MustCreateTransaction("2024-01-15", "Paycheck", 320000, categories.CategorySalary)
	db.MustCreateTransaction("2024-01-15", "Bus pass", 6500, categories.CategoryTransportation)
	db.MustCreateTransaction("2024-01-20", "Unknown", 999, "")
	db.MustCreateTransaction("2024-01-31", "Groceries run", 8800, categories.CategoryGroceries)
	db.MustCreateTransaction("2024-02-01", "Rent February", 150000, categories.CategoryRent)

	from, _ := model.ParseDate("2024-01-01")
	to, _ := model.ParseDate("2024-01-31")
	rentID := db.MustGetCategoryID(categories.CategoryRent)
	income := model.CategoryKindIncome
	expense := model.CategoryKindExpense

	tests := []struct {
		name   string
		filter service.TransactionFilter
		want   []string
	}{
		{
			name:   "inclusive January range",
			filter: service.TransactionFilter{From: &from, To: &to},
			want:   []string{"Groceries run", "Unknown", "Bus pass", "Paycheck", "Rent January"},
		},
		{
			name:   "category",
			filter: service.TransactionFilter{CategoryID: &rentID},
			want:   []string{"Rent February", "Rent January"},
		},
		{
			name:   "income kind",
			filter: service.TransactionFilter{Kind: &income},
			want:   []string{"Paycheck"},
		},
		{
			name:   "expense kind in range skips uncategorized",
			filter: service.TransactionFilter{From: &from, To: &to, Kind: &expense},
			want:   []string{"Groceries run", "Bus pass", "Rent January"},
		},
		{
			name:   "inverted range is empty",
			filter: service.TransactionFilter{From: &to, To: &from},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := store.List(ctx, tt.filter)
			require.NoError(t, err)

			got := make([]string, 0, len(txns))
			for i, txn := range txns {
				got = append(got, txn.Description)
				if i > 0 {
					assert.False(t, txn.PostedDate.After(txns[i-1].PostedDate), "descending by posted date")
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransactionStore_Update(t *testing.T) {
	db := basicDB(t)
	store := db.Ledger.Transactions
	ctx := context.Background()

	original := db.MustCreateTransaction("2024-06-01", "Weekly shop", 6400, categories.CategoryGroceries)
	salaryID := db.MustGetCategoryID(categories.CategorySalary)

	t.Run("overwrites every field", func(t *testing.T) {
		updated, err := store.Update(ctx, original.ID, service.TransactionInput{
			PostedDate:  "2024-06-03",
			Description: "Reimbursement",
			AmountCents: 6400,
			CategoryID:  &salaryID,
		})
		require.NoError(t, err)
		assert.Equal(t, original.ID, updated.ID)
		assert.Equal(t, original.CreatedAt, updated.CreatedAt)
		assert.Equal(t, "2024-06-03", updated.PostedDate.String())
		assert.Equal(t, "Reimbursement", updated.Description)
		assert.Equal(t, "Salary", *updated.CategoryName)
		assert.Equal(t, model.CategoryKindIncome, *updated.CategoryKind)
	})

	t.Run("clearing the category", func(t *testing.T) {
		updated, err := store.Update(ctx, original.ID, service.TransactionInput{
			PostedDate:  "2024-06-03",
			Description: "Reimbursement",
			AmountCents: 6400,
		})
		require.NoError(t, err)
		assert.False(t, updated.HasCategory())
	})

	before, err := store.Get(ctx, original.ID)
	require.NoError(t, err)

	t.Run("nonexistent category is a validation error", func(t *testing.T) {
		_, err := store.Update(ctx, original.ID, service.TransactionInput{
			PostedDate:  "2024-06-04",
			Description: "Changed",
			AmountCents: 1,
			CategoryID:  strPtr("no-such-category"),
		})
		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "categoryId", verr.Field)

		after, err := store.Get(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after, "failed update leaves the row unchanged")
	})

	t.Run("future date is rejected", func(t *testing.T) {
		_, err := store.Update(ctx, original.ID, service.TransactionInput{
			PostedDate:  testutil.Today.AddDays(1).String(),
			Description: "Changed",
			AmountCents: 1,
		})
		assert.ErrorIs(t, err, common.ErrValidation)

		after, err := store.Get(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := store.Update(ctx, "missing", service.TransactionInput{
			PostedDate:  "2024-06-01",
			Description: "Ghost",
			AmountCents: 1,
		})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestTransactionStore_Bounds(t *testing.T) {
	db := basicDB(t)
	ctx := context.Background()

	txn, err := db.Ledger.Transactions.Create(ctx, service.TransactionInput{
		PostedDate:  "0001-01-01",
		Description: "Earliest date",
		AmountCents: model.MaxCents,
	})
	require.NoError(t, err)
	assert.Equal(t, "0001-01-01", txn.PostedDate.String())
	assert.Equal(t, model.MaxCents, txn.AmountCents)

	got, err := db.Ledger.Transactions.Get(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.PostedDate, got.PostedDate)

	from := model.NewDate(1, time.January, 1)
	listed, err := db.Ledger.Transactions.List(ctx, service.TransactionFilter{From: &from, To: &from})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, txn.ID, listed[0].ID)
}

func TestTransactionStore_BlankID(t *testing.T) {
	db := basicDB(t)
	store := db.Ledger.Transactions
	ctx := context.Background()

	for _, id := range []string{"", " ", "\t"} {
		t.Run(fmt.Sprintf("%q", id), func(t *testing.T) {
			_, err := store.Get(ctx, id)
			assert.ErrorIs(t, err, common.ErrNotFound)

			_, err = store.Update(ctx, id, service.TransactionInput{
				PostedDate:  "2024-06-01",
				Description: "Coffee",
				AmountCents: 450,
			})
			assert.ErrorIs(t, err, common.ErrNotFound)

			assert.ErrorIs(t, store.Delete(ctx, id), common.ErrNotFound)
		})
	}
}

func TestTransactionStore_DeleteTwice(t *testing.T) {
	db := basicDB(t)
	store := db.Ledger.Transactions
	ctx := context.Background()

	txn := db.MustCreateTransaction("2024-06-01", "Impulse buy", 2500, categories.CategoryGroceries)

	require.NoError(t, store.Delete(ctx, txn.ID))
	assert.ErrorIs(t, store.Delete(ctx, txn.ID), common.ErrNotFound)

	_, err := store.Get(ctx, txn.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// The category is untouched.
	cat, err := db.Ledger.Categories.Get(ctx, db.MustGetCategoryID(categories.CategoryGroceries))
	require.NoError(t, err)
	assert.False(t, cat.Archived)
}
