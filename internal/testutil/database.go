// Package testutil provides test utilities for the ledger: an isolated SQLite
// database per test, a fixed clock, and category seeding.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/Veraticus/spice-ledger/internal/testutil/categories"
)

// Now is the instant every test ledger treats as the current time.
var Now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

// Today is the calendar date of Now.
var Today = model.DateOf(Now)

// FixedClock returns Now.
func FixedClock() time.Time {
	return Now
}

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	Ledger     *ledger.Ledger
	t          *testing.T
	Categories categories.Categories
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	// Configure selects the categories to seed.
	Configure func(categories.Builder) categories.Builder
	// Config overrides the ledger configuration. A nil Now uses FixedClock.
	Config ledger.Config
	// Path places the database on disk instead of in memory.
	Path string
}

// SetupTestDB creates a migrated in-memory database with no categories.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithBuilder creates a test database seeded through a category builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithBasicCategories().WithExpense("Pets")
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(categories.Builder) categories.Builder) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Configure: configure})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	path := opts.Path
	if path == "" {
		path = ":memory:"
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	config := opts.Config
	if config.Now == nil {
		config.Now = FixedClock
	}
	l := ledger.NewWithConfig(store, config)

	builder := categories.NewBuilder(t)
	if opts.Configure != nil {
		builder = opts.Configure(builder)
	}
	cats, err := builder.Build(ctx, l.Categories)
	if err != nil {
		t.Fatalf("failed to build categories: %v", err)
	}

	return &TestDB{
		Storage:    store,
		Ledger:     l,
		Categories: cats,
		t:          t,
	}
}

// MustGetCategoryID returns the id of the seeded category with the given name
// or fails the test.
func (db *TestDB) MustGetCategoryID(name categories.CategoryName) string {
	db.t.Helper()
	cat := db.Categories.MustFind(db.t, name)
	return cat.ID
}

// MustCreateTransaction records a transaction through the ledger or fails the test.
// An empty category name leaves the transaction uncategorized.
func (db *TestDB) MustCreateTransaction(date, description string, amount model.Cents, category categories.CategoryName) *model.Transaction {
	db.t.Helper()

	input := service.TransactionInput{
		PostedDate:  date,
		Description: description,
		AmountCents: amount,
	}
	if category != "" {
		id := db.MustGetCategoryID(category)
		input.CategoryID = &id
	}

	txn, err := db.Ledger.Transactions.Create(context.Background(), input)
	if err != nil {
		db.t.Fatalf("failed to create transaction %q: %v", description, err)
	}
	return txn
}
