package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func newTestCategory(name string, kind model.CategoryKind) *model.Category {
	return &model.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newTestTransaction(date model.Date, description string, amount model.Cents, categoryID *string) *model.Transaction {
	return &model.Transaction{
		ID:          uuid.NewString(),
		PostedDate:  date,
		Description: description,
		AmountCents: amount,
		CategoryID:  categoryID,
		CreatedAt:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewSQLiteStorage_RejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestNewSQLiteStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.CreateCategory(ctx, newTestCategory("Salary", model.CategoryKindIncome)))

	cats, err := store.ListCategories(ctx, defaultCategoryFilter())
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestSQLiteStorage_BeginTx(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("rollback discards writes", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		cat := newTestCategory("Groceries", model.CategoryKindExpense)
		require.NoError(t, tx.CreateCategory(ctx, cat))

		// Visible inside the transaction.
		got, err := tx.GetCategoryByID(ctx, cat.ID)
		require.NoError(t, err)
		assert.Equal(t, "Groceries", got.Name)

		require.NoError(t, tx.Rollback())

		_, err = store.GetCategoryByID(ctx, cat.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("commit persists writes", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		cat := newTestCategory("Rent", model.CategoryKindExpense)
		require.NoError(t, tx.CreateCategory(ctx, cat))
		txn := newTestTransaction(model.NewDate(2024, time.January, 2), "January rent", 120000, &cat.ID)
		require.NoError(t, tx.CreateTransaction(ctx, txn))
		require.NoError(t, tx.Commit())

		got, err := store.GetTransactionByID(ctx, txn.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CategoryName)
		assert.Equal(t, "Rent", *got.CategoryName)
	})

	t.Run("nested transactions and migrations are refused", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback() }()

		_, err = tx.BeginTx(ctx)
		assert.Error(t, err)
		assert.Error(t, tx.Migrate(ctx))
		assert.Error(t, tx.Close())
	})
}
