// Package ledger implements the business rules of the ledger: category and
// transaction validation, referential integrity, and monthly summaries.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-ledger/internal/service"
)

// Config holds configuration options for the ledger stores.
type Config struct {
	// Now returns the current time; the posted-date check uses its calendar date.
	Now func() time.Time
	// NewID generates identifiers for new entities.
	NewID func() string
	// RejectArchivedCategories refuses archived categories when a transaction
	// is created or updated. Existing references are never touched.
	RejectArchivedCategories bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Now == nil {
		c.Now = defaults.Now
	}
	if c.NewID == nil {
		c.NewID = defaults.NewID
	}
	return c
}

// Ledger groups the three stores that share one storage backend.
type Ledger struct {
	Categories   *CategoryStore
	Transactions *TransactionStore
	Summaries    *SummaryEngine
}

// New creates a ledger with the default configuration.
func New(storage service.Storage) *Ledger {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates a ledger with custom configuration.
func NewWithConfig(storage service.Storage, config Config) *Ledger {
	return &Ledger{
		Categories:   NewCategoryStoreWithConfig(storage, config),
		Transactions: NewTransactionStoreWithConfig(storage, config),
		Summaries:    NewSummaryEngine(storage),
	}
}

// withTx runs fn inside a single store transaction, committing on success and
// rolling back on any error.
func withTx(ctx context.Context, storage service.Storage, fn func(tx service.Transaction) error) (err error) {
	tx, err := storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Warn("failed to rollback transaction", "error", rbErr)
			err = errors.Join(err, rbErr)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
