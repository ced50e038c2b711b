package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// TransactionStore validates and persists transactions.
type TransactionStore struct {
	storage service.Storage
	config  Config
}

var _ service.TransactionService = (*TransactionStore)(nil)

// NewTransactionStore creates a transaction store with the default configuration.
func NewTransactionStore(storage service.Storage) *TransactionStore {
	return NewTransactionStoreWithConfig(storage, DefaultConfig())
}

// NewTransactionStoreWithConfig creates a transaction store with custom configuration.
func NewTransactionStoreWithConfig(storage service.Storage, config Config) *TransactionStore {
	return &TransactionStore{
		storage: storage,
		config:  config.withDefaults(),
	}
}

// Create validates input and records a new transaction. The returned value
// carries the name and kind of its category.
func (s *TransactionStore) Create(ctx context.Context, input service.TransactionInput) (*model.Transaction, error) {
	var created *model.Transaction
	err := withTx(ctx, s.storage, func(tx service.Transaction) error {
		txn, err := s.validate(ctx, tx, input)
		if err != nil {
			return err
		}

		txn.ID = s.config.NewID()
		txn.CreatedAt = s.config.Now().UTC()
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		created, err = tx.GetTransactionByID(ctx, txn.ID)
		return err
	})
	if err != nil {
		return nil, wrapFault(err, "failed to create transaction")
	}

	slog.Info("created transaction",
		"id", created.ID,
		"posted_date", created.PostedDate.String(),
		"amount_cents", int64(created.AmountCents))
	return created, nil
}

// List returns transactions matching every supplied filter, newest first.
func (s *TransactionStore) List(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if filter.Kind != nil {
		if err := validateKind(*filter.Kind); err != nil {
			return nil, err
		}
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return []model.Transaction{}, nil
	}

	transactions, err := s.storage.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// Get returns the transaction with the given id.
func (s *TransactionStore) Get(ctx context.Context, id string) (*model.Transaction, error) {
	if err := requireID("transaction", id); err != nil {
		return nil, err
	}
	txn, err := s.storage.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, wrapFault(err, "failed to get transaction")
	}
	return txn, nil
}

// Update validates input exactly as Create does and overwrites every field
// of an existing transaction. On failure the stored row is unchanged.
func (s *TransactionStore) Update(ctx context.Context, id string, input service.TransactionInput) (*model.Transaction, error) {
	if err := requireID("transaction", id); err != nil {
		return nil, err
	}

	var updated *model.Transaction
	err := withTx(ctx, s.storage, func(tx service.Transaction) error {
		existing, err := tx.GetTransactionByID(ctx, id)
		if err != nil {
			return err
		}

		txn, err := s.validate(ctx, tx, input)
		if err != nil {
			return err
		}

		txn.ID = existing.ID
		txn.CreatedAt = existing.CreatedAt
		if err := tx.UpdateTransaction(ctx, txn); err != nil {
			return err
		}

		updated, err = tx.GetTransactionByID(ctx, txn.ID)
		return err
	})
	if err != nil {
		return nil, wrapFault(err, "failed to update transaction")
	}

	slog.Info("updated transaction", "id", updated.ID)
	return updated, nil
}

// Delete permanently removes a transaction. Its category is not affected.
func (s *TransactionStore) Delete(ctx context.Context, id string) error {
	if err := requireID("transaction", id); err != nil {
		return err
	}
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return wrapFault(err, "failed to delete transaction")
	}

	slog.Info("deleted transaction", "id", id)
	return nil
}

// validate checks input in a fixed order (description, amount, posted
// date, category) and returns the normalized transaction.
func (s *TransactionStore) validate(ctx context.Context, tx service.Transaction, input service.TransactionInput) (*model.Transaction, error) {
	description, err := normalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(input.AmountCents); err != nil {
		return nil, err
	}

	postedDate, err := parsePostedDate(input.PostedDate, model.DateOf(s.config.Now()))
	if err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		PostedDate:  postedDate,
		Description: description,
		AmountCents: input.AmountCents,
	}

	if input.CategoryID == nil || strings.TrimSpace(*input.CategoryID) == "" {
		return txn, nil
	}

	categoryID := *input.CategoryID
	category, err := tx.GetCategoryByID(ctx, categoryID)
	if errors.Is(err, common.ErrNotFound) {
		// The missing category is caller input, not the target of the request.
		return nil, common.NewValidationError("categoryId", "category %q does not exist", categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category.Archived && s.config.RejectArchivedCategories {
		return nil, common.NewValidationError("categoryId", "category %q is archived", categoryID)
	}

	txn.CategoryID = &category.ID
	return txn, nil
}
