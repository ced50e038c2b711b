// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// CategoryFilter defines filtering options for category queries.
type CategoryFilter struct {
	Kind            *model.CategoryKind
	IncludeArchived bool
}

// TransactionFilter defines filtering options for transaction queries.
// All supplied fields are applied conjunctively; date bounds are inclusive.
type TransactionFilter struct {
	From       *model.Date
	To         *model.Date
	CategoryID *string
	Kind       *model.CategoryKind
}

// Storage defines the contract for our persistence layer.
// Lookups of missing ids return a *common.NotFoundError; violations of the
// (name, kind) uniqueness constraint wrap common.ErrDuplicateEntry.
type Storage interface {
	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	CategoryNameTaken(ctx context.Context, name string, kind model.CategoryKind, excludeID string) (bool, error)
	ListCategories(ctx context.Context, filter CategoryFilter) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	SetCategoryArchived(ctx context.Context, id string, archived bool) error

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// CategoryInput carries the caller-supplied fields of a category.
type CategoryInput struct {
	Name     string
	Kind     model.CategoryKind
	Archived bool
}

// TransactionInput carries the caller-supplied fields of a transaction.
// PostedDate is raw YYYY-MM-DD text; it is parsed during validation.
type TransactionInput struct {
	CategoryID  *string
	PostedDate  string
	Description string
	AmountCents model.Cents
}

// CategoryService manages categories.
type CategoryService interface {
	Create(ctx context.Context, name string, kind model.CategoryKind) (*model.Category, error)
	List(ctx context.Context, filter CategoryFilter) ([]model.Category, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	Update(ctx context.Context, id string, input CategoryInput) (*model.Category, error)
	Archive(ctx context.Context, id string) error
}

// TransactionService manages transactions.
type TransactionService interface {
	Create(ctx context.Context, input TransactionInput) (*model.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	Get(ctx context.Context, id string) (*model.Transaction, error)
	Update(ctx context.Context, id string, input TransactionInput) (*model.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// SummaryService aggregates transactions into period summaries.
type SummaryService interface {
	MonthlySummary(ctx context.Context, yearMonth string) (*model.MonthlySummary, error)
}
