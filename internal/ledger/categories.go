package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// CategoryStore validates and persists categories.
type CategoryStore struct {
	storage service.Storage
	config  Config
}

var _ service.CategoryService = (*CategoryStore)(nil)

// NewCategoryStore creates a category store with the default configuration.
func NewCategoryStore(storage service.Storage) *CategoryStore {
	return NewCategoryStoreWithConfig(storage, DefaultConfig())
}

// NewCategoryStoreWithConfig creates a category store with custom configuration.
func NewCategoryStoreWithConfig(storage service.Storage, config Config) *CategoryStore {
	return &CategoryStore{
		storage: storage,
		config:  config.withDefaults(),
	}
}

// Create adds a new, active category. The (name, kind) pair must not be used
// by any other category, archived ones included.
func (s *CategoryStore) Create(ctx context.Context, name string, kind model.CategoryKind) (*model.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	category := &model.Category{
		ID:        s.config.NewID(),
		Name:      name,
		Kind:      kind,
		CreatedAt: s.config.Now().UTC(),
	}

	err = withTx(ctx, s.storage, func(tx service.Transaction) error {
		if err := ensureNameAvailable(ctx, tx, name, kind, ""); err != nil {
			return err
		}
		return tx.CreateCategory(ctx, category)
	})
	if err != nil {
		return nil, wrapFault(uniquenessOrError(err, name, kind), "failed to create category")
	}

	slog.Info("created category", "id", category.ID, "name", category.Name, "kind", category.Kind.String())
	return category, nil
}

// List returns categories ordered by kind, then name.
func (s *CategoryStore) List(ctx context.Context, filter service.CategoryFilter) ([]model.Category, error) {
	if filter.Kind != nil {
		if err := validateKind(*filter.Kind); err != nil {
			return nil, err
		}
	}

	categories, err := s.storage.ListCategories(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Get returns the category with the given id.
func (s *CategoryStore) Get(ctx context.Context, id string) (*model.Category, error) {
	if err := requireID("category", id); err != nil {
		return nil, err
	}
	category, err := s.storage.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, wrapFault(err, "failed to get category")
	}
	return category, nil
}

// Update overwrites the name, kind and archived flag of a category.
func (s *CategoryStore) Update(ctx context.Context, id string, input service.CategoryInput) (*model.Category, error) {
	if err := requireID("category", id); err != nil {
		return nil, err
	}
	name, err := normalizeCategoryName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateKind(input.Kind); err != nil {
		return nil, err
	}

	var updated *model.Category
	err = withTx(ctx, s.storage, func(tx service.Transaction) error {
		existing, err := tx.GetCategoryByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureNameAvailable(ctx, tx, name, input.Kind, existing.ID); err != nil {
			return err
		}

		existing.Name = name
		existing.Kind = input.Kind
		existing.Archived = input.Archived
		if err := tx.UpdateCategory(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, wrapFault(uniquenessOrError(err, name, input.Kind), "failed to update category")
	}

	slog.Info("updated category", "id", updated.ID, "name", updated.Name, "kind", updated.Kind.String(), "archived", updated.Archived)
	return updated, nil
}

// Archive marks a category archived. Archiving an archived category succeeds.
func (s *CategoryStore) Archive(ctx context.Context, id string) error {
	if err := requireID("category", id); err != nil {
		return err
	}
	if err := s.storage.SetCategoryArchived(ctx, id, true); err != nil {
		return wrapFault(err, "failed to archive category")
	}

	slog.Info("archived category", "id", id)
	return nil
}

func ensureNameAvailable(ctx context.Context, tx service.Transaction, name string, kind model.CategoryKind, excludeID string) error {
	taken, err := tx.CategoryNameTaken(ctx, name, kind, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if taken {
		return &common.UniquenessError{Name: name, Kind: kind.String()}
	}
	return nil
}

// uniquenessOrError turns a storage-level duplicate (a race the pre-check
// could not see) into a UniquenessError.
func uniquenessOrError(err error, name string, kind model.CategoryKind) error {
	var uniq *common.UniquenessError
	if errors.As(err, &uniq) {
		return err
	}
	if errors.Is(err, common.ErrDuplicateEntry) {
		return &common.UniquenessError{Name: name, Kind: kind.String()}
	}
	return err
}

// wrapFault passes business errors through untouched and wraps
// everything else as an opaque fault.
func wrapFault(err error, msg string) error {
	if common.IsBusinessError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
