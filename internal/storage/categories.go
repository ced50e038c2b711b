package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

const categoryColumns = `id, name, kind, archived, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var cat model.Category
	var kind int
	if err := row.Scan(&cat.ID, &cat.Name, &kind, &cat.Archived, &cat.CreatedAt); err != nil {
		return nil, err
	}
	cat.Kind = model.CategoryKind(kind)
	return &cat, nil
}

// CreateCategory inserts a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	return s.createCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, q queryable, category *model.Category) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (id, name, kind, archived, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		category.ID, category.Name, int(category.Kind), category.Archived, category.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s category %q", common.ErrDuplicateEntry, category.Kind, category.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	slog.Debug("created category", "id", category.ID, "name", category.Name, "kind", category.Kind.String())
	return nil
}

// GetCategoryByID returns a category by its id, archived or not.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getCategoryByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryByIDTx(ctx context.Context, q queryable, id string) (*model.Category, error) {
	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)

	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewNotFoundError("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// CategoryNameTaken reports whether a category with the given name and kind exists,
// ignoring the category with excludeID. Archived categories are included.
func (s *SQLiteStorage) CategoryNameTaken(ctx context.Context, name string, kind model.CategoryKind, excludeID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	return s.categoryNameTakenTx(ctx, s.db, name, kind, excludeID)
}

func (s *SQLiteStorage) categoryNameTakenTx(ctx context.Context, q queryable, name string, kind model.CategoryKind, excludeID string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM categories
		WHERE name = ? AND kind = ? AND id != ?`,
		name, int(kind), excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check existing category: %w", err)
	}
	return count > 0, nil
}

// ListCategories returns categories ordered by kind, then name.
func (s *SQLiteStorage) ListCategories(ctx context.Context, filter service.CategoryFilter) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listCategoriesTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) listCategoriesTx(ctx context.Context, q queryable, filter service.CategoryFilter) ([]model.Category, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, int(*filter.Kind))
	}
	if !filter.IncludeArchived {
		conditions = append(conditions, "archived = 0")
	}

	query := `SELECT ` + categoryColumns + ` FROM categories`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY kind, name"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []model.Category{}
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// UpdateCategory overwrites the name, kind and archived flag of an existing category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	return s.updateCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) updateCategoryTx(ctx context.Context, q queryable, category *model.Category) error {
	result, err := q.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, kind = ?, archived = ?
		WHERE id = ?`,
		category.Name, int(category.Kind), category.Archived, category.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s category %q", common.ErrDuplicateEntry, category.Kind, category.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	if err := requireRowAffected(result, "category", category.ID); err != nil {
		return err
	}

	slog.Debug("updated category", "id", category.ID, "name", category.Name, "archived", category.Archived)
	return nil
}

// SetCategoryArchived flips the archived flag. Setting the current value again is not an error.
func (s *SQLiteStorage) SetCategoryArchived(ctx context.Context, id string, archived bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.setCategoryArchivedTx(ctx, s.db, id, archived)
}

func (s *SQLiteStorage) setCategoryArchivedTx(ctx context.Context, q queryable, id string, archived bool) error {
	result, err := q.ExecContext(ctx, `UPDATE categories SET archived = ? WHERE id = ?`, archived, id)
	if err != nil {
		return fmt.Errorf("failed to archive category: %w", err)
	}
	return requireRowAffected(result, "category", id)
}

// requireRowAffected turns a zero-row UPDATE or DELETE into a not-found error.
func requireRowAffected(result sql.Result, resource, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NewNotFoundError(resource, id)
	}
	return nil
}
