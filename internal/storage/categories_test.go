package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

func defaultCategoryFilter() service.CategoryFilter {
	return service.CategoryFilter{}
}

func categoryNames(cats []model.Category) []string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names
}

func TestCreateAndGetCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := newTestCategory("Salary", model.CategoryKindIncome)
	require.NoError(t, store.CreateCategory(ctx, cat))

	got, err := store.GetCategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.ID)
	assert.Equal(t, "Salary", got.Name)
	assert.Equal(t, model.CategoryKindIncome, got.Kind)
	assert.False(t, got.Archived)
	assert.True(t, cat.CreatedAt.Equal(got.CreatedAt))

	_, err = store.GetCategoryByID(ctx, "missing")
	var nf *common.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "category", nf.Resource)
}

func TestCreateCategory_RejectsInvalidInput(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	assert.ErrorIs(t, store.CreateCategory(ctx, nil), ErrNilParameter)
	assert.ErrorIs(t, store.CreateCategory(ctx, &model.Category{Name: "x", Kind: model.CategoryKindIncome}), ErrInvalidCategory)
	assert.ErrorIs(t, store.CreateCategory(ctx, newTestCategory("Bad", model.CategoryKind(5))), ErrInvalidCategory)
}

func TestListCategories(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, c := range []*model.Category{
		newTestCategory("Utilities", model.CategoryKindExpense),
		newTestCategory("Salary", model.CategoryKindIncome),
		newTestCategory("Groceries", model.CategoryKindExpense),
		newTestCategory("Bonus", model.CategoryKindIncome),
	} {
		require.NoError(t, store.CreateCategory(ctx, c))
	}

	archived := newTestCategory("Old Gym", model.CategoryKindExpense)
	archived.Archived = true
	require.NoError(t, store.CreateCategory(ctx, archived))

	expense := model.CategoryKindExpense

	tests := []struct {
		name   string
		filter service.CategoryFilter
		want   []string
	}{
		{
			name:   "active ordered by kind then name",
			filter: service.CategoryFilter{},
			want:   []string{"Bonus", "Salary", "Groceries", "Utilities"},
		},
		{
			name:   "include archived",
			filter: service.CategoryFilter{IncludeArchived: true},
			want:   []string{"Bonus", "Salary", "Groceries", "Old Gym", "Utilities"},
		},
		{
			name:   "kind filter",
			filter: service.CategoryFilter{Kind: &expense},
			want:   []string{"Groceries", "Utilities"},
		},
		{
			name:   "kind filter with archived",
			filter: service.CategoryFilter{Kind: &expense, IncludeArchived: true},
			want:   []string{"Groceries", "Old Gym", "Utilities"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats, err := store.ListCategories(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, categoryNames(cats))
		})
	}
}

func TestListCategories_EmptyIsNotNil(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	cats, err := store.ListCategories(context.Background(), defaultCategoryFilter())
	require.NoError(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)
}

func TestCategoryNameTaken(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := newTestCategory("Travel", model.CategoryKindExpense)
	cat.Archived = true
	require.NoError(t, store.CreateCategory(ctx, cat))

	taken, err := store.CategoryNameTaken(ctx, "Travel", model.CategoryKindExpense, "")
	require.NoError(t, err)
	assert.True(t, taken, "archived categories still count")

	taken, err = store.CategoryNameTaken(ctx, "Travel", model.CategoryKindExpense, cat.ID)
	require.NoError(t, err)
	assert.False(t, taken, "the excluded category does not conflict with itself")

	taken, err = store.CategoryNameTaken(ctx, "Travel", model.CategoryKindIncome, "")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUpdateCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := newTestCategory("Dining", model.CategoryKindExpense)
	require.NoError(t, store.CreateCategory(ctx, cat))
	other := newTestCategory("Restaurants", model.CategoryKindExpense)
	require.NoError(t, store.CreateCategory(ctx, other))

	cat.Name = "Eating Out"
	cat.Archived = true
	require.NoError(t, store.UpdateCategory(ctx, cat))

	got, err := store.GetCategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eating Out", got.Name)
	assert.True(t, got.Archived)

	cat.Name = "Restaurants"
	assert.ErrorIs(t, store.UpdateCategory(ctx, cat), common.ErrDuplicateEntry)

	missing := newTestCategory("Ghost", model.CategoryKindIncome)
	assert.ErrorIs(t, store.UpdateCategory(ctx, missing), common.ErrNotFound)
}

func TestSetCategoryArchived(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := newTestCategory("Hobbies", model.CategoryKindExpense)
	require.NoError(t, store.CreateCategory(ctx, cat))

	require.NoError(t, store.SetCategoryArchived(ctx, cat.ID, true))
	require.NoError(t, store.SetCategoryArchived(ctx, cat.ID, true), "archiving twice is not an error")

	got, err := store.GetCategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	require.NoError(t, store.SetCategoryArchived(ctx, cat.ID, false))
	got, err = store.GetCategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.False(t, got.Archived)

	assert.ErrorIs(t, store.SetCategoryArchived(ctx, "missing", true), common.ErrNotFound)
}
