// Package categories provides test infrastructure for seeding ledger
// categories. It offers a fluent, type-safe API so tests name the categories
// they need instead of repeating create calls.
//
// Example usage:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithFixture(categories.FixtureHousehold).WithIncome("Royalties")
//	})
package categories

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// Builder provides a fluent interface for constructing test categories.
type Builder interface {
	// WithCategory adds a single category of the given kind.
	WithCategory(name CategoryName, kind model.CategoryKind) Builder

	// WithIncome adds income categories.
	WithIncome(names ...CategoryName) Builder

	// WithExpense adds expense categories.
	WithExpense(names ...CategoryName) Builder

	// WithBasicCategories adds the minimal set of categories commonly used in tests.
	WithBasicCategories() Builder

	// WithFixture adds categories from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the categories through the given service and returns them
	// ordered by kind, then name.
	Build(ctx context.Context, svc service.CategoryService) (Categories, error)

	// BuildMap creates categories and returns them as a map for easy lookup.
	BuildMap(ctx context.Context, svc service.CategoryService) (CategoryMap, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Common category names used across tests.
const (
	CategorySalary         CategoryName = "Salary"
	CategoryFreelance      CategoryName = "Freelance"
	CategoryInterest       CategoryName = "Interest"
	CategoryGroceries      CategoryName = "Groceries"
	CategoryRent           CategoryName = "Rent"
	CategoryUtilities      CategoryName = "Utilities"
	CategoryTransportation CategoryName = "Transportation"
	CategoryDining         CategoryName = "Dining"
	CategoryEntertainment  CategoryName = "Entertainment"
	CategoryHealth         CategoryName = "Health"
)

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
// When a name exists for both kinds the first match in kind order wins.
func (c Categories) Find(name CategoryName) *model.Category {
	for i := range c {
		if c[i].Name == name.String() {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}

// Names returns all category names as a slice of strings.
func (c Categories) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

// CategoryMap provides O(1) lookup for categories by name.
type CategoryMap map[CategoryName]model.Category

// Get returns the category for the given name and whether it was found.
func (m CategoryMap) Get(name CategoryName) (model.Category, bool) {
	cat, ok := m[name]
	return cat, ok
}

// MustGet returns the category for the given name or fails the test.
func (m CategoryMap) MustGet(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat, ok := m.Get(name)
	if !ok {
		t.Fatalf("category %q not found in test data", name)
	}
	return cat
}

type categoryKey struct {
	name CategoryName
	kind model.CategoryKind
}

// categoryBuilder implements the Builder interface.
type categoryBuilder struct {
	t          *testing.T
	categories map[categoryKey]struct{}
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{
		t:          t,
		categories: make(map[categoryKey]struct{}),
	}
}

func (b *categoryBuilder) WithCategory(name CategoryName, kind model.CategoryKind) Builder {
	b.categories[categoryKey{name: name, kind: kind}] = struct{}{}
	return b
}

func (b *categoryBuilder) WithIncome(names ...CategoryName) Builder {
	for _, name := range names {
		b.WithCategory(name, model.CategoryKindIncome)
	}
	return b
}

func (b *categoryBuilder) WithExpense(names ...CategoryName) Builder {
	for _, name := range names {
		b.WithCategory(name, model.CategoryKindExpense)
	}
	return b
}

func (b *categoryBuilder) WithBasicCategories() Builder {
	return b.WithFixture(FixtureMinimal)
}

func (b *categoryBuilder) WithFixture(fixture Fixture) Builder {
	b.WithIncome(fixture.Income()...)
	return b.WithExpense(fixture.Expense()...)
}

func (b *categoryBuilder) Build(ctx context.Context, svc service.CategoryService) (Categories, error) {
	b.t.Helper()

	if len(b.categories) == 0 {
		return Categories{}, nil
	}

	// Convert map to slice for consistent ordering
	keys := make([]categoryKey, 0, len(b.categories))
	for key := range b.categories {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].name < keys[j].name
	})

	result := make(Categories, 0, len(keys))
	for _, key := range keys {
		created, err := svc.Create(ctx, key.name.String(), key.kind)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s category %q: %w", key.kind, key.name, err)
		}
		result = append(result, *created)
	}

	return result, nil
}

func (b *categoryBuilder) BuildMap(ctx context.Context, svc service.CategoryService) (CategoryMap, error) {
	categories, err := b.Build(ctx, svc)
	if err != nil {
		return nil, err
	}

	m := make(CategoryMap, len(categories))
	for _, cat := range categories {
		m[CategoryName(cat.Name)] = cat
	}
	return m, nil
}
