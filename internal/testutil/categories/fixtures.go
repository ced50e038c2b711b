package categories

// Fixture represents a predefined set of categories for testing.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string

	// Income returns the income category names included in this fixture.
	Income() []CategoryName

	// Expense returns the expense category names included in this fixture.
	Expense() []CategoryName
}

type fixture struct {
	name    string
	income  []CategoryName
	expense []CategoryName
}

func (f *fixture) Name() string            { return f.name }
func (f *fixture) Income() []CategoryName  { return f.income }
func (f *fixture) Expense() []CategoryName { return f.expense }

// Predefined fixtures for common test scenarios.
var (
	// FixtureMinimal provides one category of each kind.
	FixtureMinimal = &fixture{
		name:    "Minimal",
		income:  []CategoryName{CategorySalary},
		expense: []CategoryName{CategoryGroceries},
	}

	// FixtureHousehold provides a typical household budget.
	FixtureHousehold = &fixture{
		name: "Household",
		income: []CategoryName{
			CategorySalary,
			CategoryFreelance,
			CategoryInterest,
		},
		expense: []CategoryName{
			CategoryGroceries,
			CategoryRent,
			CategoryUtilities,
			CategoryTransportation,
			CategoryDining,
			CategoryEntertainment,
			CategoryHealth,
		},
	}
)

// AllFixtures returns all predefined fixtures.
func AllFixtures() []Fixture {
	return []Fixture{
		FixtureMinimal,
		FixtureHousehold,
	}
}
