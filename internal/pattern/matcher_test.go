package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name      string
		rules     []Rule
		subject   Subject
		wantName  string
		wantMatch bool
	}{
		{
			name:      "substring match is case insensitive",
			rules:     []Rule{{Name: "coffee", Pattern: "starbucks", Category: "Dining"}},
			subject:   Subject{Description: "STARBUCKS #1234", AmountCents: 550},
			wantName:  "coffee",
			wantMatch: true,
		},
		{
			name:      "regex match",
			rules:     []Rule{{Name: "payroll", Pattern: `^acme\s+payroll`, Regex: true, Category: "Salary"}},
			subject:   Subject{Description: "ACME  PAYROLL 0315", AmountCents: 320010, Credit: true},
			wantName:  "payroll",
			wantMatch: true,
		},
		{
			name:    "no match",
			rules:   []Rule{{Name: "coffee", Pattern: "starbucks", Category: "Dining"}},
			subject: Subject{Description: "Whole Foods", AmountCents: 10000},
		},
		{
			name:    "direction credit skips debits",
			rules:   []Rule{{Name: "refund", Pattern: "amazon", Direction: DirectionCredit, Category: "Refunds"}},
			subject: Subject{Description: "AMAZON MKTPLACE", AmountCents: 2000},
		},
		{
			name:      "direction debit matches debits",
			rules:     []Rule{{Name: "shopping", Pattern: "amazon", Direction: DirectionDebit, Category: "Shopping"}},
			subject:   Subject{Description: "AMAZON MKTPLACE", AmountCents: 2000},
			wantName:  "shopping",
			wantMatch: true,
		},
		{
			name: "amount less than",
			rules: []Rule{
				{Name: "small", Pattern: "amazon", AmountCondition: AmountLT, Amount: "20", Category: "Books"},
			},
			subject:   Subject{Description: "Amazon", AmountCents: 1999},
			wantName:  "small",
			wantMatch: true,
		},
		{
			name: "amount less than fails at bound",
			rules: []Rule{
				{Name: "small", Pattern: "amazon", AmountCondition: AmountLT, Amount: "20", Category: "Books"},
			},
			subject: Subject{Description: "Amazon", AmountCents: 2000},
		},
		{
			name: "amount equal",
			rules: []Rule{
				{Name: "netflix", Pattern: "netflix", AmountCondition: AmountEQ, Amount: "15.49", Category: "Entertainment"},
			},
			subject:   Subject{Description: "NETFLIX.COM", AmountCents: 1549},
			wantName:  "netflix",
			wantMatch: true,
		},
		{
			name: "range is inclusive",
			rules: []Rule{
				{Name: "groceries", Pattern: "costco", AmountCondition: AmountRange, AmountMin: "50", AmountMax: "500", Category: "Groceries"},
			},
			subject:   Subject{Description: "COSTCO WHSE", AmountCents: 50000},
			wantName:  "groceries",
			wantMatch: true,
		},
		{
			name: "open ended range",
			rules: []Rule{
				{Name: "big", Pattern: "costco", AmountCondition: AmountRange, AmountMin: "500.01", Category: "Household"},
			},
			subject: Subject{Description: "COSTCO WHSE", AmountCents: 50000},
		},
		{
			name: "higher priority wins",
			rules: []Rule{
				{Name: "general", Pattern: "amazon", Category: "Shopping", Priority: 1},
				{Name: "prime", Pattern: "amazon prime", Category: "Subscriptions", Priority: 10},
			},
			subject:   Subject{Description: "Amazon Prime Membership", AmountCents: 1499},
			wantName:  "prime",
			wantMatch: true,
		},
		{
			name: "equal priority keeps declaration order",
			rules: []Rule{
				{Name: "first", Pattern: "shell", Category: "Fuel"},
				{Name: "second", Pattern: "shell oil", Category: "Car"},
			},
			subject:   Subject{Description: "SHELL OIL 5744", AmountCents: 4000},
			wantName:  "first",
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.rules)
			require.NoError(t, err)

			rule, index, ok := m.Match(tt.subject)
			assert.Equal(t, tt.wantMatch, ok)
			if !tt.wantMatch {
				assert.Equal(t, -1, index)
				return
			}
			assert.Equal(t, tt.wantName, rule.Name)
			assert.Equal(t, tt.rules[index].Name, rule.Name)
		})
	}
}

func TestNewMatcher_RejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{name: "missing pattern", rule: Rule{Category: "Dining"}},
		{name: "missing category", rule: Rule{Pattern: "x"}},
		{name: "bad direction", rule: Rule{Pattern: "x", Category: "c", Direction: "sideways"}},
		{name: "bad regex", rule: Rule{Pattern: "(", Regex: true, Category: "c"}},
		{name: "condition without amount", rule: Rule{Pattern: "x", Category: "c", AmountCondition: AmountGT}},
		{name: "bad amount", rule: Rule{Pattern: "x", Category: "c", AmountCondition: AmountGT, Amount: "lots"}},
		{name: "fractional cents", rule: Rule{Pattern: "x", Category: "c", AmountCondition: AmountGT, Amount: "1.001"}},
		{name: "empty range", rule: Rule{Pattern: "x", Category: "c", AmountCondition: AmountRange}},
		{name: "inverted range", rule: Rule{Pattern: "x", Category: "c", AmountCondition: AmountRange, AmountMin: "10", AmountMax: "5"}},
		{name: "unknown condition", rule: Rule{Pattern: "x", Category: "c", AmountCondition: "about"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatcher([]Rule{tt.rule})
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestMatcher_Rules(t *testing.T) {
	m, err := NewMatcher([]Rule{
		{Name: "low", Pattern: "a", Category: "c", Priority: 1},
		{Name: "high", Pattern: "b", Category: "c", Priority: 5},
	})
	require.NoError(t, err)

	rules := m.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "high", rules[0].Name)
	assert.Equal(t, "low", rules[1].Name)
	assert.Equal(t, 2, m.Len())
}

func TestValidateCategory(t *testing.T) {
	salary := model.Category{Name: "Salary", Kind: model.CategoryKindIncome}
	dining := model.Category{Name: "Dining", Kind: model.CategoryKindExpense}

	assert.NoError(t, ValidateCategory(Rule{Direction: DirectionCredit}, salary))
	assert.NoError(t, ValidateCategory(Rule{Direction: DirectionDebit}, dining))
	assert.NoError(t, ValidateCategory(Rule{}, dining))
	assert.ErrorIs(t, ValidateCategory(Rule{Name: "pay", Direction: DirectionDebit}, salary), ErrInvalidRule)
	assert.ErrorIs(t, ValidateCategory(Rule{Name: "food", Direction: DirectionCredit}, dining), ErrInvalidRule)
}
