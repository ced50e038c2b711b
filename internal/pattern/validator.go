package pattern

import (
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// ExpectedKind returns the category kind a rule's direction implies, or nil
// when the rule matches both directions.
func ExpectedKind(d Direction) *model.CategoryKind {
	var kind model.CategoryKind
	switch d {
	case DirectionCredit:
		kind = model.CategoryKindIncome
	case DirectionDebit:
		kind = model.CategoryKindExpense
	default:
		return nil
	}
	return &kind
}

// ValidateCategory ensures a rule's direction is consistent with the kind of
// the category it files lines under.
func ValidateCategory(rule Rule, category model.Category) error {
	expected := ExpectedKind(rule.Direction)
	if expected == nil || *expected == category.Kind {
		return nil
	}
	return fmt.Errorf("%w %s: category %q is %s but the rule matches %s lines",
		ErrInvalidRule, rule.Name, category.Name, category.Kind, rule.Direction)
}
