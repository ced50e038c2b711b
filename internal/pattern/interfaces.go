// Package pattern files imported statement lines under categories by matching
// their description, direction and amount against configured rules.
package pattern

import "github.com/Veraticus/spice-ledger/internal/model"

// Direction restricts a rule to money flowing in or out.
type Direction string

// Directions.
const (
	DirectionAny    Direction = ""
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// AmountCondition compares a line's amount with a rule's bounds.
type AmountCondition string

// Amount conditions.
const (
	AmountAny   AmountCondition = ""
	AmountLT    AmountCondition = "lt"
	AmountLE    AmountCondition = "le"
	AmountEQ    AmountCondition = "eq"
	AmountGE    AmountCondition = "ge"
	AmountGT    AmountCondition = "gt"
	AmountRange AmountCondition = "range"
)

// Rule maps matching lines to a category. Amounts are decimal text such as
// "12.34"; Category is a category id or name.
type Rule struct {
	Name            string          `mapstructure:"name"`
	Pattern         string          `mapstructure:"pattern"`
	Direction       Direction       `mapstructure:"direction"`
	AmountCondition AmountCondition `mapstructure:"amount_condition"`
	Amount          string          `mapstructure:"amount"`
	AmountMin       string          `mapstructure:"amount_min"`
	AmountMax       string          `mapstructure:"amount_max"`
	Category        string          `mapstructure:"category"`
	Priority        int             `mapstructure:"priority"`
	Regex           bool            `mapstructure:"regex"`
}

// Subject is what a rule is evaluated against.
type Subject struct {
	Description string
	AmountCents model.Cents
	Credit      bool
}
