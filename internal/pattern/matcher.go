package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// ErrInvalidRule reports a rule that cannot be compiled.
var ErrInvalidRule = errors.New("invalid pattern rule")

type compiledRule struct {
	re    *regexp.Regexp
	min   *model.Cents
	max   *model.Cents
	rule  Rule
	index int
}

// Matcher evaluates subjects against a fixed rule set.
type Matcher struct {
	rules []compiledRule
}

// NewMatcher compiles rules. Rules are tried by descending priority, then in
// the order given.
func NewMatcher(rules []Rule) (*Matcher, error) {
	m := &Matcher{rules: make([]compiledRule, 0, len(rules))}

	for i, rule := range rules {
		cr, err := compile(i, rule)
		if err != nil {
			return nil, err
		}
		m.rules = append(m.rules, cr)
	}

	sort.SliceStable(m.rules, func(i, j int) bool {
		return m.rules[i].rule.Priority > m.rules[j].rule.Priority
	})

	return m, nil
}

// Rules returns the rules in evaluation order.
func (m *Matcher) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	for i, cr := range m.rules {
		out[i] = cr.rule
	}
	return out
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// Match returns the first rule matching s and its position in the slice
// NewMatcher was given.
func (m *Matcher) Match(s Subject) (Rule, int, bool) {
	description := strings.ToLower(strings.TrimSpace(s.Description))

	for _, cr := range m.rules {
		if cr.matches(description, s) {
			return cr.rule, cr.index, true
		}
	}
	return Rule{}, -1, false
}

func (cr compiledRule) matches(description string, s Subject) bool {
	switch cr.rule.Direction {
	case DirectionCredit:
		if !s.Credit {
			return false
		}
	case DirectionDebit:
		if s.Credit {
			return false
		}
	}

	if cr.re != nil {
		if !cr.re.MatchString(description) {
			return false
		}
	} else if !strings.Contains(description, strings.ToLower(cr.rule.Pattern)) {
		return false
	}

	return cr.matchesAmount(s.AmountCents)
}

func (cr compiledRule) matchesAmount(amount model.Cents) bool {
	switch cr.rule.AmountCondition {
	case AmountAny:
		return true
	case AmountLT:
		return amount < *cr.min
	case AmountLE:
		return amount <= *cr.min
	case AmountEQ:
		return amount == *cr.min
	case AmountGE:
		return amount >= *cr.min
	case AmountGT:
		return amount > *cr.min
	case AmountRange:
		if cr.min != nil && amount < *cr.min {
			return false
		}
		if cr.max != nil && amount > *cr.max {
			return false
		}
		return true
	}
	return false
}

func compile(index int, rule Rule) (compiledRule, error) {
	label := rule.Name
	if label == "" {
		label = fmt.Sprintf("#%d", index+1)
	}
	fail := func(format string, args ...any) (compiledRule, error) {
		return compiledRule{}, fmt.Errorf("%w %s: %s", ErrInvalidRule, label, fmt.Sprintf(format, args...))
	}

	cr := compiledRule{rule: rule, index: index}

	if strings.TrimSpace(rule.Pattern) == "" {
		return fail("pattern is required")
	}
	if strings.TrimSpace(rule.Category) == "" {
		return fail("category is required")
	}

	switch rule.Direction {
	case DirectionAny, DirectionCredit, DirectionDebit:
	default:
		return fail("direction must be credit or debit, got %q", rule.Direction)
	}

	if rule.Regex {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return fail("bad regex: %v", err)
		}
		cr.re = re
	}

	parse := func(field, raw string) (*model.Cents, error) {
		if raw == "" {
			return nil, nil
		}
		c, err := model.ParseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return &c, nil
	}

	var err error
	switch rule.AmountCondition {
	case AmountAny:
	case AmountLT, AmountLE, AmountEQ, AmountGE, AmountGT:
		if cr.min, err = parse("amount", rule.Amount); err != nil {
			return fail("%v", err)
		}
		if cr.min == nil {
			return fail("amount is required for condition %q", rule.AmountCondition)
		}
	case AmountRange:
		if cr.min, err = parse("amount_min", rule.AmountMin); err != nil {
			return fail("%v", err)
		}
		if cr.max, err = parse("amount_max", rule.AmountMax); err != nil {
			return fail("%v", err)
		}
		if cr.min == nil && cr.max == nil {
			return fail("range needs amount_min or amount_max")
		}
		if cr.min != nil && cr.max != nil && *cr.min > *cr.max {
			return fail("amount_min exceeds amount_max")
		}
	default:
		return fail("unknown amount condition %q", rule.AmountCondition)
	}

	return cr, nil
}
