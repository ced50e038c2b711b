package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidKind is returned when a category kind is neither income nor expense.
var ErrInvalidKind = errors.New("invalid category kind")

// CategoryKind classifies the cash-flow direction of a category.
// The integer values are the persisted and wire representation and must not change.
type CategoryKind int

const (
	// CategoryKindIncome marks money coming in.
	CategoryKindIncome CategoryKind = 1
	// CategoryKindExpense marks money going out.
	CategoryKindExpense CategoryKind = 2
)

// Valid reports whether k is one of the known kinds.
func (k CategoryKind) Valid() bool {
	return k == CategoryKindIncome || k == CategoryKindExpense
}

func (k CategoryKind) String() string {
	switch k {
	case CategoryKindIncome:
		return "income"
	case CategoryKindExpense:
		return "expense"
	default:
		return fmt.Sprintf("CategoryKind(%d)", int(k))
	}
}

// ParseCategoryKind accepts "income", "expense" or their integer codes "1" and "2".
func ParseCategoryKind(s string) (CategoryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "1":
		return CategoryKindIncome, nil
	case "expense", "2":
		return CategoryKindExpense, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// MarshalJSON emits the integer code.
func (k CategoryKind) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(k))), nil
}

// UnmarshalJSON accepts the integer code or the kind name.
// Unknown integers are kept as-is so that validation can report them.
func (k *CategoryKind) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*k = CategoryKind(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidKind, string(data))
	}
	parsed, err := ParseCategoryKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Category is a named classification of cash flow.
type Category struct {
	CreatedAt time.Time    `json:"createdAt"`
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Kind      CategoryKind `json:"kind"`
	Archived  bool         `json:"archived"`
}
