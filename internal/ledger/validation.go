package ledger

import (
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Field bounds, counted in characters after trimming.
const (
	MinCategoryNameLength = 2
	MaxCategoryNameLength = 50
	MinDescriptionLength  = 1
	MaxDescriptionLength  = 100
)

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < MinCategoryNameLength || n > MaxCategoryNameLength {
		return "", common.NewValidationError("name", "must be between %d and %d characters", MinCategoryNameLength, MaxCategoryNameLength)
	}
	return name, nil
}

func validateKind(kind model.CategoryKind) error {
	if !kind.Valid() {
		return common.NewValidationError("kind", "must be income (1) or expense (2)")
	}
	return nil
}

func normalizeDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	n := utf8.RuneCountInString(description)
	if n < MinDescriptionLength || n > MaxDescriptionLength {
		return "", common.NewValidationError("description", "must be between %d and %d characters", MinDescriptionLength, MaxDescriptionLength)
	}
	return description, nil
}

func validateAmount(amount model.Cents) error {
	if !amount.Positive() {
		return common.NewValidationError("amountCents", "must be at least 1")
	}
	if amount > model.MaxCents {
		return common.NewValidationError("amountCents", "must be at most %d", int64(model.MaxCents))
	}
	return nil
}

// requireID reports a blank id as a missing resource.
func requireID(resource, id string) error {
	if strings.TrimSpace(id) == "" {
		return common.NewNotFoundError(resource, id)
	}
	return nil
}

// parsePostedDate parses a YYYY-MM-DD date and rejects dates after today.
func parsePostedDate(raw string, today model.Date) (model.Date, error) {
	date, err := model.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return model.Date{}, common.NewValidationError("postedDate", "must be a date in YYYY-MM-DD format")
	}
	if date.After(today) {
		return model.Date{}, common.NewValidationError("postedDate", "must not be in the future")
	}
	return date, nil
}
