package model

import "time"

// Transaction is a single dated, described monetary entry optionally tied to a category.
type Transaction struct {
	CreatedAt   time.Time `json:"createdAt"`
	PostedDate  Date      `json:"postedDate"`
	CategoryID  *string   `json:"categoryId"`
	ID          string    `json:"id"`
	Description string    `json:"description"`
	AmountCents Cents     `json:"amountCents"`

	// Denormalized from the referenced category when it resolves.
	CategoryName *string       `json:"categoryName,omitempty"`
	CategoryKind *CategoryKind `json:"categoryKind,omitempty"`
}

// HasCategory reports whether the transaction references a category.
func (t *Transaction) HasCategory() bool {
	return t.CategoryID != nil && *t.CategoryID != ""
}
