package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	validation := NewValidationError("amountCents", "must be at least 1, got %d", 0)
	uniqueness := &UniquenessError{Name: "Rent", Kind: "expense"}
	notFound := NewNotFoundError("transaction", "abc")

	assert.ErrorIs(t, validation, ErrValidation)
	assert.ErrorIs(t, uniqueness, ErrDuplicateEntry)
	assert.ErrorIs(t, notFound, ErrNotFound)

	assert.NotErrorIs(t, validation, ErrNotFound)
	assert.NotErrorIs(t, notFound, ErrValidation)

	wrapped := fmt.Errorf("update failed: %w", notFound)
	var nf *NotFoundError
	assert.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "abc", nf.ID)

	assert.Equal(t, `validation failed: amountCents: must be at least 1, got 0`, validation.Error())
	assert.Equal(t, `duplicate entry: a expense category named "Rent" already exists`, uniqueness.Error())
	assert.Equal(t, `transaction "abc" not found`, notFound.Error())
}

func TestIsBusinessError(t *testing.T) {
	assert.True(t, IsBusinessError(NewValidationError("", "bad")))
	assert.True(t, IsBusinessError(fmt.Errorf("wrap: %w", &UniquenessError{})))
	assert.True(t, IsBusinessError(NewNotFoundError("category", "x")))
	assert.False(t, IsBusinessError(errors.New("disk I/O error")))
}
