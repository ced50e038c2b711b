package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategoryKind(t *testing.T) {
	tests := []struct {
		input   string
		want    CategoryKind
		wantErr bool
	}{
		{input: "income", want: CategoryKindIncome},
		{input: "Expense", want: CategoryKindExpense},
		{input: "1", want: CategoryKindIncome},
		{input: "2", want: CategoryKindExpense},
		{input: "transfer", wantErr: true},
		{input: "3", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategoryKind(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryKind_JSONUsesIntegerCodes(t *testing.T) {
	data, err := json.Marshal(Category{ID: "c1", Name: "Salary", Kind: CategoryKindIncome})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(1), raw["kind"])
	assert.Equal(t, false, raw["archived"])

	var k CategoryKind
	require.NoError(t, json.Unmarshal([]byte(`2`), &k))
	assert.Equal(t, CategoryKindExpense, k)

	require.NoError(t, json.Unmarshal([]byte(`"income"`), &k))
	assert.Equal(t, CategoryKindIncome, k)

	require.NoError(t, json.Unmarshal([]byte(`7`), &k))
	assert.False(t, k.Valid())

	assert.Error(t, json.Unmarshal([]byte(`"salary"`), &k))
}

func TestCategoryKind_String(t *testing.T) {
	assert.Equal(t, "income", CategoryKindIncome.String())
	assert.Equal(t, "expense", CategoryKindExpense.String())
	assert.Equal(t, "CategoryKind(9)", CategoryKind(9).String())
}
