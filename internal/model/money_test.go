package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Cents
		wantErr bool
	}{
		{name: "whole units", input: "12", want: 1200},
		{name: "two decimals", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "one decimal", input: "0.5", want: 50},
		{name: "surrounding spaces", input: "  3.10 ", want: 310},
		{name: "negative is parsed", input: "-3", want: -300},
		{name: "three decimals rejected", input: "1.005", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "overflow", input: "99999999999999999999", wantErr: true},
		{name: "maximum", input: "46116860184273879.04", want: MaxCents},
		{name: "above maximum", input: "46116860184273879.05", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCents_Add(t *testing.T) {
	sum, err := Cents(150).Add(250)
	require.NoError(t, err)
	assert.Equal(t, Cents(400), sum)

	sum, err = MaxCents.Add(MaxCents - 1)
	require.NoError(t, err)
	assert.Equal(t, Cents(math.MaxInt64), sum)

	_, err = MaxCents.Add(MaxCents)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	_, err = Cents(math.MinInt64).Add(-1)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestCents_String(t *testing.T) {
	assert.Equal(t, "1234.50", Cents(123450).String())
	assert.Equal(t, "0.01", Cents(1).String())
	assert.Equal(t, "0.00", Cents(0).String())
	assert.Equal(t, "-0.05", Cents(-5).String())
}

func TestCents_Positive(t *testing.T) {
	assert.True(t, Cents(1).Positive())
	assert.False(t, Cents(0).Positive())
	assert.False(t, Cents(-1).Positive())
}
