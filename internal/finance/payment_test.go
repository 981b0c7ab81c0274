package finance

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFinancePayment проверяет расчет аннуитетного платежа.
func TestFinancePayment(t *testing.T) {
	cases := []struct {
		name string
		in   FinanceInput
		want int64
	}{
		{name: "zero apr", in: FinanceInput{Price: 24000, APRPercent: 0, TermMonths: 48}, want: 500},
		{name: "amortized", in: FinanceInput{Price: 30000, APRPercent: 6, TermMonths: 60, DownPayment: 5000}, want: 483},
		{name: "down covers price", in: FinanceInput{Price: 20000, APRPercent: 5, TermMonths: 60, DownPayment: 25000}, want: 0},
		{name: "down equals price", in: FinanceInput{Price: 20000, APRPercent: 5, TermMonths: 60, DownPayment: 20000}, want: 0},
		{name: "down equals price short term", in: FinanceInput{Price: 20000, APRPercent: 5, TermMonths: 36, DownPayment: 20000}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FinancePayment(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestFinancePaymentMonotonic проверяет, что больший взнос не увеличивает платеж.
func TestFinancePaymentMonotonic(t *testing.T) {
	prev := int64(math.MaxInt64)
	for down := 0.0; down <= 30000; down += 2500 {
		got, err := FinancePayment(FinanceInput{Price: 30000, APRPercent: 4.9, TermMonths: 60, DownPayment: down})
		require.NoError(t, err)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
	assert.Equal(t, int64(0), prev)
}

// TestFinancePaymentInvalid проверяет отказ на некорректных входных данных.
func TestFinancePaymentInvalid(t *testing.T) {
	cases := []FinanceInput{
		{Price: -1, TermMonths: 60},
		{Price: 1000, APRPercent: -1, TermMonths: 60},
		{Price: 1000, TermMonths: 0},
		{Price: 1000, TermMonths: 60, DownPayment: -5},
		{Price: math.NaN(), TermMonths: 60},
		{Price: math.Inf(1), TermMonths: 60},
		{Price: 30000, APRPercent: 100000, TermMonths: 600},
		{Price: 1e30, APRPercent: 5, TermMonths: 60},
		{Price: 30000, APRPercent: 5, TermMonths: MaxTermMonths + 1},
	}

	for _, in := range cases {
		_, err := FinancePayment(in)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}

// TestLeasePayment проверяет поправки на пробег и срок.
func TestLeasePayment(t *testing.T) {
	cases := []struct {
		name string
		in   LeaseInput
		want int64
	}{
		{name: "reference", in: LeaseInput{BasePayment: 400, AnnualMileage: 12000, TermMonths: 36}, want: 400},
		{name: "below reference mileage", in: LeaseInput{BasePayment: 400, AnnualMileage: 7500, TermMonths: 36}, want: 400},
		{name: "extra mileage", in: LeaseInput{BasePayment: 400, AnnualMileage: 17000, TermMonths: 36}, want: 424},
		{name: "short term", in: LeaseInput{BasePayment: 400, AnnualMileage: 12000, TermMonths: 24}, want: 388},
		{name: "long term", in: LeaseInput{BasePayment: 400, AnnualMileage: 12000, TermMonths: 48}, want: 408},
		{name: "zero base", in: LeaseInput{BasePayment: 0, AnnualMileage: 30000, TermMonths: 24}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LeasePayment(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLeasePaymentInvalid(t *testing.T) {
	_, err := LeasePayment(LeaseInput{BasePayment: -1, AnnualMileage: 12000, TermMonths: 36})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = LeasePayment(LeaseInput{BasePayment: 300, AnnualMileage: -1, TermMonths: 36})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = LeasePayment(LeaseInput{BasePayment: 300, AnnualMileage: 12000, TermMonths: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = LeasePayment(LeaseInput{BasePayment: 1e30, AnnualMileage: 12000, TermMonths: 36})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = LeasePayment(LeaseInput{BasePayment: 300, AnnualMileage: math.MaxInt32, TermMonths: 36})
	require.ErrorIs(t, err, ErrInvalidInput)
}

// TestPaymentsAtLimits проверяет, что на границах допустимого ввода платеж
// остается конечным и неотрицательным.
func TestPaymentsAtLimits(t *testing.T) {
	finance, err := FinancePayment(FinanceInput{Price: MaxPrice, APRPercent: MaxAPRPercent, TermMonths: 1})
	require.NoError(t, err)
	assert.Positive(t, finance)
	assert.True(t, strings.HasPrefix(FormatUSD(finance), "$"))

	lease, err := LeasePayment(LeaseInput{BasePayment: MaxLeaseBasePayment, AnnualMileage: MaxAnnualMileage, TermMonths: MaxTermMonths})
	require.NoError(t, err)
	assert.Positive(t, lease)
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$0", FormatUSD(0))
	assert.Equal(t, "$483", FormatUSD(483))
	assert.Equal(t, "$1,234", FormatUSD(1234))
	assert.Equal(t, "$1,234,567", FormatUSD(1234567))
	assert.Equal(t, "-$1,500", FormatUSD(-1500))
}
