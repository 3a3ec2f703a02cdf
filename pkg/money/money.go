// Package money holds amounts in the smallest currency subunit.
//
// Intermediate results that are not whole subunits (fractional quantities,
// percentages) are computed with decimal arithmetic and rounded half away
// from zero before they become a Money again.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCurrencyMismatch = errors.New("currency_mismatch")
	ErrInvalidFactor    = errors.New("invalid_factor")
	ErrAmountOverflow   = errors.New("amount_overflow")
)

var (
	hundred   = decimal.NewFromInt(100)
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)
)

// Money is an integer amount of subunits (cents for USD) in a single currency.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// New builds a Money with a normalized currency code.
func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// Zero returns a zero amount in currency.
func Zero(currency string) Money {
	return New(0, currency)
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if !sameCurrency(m.Currency, other.Currency) {
		return Money{}, ErrCurrencyMismatch
	}
	sum := m.Amount + other.Amount
	if (sum > m.Amount) != (other.Amount > 0) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Amount: sum, Currency: m.Currency}, nil
}

// MulQuantity multiplies by a possibly fractional quantity.
func (m Money) MulQuantity(quantity float64) (Money, error) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return Money{}, ErrInvalidFactor
	}
	total := decimal.NewFromInt(m.Amount).Mul(decimal.NewFromFloat(quantity))
	return FromDecimal(total, m.Currency)
}

// Percentage returns percentage/100 of the amount. Negative percentages give
// negative amounts.
func (m Money) Percentage(percentage float64) (Money, error) {
	if math.IsNaN(percentage) || math.IsInf(percentage, 0) {
		return Money{}, ErrInvalidFactor
	}
	total := decimal.NewFromInt(m.Amount).Mul(decimal.NewFromFloat(percentage)).Div(hundred)
	return FromDecimal(total, m.Currency)
}

// FromDecimal rounds d to whole subunits. Amounts outside the int64 range
// fail with ErrAmountOverflow.
func FromDecimal(d decimal.Decimal, currency string) (Money, error) {
	amount, err := Round(d)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: strings.ToUpper(strings.TrimSpace(currency))}, nil
}

// Round rounds half away from zero to a whole subunit.
func Round(d decimal.Decimal) (int64, error) {
	rounded := d.Round(0)
	if rounded.GreaterThan(maxAmount) || rounded.LessThan(minAmount) {
		return 0, ErrAmountOverflow
	}
	return rounded.IntPart(), nil
}

// Sum adds amounts that all share currency. An empty list sums to zero.
func Sum(currency string, amounts ...Money) (Money, error) {
	total := Zero(currency)
	for _, amount := range amounts {
		next, err := total.Add(amount)
		if err != nil {
			return Money{}, err
		}
		total = next
	}
	return total, nil
}

func sameCurrency(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
