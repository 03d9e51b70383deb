package types

import (
	"fmt"
	"strings"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CurrencyConfig describes how a currency is represented in minor units.
type CurrencyConfig struct {
	Precision int32
}

var currencyConfigs = map[string]CurrencyConfig{
	"usd": {Precision: 2},
	"eur": {Precision: 2},
	"gbp": {Precision: 2},
	"inr": {Precision: 2},
	"aud": {Precision: 2},
	"cad": {Precision: 2},
	"sgd": {Precision: 2},
	"jpy": {Precision: 0},
	"krw": {Precision: 0},
	"vnd": {Precision: 0},
	"clp": {Precision: 0},
	"bhd": {Precision: 3},
	"kwd": {Precision: 3},
	"omr": {Precision: 3},
}

// GetCurrencyPrecision returns the number of minor-unit digits of a currency.
// Unknown currencies use 2.
func GetCurrencyPrecision(currency string) int32 {
	if cfg, ok := currencyConfigs[strings.ToLower(currency)]; ok {
		return cfg.Precision
	}
	return 2
}

// ValidateCurrencyCode checks for a three letter ISO code.
func ValidateCurrencyCode(currency string) error {
	if len(currency) != 3 {
		return ierr.NewErrorf("invalid currency code: %q", currency).
			WithHint("Currency must be a three letter ISO 4217 code").
			Mark(ierr.ErrValidation)
	}
	for _, r := range strings.ToLower(currency) {
		if r < 'a' || r > 'z' {
			return ierr.NewErrorf("invalid currency code: %q", currency).
				WithHint("Currency must be a three letter ISO 4217 code").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// Money is an amount in integer minor units of a currency.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney builds Money from minor units.
func NewMoney(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: strings.ToLower(currency)}
}

// ZeroMoney returns a zero amount in currency.
func ZeroMoney(currency string) Money {
	return NewMoney(0, currency)
}

// FromMajor converts a major-unit amount (e.g. dollars) into minor units using
// banker's rounding for sub-minor-unit digits.
func FromMajor(value decimal.Decimal, currency string) Money {
	minor := value.Shift(GetCurrencyPrecision(currency)).RoundBank(0)
	return NewMoney(minor.IntPart(), currency)
}

// Major returns the amount in major units.
func (m Money) Major() decimal.Decimal {
	return decimal.New(m.Amount, -GetCurrencyPrecision(m.Currency))
}

// Decimal returns the minor-unit amount as a decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Amount)
}

func (m Money) IsZero() bool { return m.Amount == 0 }

func (m Money) IsNegative() bool { return m.Amount < 0 }

func (m Money) IsPositive() bool { return m.Amount > 0 }

// SameCurrency reports whether both amounts are denominated in one currency.
func (m Money) SameCurrency(other Money) bool {
	return strings.EqualFold(m.Currency, other.Currency)
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.Amount+other.Amount, m.Currency), nil
}

// Subtract returns m - other, clamped at zero.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	if other.Amount >= m.Amount {
		return ZeroMoney(m.Currency), nil
	}
	return NewMoney(m.Amount-other.Amount, m.Currency), nil
}

// PercentOf returns rate percent of m, rounded half-to-even to the minor unit.
func (m Money) PercentOf(rate decimal.Decimal) Money {
	return m.Multiply(rate.Div(hundred))
}

// Multiply returns m * factor, rounded half-to-even to the minor unit.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return NewMoney(m.Decimal().Mul(factor).RoundBank(0).IntPart(), m.Currency)
}

// Cmp compares two amounts of the same currency.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.checkCurrency(other); err != nil {
		return 0, err
	}
	switch {
	case m.Amount < other.Amount:
		return -1, nil
	case m.Amount > other.Amount:
		return 1, nil
	default:
		return 0, nil
	}
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Major().StringFixed(GetCurrencyPrecision(m.Currency)), strings.ToUpper(m.Currency))
}

func (m Money) checkCurrency(other Money) error {
	if m.SameCurrency(other) {
		return nil
	}
	return ierr.NewErrorf("currency mismatch: %s vs %s", m.Currency, other.Currency).
		WithHint("Amounts must be in the same currency").
		WithReportableDetails(map[string]any{
			"left":  m.Currency,
			"right": other.Currency,
		}).
		Mark(ierr.ErrCurrencyMismatch)
}

// SumMoney adds amounts, starting from zero in currency.
func SumMoney(currency string, amounts ...Money) (Money, error) {
	total := ZeroMoney(currency)
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
