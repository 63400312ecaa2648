package shared

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency は通貨未指定時に使用する通貨コードです。
const DefaultCurrency = "USD"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

var (
	ErrNegativeMoney    = NewInvariant("money.non_negative", "money: amount cannot be negative")
	ErrInvalidCurrency  = NewInvariant("money.currency", "money: currency must be a 3-letter ISO code")
	ErrCurrencyMismatch = NewInvariant("money.currency_mismatch", "money: currency mismatch")
	ErrDivideByZero     = NewInvariant("money.divide_by_zero", "money: cannot divide by zero")
	ErrInvalidAmount    = NewInvariant("money.amount", "money: invalid amount")
)

// Money は小数第 2 位に丸めた非負の金額と通貨の組です。
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney は金額と通貨コードから Money を生成します。currency が空の場合は USD です。
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}
	if !currencyPattern.MatchString(code) {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		return Money{}, ErrNegativeMoney
	}
	return Money{amount: rounded, currency: code}, nil
}

// ParseMoney は十進文字列から Money を生成します。
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return NewMoney(d, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.amount.Add(other.amount), m.currency)
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.amount.Sub(other.amount), m.currency)
}

func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	return NewMoney(m.amount.Mul(factor), m.currency)
}

func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, ErrDivideByZero
	}
	return NewMoney(m.amount.Div(divisor), m.currency)
}

// Compare は m と other を比較します。通貨が異なる場合はエラーです。
func (m Money) Compare(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.currency + " " + m.amount.StringFixed(2)
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}
