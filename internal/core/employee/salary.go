package employee

import (
	"fmt"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/shopspring/decimal"
)

// MinimumAnnualSalary は年額給与の下限です。
var MinimumAnnualSalary = decimal.NewFromInt(30000)

// PayFrequency は支払頻度です。
type PayFrequency string

const (
	PayAnnual   PayFrequency = "Annual"
	PayMonthly  PayFrequency = "Monthly"
	PayBiweekly PayFrequency = "Biweekly"
)

func ParsePayFrequency(raw string) (PayFrequency, error) {
	switch f := PayFrequency(raw); f {
	case PayAnnual, PayMonthly, PayBiweekly:
		return f, nil
	case "":
		return PayAnnual, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPayFrequency, raw)
	}
}

// Salary は年額と支払頻度の組です。
type Salary struct {
	annual    shared.Money
	frequency PayFrequency
}

// NewSalary は年額が下限以上であることを検証します。
func NewSalary(annual shared.Money, frequency PayFrequency) (Salary, error) {
	if frequency == "" {
		frequency = PayAnnual
	}
	if _, err := ParsePayFrequency(string(frequency)); err != nil {
		return Salary{}, err
	}
	if annual.Amount().LessThan(MinimumAnnualSalary) {
		return Salary{}, fmt.Errorf("%w: got %s", ErrSalaryBelowMinimum, annual)
	}
	return Salary{annual: annual, frequency: frequency}, nil
}

// ParseSalary は十進文字列の年額から Salary を生成します。
func ParseSalary(amount, currency string, frequency PayFrequency) (Salary, error) {
	money, err := shared.ParseMoney(amount, currency)
	if err != nil {
		return Salary{}, err
	}
	return NewSalary(money, frequency)
}

// Validate は NewSalary を経ずに組み立てられた値を検出します。
func (s Salary) Validate() error {
	if s.annual.Currency() == "" {
		return fmt.Errorf("%w: %q", shared.ErrInvalidCurrency, s.annual.Currency())
	}
	switch s.frequency {
	case PayAnnual, PayMonthly, PayBiweekly:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPayFrequency, string(s.frequency))
	}
	if s.annual.Amount().LessThan(MinimumAnnualSalary) {
		return fmt.Errorf("%w: got %s", ErrSalaryBelowMinimum, s.annual)
	}
	return nil
}

func (s Salary) Annual() shared.Money    { return s.annual }
func (s Salary) Frequency() PayFrequency { return s.frequency }
func (s Salary) Currency() string        { return s.annual.Currency() }

func (s Salary) Monthly() shared.Money {
	m, _ := s.annual.Divide(decimal.NewFromInt(12))
	return m
}

func (s Salary) Biweekly() shared.Money {
	m, _ := s.annual.Divide(decimal.NewFromInt(26))
	return m
}

// CanIncreaseTo は next の年額が現在以上の場合に true です。
func (s Salary) CanIncreaseTo(next Salary) (bool, error) {
	cmp, err := next.annual.Compare(s.annual)
	if err != nil {
		return false, err
	}
	return cmp >= 0, nil
}

func (s Salary) Equal(other Salary) bool {
	return s.frequency == other.frequency && s.annual.Equal(other.annual)
}
