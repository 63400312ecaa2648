package leave

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/shopspring/decimal"
)

// AccrualKind は台帳への付与記録の種類です。
type AccrualKind string

const (
	AccrualScheduled  AccrualKind = "Scheduled"
	AccrualManual     AccrualKind = "Manual"
	AccrualAdjustment AccrualKind = "Adjustment"
	AccrualCarryOver  AccrualKind = "CarryOver"
)

func ParseAccrualKind(raw string) (AccrualKind, error) {
	switch k := AccrualKind(raw); k {
	case AccrualScheduled, AccrualManual, AccrualAdjustment, AccrualCarryOver:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccrualKind, raw)
	}
}

// Periodic は (社員, 種別, 期間, 種類) で一意になる記録か判定します。
func (k AccrualKind) Periodic() bool {
	return k == AccrualScheduled || k == AccrualCarryOver
}

// Accrual は台帳の付与・調整 1 件の記録です。
type Accrual struct {
	ID            string
	EmployeeID    employee.ID
	Type          Type
	Year          int
	Period        string
	Kind          AccrualKind
	Days          decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Reason        string
	AccruedAt     time.Time
}

// Period は YYYY-MM 形式の付与期間です。
func Period(year int, month time.Month) (string, error) {
	if year < 1000 || year > 9999 {
		return "", fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if month < time.January || month > time.December {
		return "", fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return fmt.Sprintf("%04d-%02d", year, int(month)), nil
}

func newAccrual(key BalanceKey, period string, kind AccrualKind, days, before, after decimal.Decimal, reason string, now time.Time) Accrual {
	return Accrual{
		ID:            uuid.NewString(),
		EmployeeID:    key.EmployeeID,
		Type:          key.Type,
		Year:          key.Year,
		Period:        period,
		Kind:          kind,
		Days:          days,
		BalanceBefore: before,
		BalanceAfter:  after,
		Reason:        reason,
		AccruedAt:     now.UTC(),
	}
}
