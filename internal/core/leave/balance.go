package leave

import (
	"fmt"
	"strings"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/shopspring/decimal"
)

// BalanceKey は台帳 1 行を識別します。
type BalanceKey struct {
	EmployeeID employee.ID
	Year       int
	Type       Type
}

func (k BalanceKey) String() string {
	return fmt.Sprintf("%s/%d/%s", k.EmployeeID, k.Year, k.Type)
}

// Balance は社員・年・休暇種別ごとの残高台帳です。
// 各操作の後も available = opening + accrued + adjusted + carriedOver - used - pending - forfeited >= 0 を保ちます。
// 失敗した操作は何も変更しません。
type Balance struct {
	key          BalanceKey
	opening      decimal.Decimal
	accrued      decimal.Decimal
	used         decimal.Decimal
	pending      decimal.Decimal
	adjusted     decimal.Decimal
	carriedOver  decimal.Decimal
	forfeited    decimal.Decimal
	accrualRate  decimal.Decimal
	maxCarryOver decimal.Decimal
}

// NewBalance は policy の付与率と繰越上限で空の台帳を作成します。
func NewBalance(key BalanceKey, policy Policy) (*Balance, error) {
	if _, err := employee.ParseID(string(key.EmployeeID)); err != nil {
		return nil, ErrInvalidEmployeeID
	}
	if key.Year < 1000 || key.Year > 9999 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidYear, key.Year)
	}
	if _, err := ParseType(string(key.Type)); err != nil {
		return nil, err
	}
	return &Balance{
		key:          key,
		accrualRate:  policy.AccrualRate,
		maxCarryOver: policy.MaxCarryOver,
	}, nil
}

// Available は利用可能日数です。
func (b *Balance) Available() decimal.Decimal {
	return b.opening.
		Add(b.accrued).
		Add(b.adjusted).
		Add(b.carriedOver).
		Sub(b.used).
		Sub(b.pending).
		Sub(b.forfeited)
}

// HasSufficient は days 以上の残高があるか判定します。
func (b *Balance) HasSufficient(days decimal.Decimal) bool {
	return b.Available().GreaterThanOrEqual(days)
}

// Accrue は付与日数を加算します。
func (b *Balance) Accrue(days decimal.Decimal) error {
	if err := requirePositive(days); err != nil {
		return err
	}
	b.accrued = b.accrued.Add(days)
	return nil
}

// AddToPending は残高を確認してから申請中の日数として確保します。
func (b *Balance) AddToPending(days decimal.Decimal) error {
	if err := requirePositive(days); err != nil {
		return err
	}
	if !b.HasSufficient(days) {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientBalance, days, b.Available())
	}
	b.pending = b.pending.Add(days)
	return nil
}

// RemoveFromPending は却下・取り消しされた申請中の日数を戻します。
func (b *Balance) RemoveFromPending(days decimal.Decimal) error {
	if err := requirePositive(days); err != nil {
		return err
	}
	if b.pending.LessThan(days) {
		return fmt.Errorf("%w: pending %s, releasing %s", ErrPendingUnderflow, b.pending, days)
	}
	b.pending = b.pending.Sub(days)
	return nil
}

// Deduct は承認時に申請中の日数を使用済みへ移します。
func (b *Balance) Deduct(days decimal.Decimal) error {
	if err := requirePositive(days); err != nil {
		return err
	}
	if b.pending.LessThan(days) {
		return fmt.Errorf("%w: pending %s, deducting %s", ErrPendingUnderflow, b.pending, days)
	}
	b.pending = b.pending.Sub(days)
	b.used = b.used.Add(days)
	return nil
}

// Restore は承認済み申請の取り消しで使用済み日数を戻します。
func (b *Balance) Restore(days decimal.Decimal) error {
	if err := requirePositive(days); err != nil {
		return err
	}
	if b.used.LessThan(days) {
		return fmt.Errorf("%w: used %s, restoring %s", ErrUsedUnderflow, b.used, days)
	}
	b.used = b.used.Sub(days)
	return nil
}

// Adjust は手動の付与 (正) または減算 (負) です。adjusted と available は負になりません。
func (b *Balance) Adjust(days decimal.Decimal) error {
	if days.IsZero() {
		return ErrInvalidDays
	}
	next := b.adjusted.Add(days)
	if next.IsNegative() || b.Available().Add(days).IsNegative() {
		return fmt.Errorf("%w: adjusting %s", ErrAdjustmentUnderflow, days)
	}
	b.adjusted = next
	return nil
}

// CarryOver は前年からの繰越日数を加算します。
func (b *Balance) CarryOver(days decimal.Decimal) error {
	if days.IsNegative() {
		return ErrInvalidDays
	}
	b.carriedOver = b.carriedOver.Add(days)
	return nil
}

// Forfeit は残高から days を失効させます。
func (b *Balance) Forfeit(days decimal.Decimal) error {
	if err := requirePositive(days); err != nil {
		return err
	}
	if !b.HasSufficient(days) {
		return fmt.Errorf("%w: forfeiting %s, available %s", ErrInsufficientBalance, days, b.Available())
	}
	b.forfeited = b.forfeited.Add(days)
	return nil
}

// CloseYear は年度末処理として残高をすべて失効させ、翌年へ繰り越す日数 (繰越上限まで) を返します。
func (b *Balance) CloseYear() (decimal.Decimal, error) {
	remaining := b.Available()
	if !remaining.IsPositive() {
		return decimal.Zero, nil
	}
	if err := b.Forfeit(remaining); err != nil {
		return decimal.Zero, err
	}
	return decimal.Min(remaining, b.maxCarryOver), nil
}

func (b *Balance) Key() BalanceKey               { return b.key }
func (b *Balance) EmployeeID() employee.ID       { return b.key.EmployeeID }
func (b *Balance) Year() int                     { return b.key.Year }
func (b *Balance) Type() Type                    { return b.key.Type }
func (b *Balance) Opening() decimal.Decimal      { return b.opening }
func (b *Balance) Accrued() decimal.Decimal      { return b.accrued }
func (b *Balance) Used() decimal.Decimal         { return b.used }
func (b *Balance) Pending() decimal.Decimal      { return b.pending }
func (b *Balance) Adjusted() decimal.Decimal     { return b.adjusted }
func (b *Balance) CarriedOver() decimal.Decimal  { return b.carriedOver }
func (b *Balance) Forfeited() decimal.Decimal    { return b.forfeited }
func (b *Balance) AccrualRate() decimal.Decimal  { return b.accrualRate }
func (b *Balance) MaxCarryOver() decimal.Decimal { return b.maxCarryOver }

// BalanceSnapshot は永続化層との受け渡しに使う台帳の状態です。
type BalanceSnapshot struct {
	Key          BalanceKey
	Opening      decimal.Decimal
	Accrued      decimal.Decimal
	Used         decimal.Decimal
	Pending      decimal.Decimal
	Adjusted     decimal.Decimal
	CarriedOver  decimal.Decimal
	Forfeited    decimal.Decimal
	AccrualRate  decimal.Decimal
	MaxCarryOver decimal.Decimal
}

func (b *Balance) Snapshot() BalanceSnapshot {
	return BalanceSnapshot{
		Key:          b.key,
		Opening:      b.opening,
		Accrued:      b.accrued,
		Used:         b.used,
		Pending:      b.pending,
		Adjusted:     b.adjusted,
		CarriedOver:  b.carriedOver,
		Forfeited:    b.forfeited,
		AccrualRate:  b.accrualRate,
		MaxCarryOver: b.maxCarryOver,
	}
}

// ReconstituteBalance は保存済みの状態から台帳を復元します。
func ReconstituteBalance(s BalanceSnapshot) *Balance {
	return &Balance{
		key:          s.Key,
		opening:      s.Opening,
		accrued:      s.Accrued,
		used:         s.Used,
		pending:      s.Pending,
		adjusted:     s.Adjusted,
		carriedOver:  s.CarriedOver,
		forfeited:    s.Forfeited,
		accrualRate:  s.AccrualRate,
		maxCarryOver: s.MaxCarryOver,
	}
}

// DaysScale は台帳が保持する日数の小数桁数です。
const DaysScale = 2

// ParseDays は "2.5" のような日数表記を読み取ります。小数第 3 位以下を含む値は丸めずに拒否します。
func ParseDays(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidDays, raw)
	}
	if !d.Equal(d.Round(DaysScale)) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidDays, raw, DaysScale)
	}
	return d.Round(DaysScale), nil
}

// DaysOf は暦日数を台帳の日数に変換します。
func DaysOf(days int) decimal.Decimal {
	return decimal.NewFromInt(int64(days))
}

func requirePositive(days decimal.Decimal) error {
	if !days.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidDays, days)
	}
	return nil
}
