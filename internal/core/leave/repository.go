package leave

import (
	"context"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// Repository は休暇申請永続化の抽象です。
type Repository interface {
	// NextIdentity は year の最大連番 + 1 で LEAVE-YYYY-NNNN を採番します。
	NextIdentity(ctx context.Context, year int) (ID, error)
	FindByID(ctx context.Context, id ID) (*Request, error)
	FindByEmployee(ctx context.Context, employeeID employee.ID) ([]*Request, error)
	FindPending(ctx context.Context) ([]*Request, error)
	// FindApprovedEndedBefore は date より前に終了した Approved の申請を返します。
	FindApprovedEndedBefore(ctx context.Context, date time.Time) ([]*Request, error)
	FindApprovedInPeriod(ctx context.Context, period shared.DateRange) ([]*Request, error)
	// HasOverlapping は Pending/Approved の申請に期間が重なるものがあるか判定します。
	HasOverlapping(ctx context.Context, employeeID employee.ID, period shared.DateRange, excludeID ID) (bool, error)
	Save(ctx context.Context, request *Request) error
}

// BalanceRepository は残高台帳の永続化です。
type BalanceRepository interface {
	// GetForUpdate は台帳行を行ロック付きで取得します。存在しなければ policy で作成してからロックします。
	GetForUpdate(ctx context.Context, key BalanceKey, policy Policy) (*Balance, error)
	Get(ctx context.Context, key BalanceKey) (*Balance, error)
	ListByEmployee(ctx context.Context, employeeID employee.ID, year int) ([]*Balance, error)
	Save(ctx context.Context, balance *Balance) error
}

// AccrualRepository は付与記録の永続化です。
type AccrualRepository interface {
	// Record は付与記録を書き込みます。Periodic な種類で同じキーが既にあれば false を返します。
	Record(ctx context.Context, accrual Accrual) (bool, error)
	ListByEmployee(ctx context.Context, employeeID employee.ID, year int) ([]Accrual, error)
}

// EmployeeDirectory は休暇ユースケースが参照する社員情報です。
type EmployeeDirectory interface {
	FindByID(ctx context.Context, id employee.ID) (*employee.Employee, error)
	ListActiveIDs(ctx context.Context) ([]employee.ID, error)
}
