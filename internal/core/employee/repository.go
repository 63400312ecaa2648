package employee

import (
	"context"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// Repository は社員永続化の抽象です。
type Repository interface {
	// NextIdentity は year の最大連番 + 1 で次の社員番号を採番します。
	NextIdentity(ctx context.Context, year int) (ID, error)
	FindByID(ctx context.Context, id ID) (*Employee, error)
	FindByEmail(ctx context.Context, email shared.Email) (*Employee, error)
	EmailExists(ctx context.Context, email shared.Email, excludeID ID) (bool, error)
	// Save は社員を新規作成または上書き保存します。
	Save(ctx context.Context, employee *Employee) error
	List(ctx context.Context, filter ListFilter) ([]*Employee, string, error)
	ListActiveIDs(ctx context.Context) ([]ID, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	Status   *Status
	Position *Position
	Location *WorkLocation
	Limit    int
	Offset   int
}
