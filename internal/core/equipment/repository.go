package equipment

import (
	"context"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
)

// Repository は備品永続化の抽象です。
type Repository interface {
	// NextAssetTag は year の最大連番 + 1 で資産タグを採番します。
	NextAssetTag(ctx context.Context, year int) (AssetTag, error)
	FindByID(ctx context.Context, id ID) (*Equipment, error)
	FindByAssetTag(ctx context.Context, tag AssetTag) (*Equipment, error)
	FindBySerialNumber(ctx context.Context, serial SerialNumber) (*Equipment, error)
	// FindAssignedTo は employeeID に貸出中の備品を返します。
	FindAssignedTo(ctx context.Context, employeeID employee.ID) ([]*Equipment, error)
	List(ctx context.Context, filter ListFilter) ([]*Equipment, error)
	Save(ctx context.Context, equipment *Equipment) error
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	Status *Status
	Type   *Type
	Limit  int
	Offset int
}
