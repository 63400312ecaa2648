package team

import (
	"context"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
)

// Repository はチーム永続化の抽象です。
type Repository interface {
	// NextIdentity は既存の最大連番 + 1 で TEAM-NNNN を採番します。
	NextIdentity(ctx context.Context) (ID, error)
	FindByID(ctx context.Context, id ID) (*Team, error)
	// FindByMember は employeeID が所属する解散済みでないチームを返します。
	FindByMember(ctx context.Context, employeeID employee.ID) ([]*Team, error)
	List(ctx context.Context, filter ListFilter) ([]*Team, error)
	Save(ctx context.Context, team *Team) error
}

type ListFilter struct {
	IncludeDisbanded bool
	ParentID         *ID
	Limit            int
	Offset           int
}
