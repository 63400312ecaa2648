package equipment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

const defaultListLimit = 100

// Service は備品に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock shared.Clock
	uow   *shared.UnitOfWork
}

// NewService は Service を生成します。
func NewService(repo Repository, clock shared.Clock, uow *shared.UnitOfWork) *Service {
	if clock == nil {
		clock = shared.RealClock{}
	}
	if uow == nil {
		uow = shared.NewUnitOfWork(nil)
	}
	return &Service{repo: repo, clock: clock, uow: uow}
}

// AddEquipmentInput は備品登録時の入力です。
type AddEquipmentInput struct {
	SerialNumber  string
	Type          string
	Brand         string
	Model         string
	PurchaseDate  time.Time
	PurchasePrice string
	Currency      string
}

type IssueEquipmentInput struct {
	ID         string
	EmployeeID string
	AssignedAt time.Time
}

type ReturnEquipmentInput struct {
	ID         string
	ReturnedAt time.Time
	Condition  string
}

type TransferEquipmentInput struct {
	ID            string
	ToEmployeeID  string
	TransferredAt time.Time
}

type DecommissionEquipmentInput struct {
	ID     string
	Reason string
}

type ListEquipmentInput struct {
	Status string
	Type   string
	Limit  int
	Offset int
}

// AddEquipment は資産タグを採番して備品を登録します。シリアル番号は重複できません。
func (s *Service) AddEquipment(ctx context.Context, in AddEquipmentInput) (*Equipment, error) {
	serial, err := ParseSerialNumber(in.SerialNumber)
	if err != nil {
		return nil, err
	}
	equipmentType, err := ParseType(in.Type)
	if err != nil {
		return nil, err
	}
	price, err := shared.ParseMoney(in.PurchasePrice, in.Currency)
	if err != nil {
		return nil, err
	}

	var added *Equipment
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		if _, err := s.repo.FindBySerialNumber(txCtx, serial); err == nil {
			return nil, ErrSerialNumberExists
		} else if !errors.Is(err, ErrEquipmentNotFound) {
			return nil, err
		}

		now := s.clock.Now()
		tag, err := s.repo.NextAssetTag(txCtx, now.Year())
		if err != nil {
			return nil, err
		}

		eq, err := Add(NewID(), tag, serial, equipmentType, in.Brand, in.Model, in.PurchaseDate, price, now)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(txCtx, eq); err != nil {
			return nil, err
		}

		added = eq
		return eq.ReleaseEvents(), nil
	}); err != nil {
		return nil, err
	}

	return added, nil
}

// IssueEquipment は備品を社員に貸し出します。
func (s *Service) IssueEquipment(ctx context.Context, in IssueEquipmentInput) (*Equipment, error) {
	employeeID, err := employee.ParseID(in.EmployeeID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, in.ID, func(e *Equipment, now time.Time) error {
		return e.Issue(employeeID, in.AssignedAt, now)
	})
}

// ReturnEquipment は貸出中の備品を返却します。
func (s *Service) ReturnEquipment(ctx context.Context, in ReturnEquipmentInput) (*Equipment, error) {
	return s.mutate(ctx, in.ID, func(e *Equipment, now time.Time) error {
		return e.Return(in.ReturnedAt, in.Condition, now)
	})
}

// TransferEquipment は貸出中の備品を別の社員へ付け替えます。
func (s *Service) TransferEquipment(ctx context.Context, in TransferEquipmentInput) (*Equipment, error) {
	to, err := employee.ParseID(in.ToEmployeeID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, in.ID, func(e *Equipment, now time.Time) error {
		return e.Transfer(to, in.TransferredAt, now)
	})
}

func (s *Service) DecommissionEquipment(ctx context.Context, in DecommissionEquipmentInput) (*Equipment, error) {
	return s.mutate(ctx, in.ID, func(e *Equipment, now time.Time) error {
		return e.Decommission(in.Reason, now)
	})
}

func (s *Service) CompleteMaintenance(ctx context.Context, id string) (*Equipment, error) {
	return s.mutate(ctx, id, func(e *Equipment, now time.Time) error {
		return e.CompleteMaintenance(now)
	})
}

// GetEquipment は UUID で備品を取得します。
func (s *Service) GetEquipment(ctx context.Context, id string) (*Equipment, error) {
	equipmentID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var found *Equipment
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		found, err = s.repo.FindByID(txCtx, equipmentID)
		return err
	})
	return found, err
}

// GetByAssetTag は資産タグで備品を取得します。
func (s *Service) GetByAssetTag(ctx context.Context, tag string) (*Equipment, error) {
	assetTag, err := ParseAssetTag(tag)
	if err != nil {
		return nil, err
	}
	var found *Equipment
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		found, err = s.repo.FindByAssetTag(txCtx, assetTag)
		return err
	})
	return found, err
}

// ListAssignedTo は社員に貸出中の備品を返します。
func (s *Service) ListAssignedTo(ctx context.Context, employeeID string) ([]*Equipment, error) {
	id, err := employee.ParseID(employeeID)
	if err != nil {
		return nil, err
	}
	var items []*Equipment
	err = s.uow.Read(ctx, func(txCtx context.Context) error {
		items, err = s.repo.FindAssignedTo(txCtx, id)
		return err
	})
	return items, err
}

func (s *Service) ListEquipment(ctx context.Context, in ListEquipmentInput) ([]*Equipment, error) {
	filter := ListFilter{Limit: in.Limit, Offset: in.Offset}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if strings.TrimSpace(in.Status) != "" {
		status, err := ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if strings.TrimSpace(in.Type) != "" {
		t, err := ParseType(in.Type)
		if err != nil {
			return nil, err
		}
		filter.Type = &t
	}

	var items []*Equipment
	err := s.uow.Read(ctx, func(txCtx context.Context) error {
		var err error
		items, err = s.repo.List(txCtx, filter)
		return err
	})
	return items, err
}

func (s *Service) mutate(ctx context.Context, rawID string, fn func(*Equipment, time.Time) error) (*Equipment, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	var updated *Equipment
	if err := s.uow.Do(ctx, func(txCtx context.Context) ([]shared.Event, error) {
		eq, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(eq, s.clock.Now()); err != nil {
			return nil, err
		}
		if err := s.repo.Save(txCtx, eq); err != nil {
			return nil, err
		}
		updated = eq
		return eq.ReleaseEvents(), nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}
