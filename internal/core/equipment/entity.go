package equipment

import (
	"strings"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// Equipment は備品集約です。未返却の貸出は常に高々 1 件です。
type Equipment struct {
	shared.AggregateRoot

	id                 ID
	assetTag           AssetTag
	serialNumber       SerialNumber
	equipmentType      Type
	brand              string
	model              string
	purchaseDate       time.Time
	purchasePrice      shared.Money
	status             Status
	current            *Assignment
	history            []Assignment
	decommissionReason string
}

// Add は Available な備品を登録し equipment.added を記録します。
func Add(id ID, tag AssetTag, serial SerialNumber, equipmentType Type, brand, model string, purchaseDate time.Time, price shared.Money, now time.Time) (*Equipment, error) {
	if _, err := ParseID(string(id)); err != nil {
		return nil, err
	}
	if _, err := ParseAssetTag(string(tag)); err != nil {
		return nil, err
	}
	if _, err := ParseSerialNumber(string(serial)); err != nil {
		return nil, err
	}
	if _, err := ParseType(string(equipmentType)); err != nil {
		return nil, err
	}
	b := strings.TrimSpace(brand)
	if b == "" {
		return nil, ErrInvalidBrand
	}
	m := strings.TrimSpace(model)
	if m == "" {
		return nil, ErrInvalidModel
	}

	e := &Equipment{
		id:            id,
		assetTag:      tag,
		serialNumber:  serial,
		equipmentType: equipmentType,
		brand:         b,
		model:         m,
		purchaseDate:  shared.DateOf(purchaseDate),
		purchasePrice: price,
		status:        StatusAvailable,
	}

	e.Record(Added{
		EventBase:     shared.NewEventBase(EventAdded, AggregateType, id.String(), now),
		EquipmentID:   id.String(),
		AssetTag:      tag.String(),
		SerialNumber:  serial.String(),
		Type:          string(equipmentType),
		Brand:         b,
		Model:         m,
		PurchaseDate:  e.purchaseDate,
		PurchasePrice: price.Amount().StringFixed(2),
		Currency:      price.Currency(),
	})
	return e, nil
}

// Issue は Available な備品を社員に貸し出します。
func (e *Equipment) Issue(employeeID employee.ID, assignedAt, now time.Time) error {
	if e.status != StatusAvailable {
		return ErrNotAvailable
	}
	if _, err := employee.ParseID(string(employeeID)); err != nil {
		return ErrInvalidEmployeeID
	}

	e.current = newAssignment(employeeID, assignedAt)
	e.status = StatusAssigned

	e.Record(Issued{
		EventBase:   shared.NewEventBase(EventIssued, AggregateType, e.id.String(), now),
		EquipmentID: e.id.String(),
		AssetTag:    e.assetTag.String(),
		EmployeeID:  employeeID.String(),
		AssignedAt:  e.current.assignedAt,
	})
	return nil
}

// Return は貸出を完了させ履歴へ移します。condition が Good なら Available、それ以外は InMaintenance になります。
func (e *Equipment) Return(returnedAt time.Time, condition string, now time.Time) error {
	if e.status != StatusAssigned || e.current == nil {
		return ErrNotAssigned
	}
	cond := strings.TrimSpace(condition)
	if cond == "" {
		return ErrInvalidCondition
	}

	closed := *e.current
	if err := closed.complete(returnedAt, cond); err != nil {
		return err
	}

	next := StatusInMaintenance
	if strings.EqualFold(cond, ConditionGood) {
		next = StatusAvailable
	}

	e.history = append(e.history, closed)
	e.current = nil
	e.status = next

	e.Record(Returned{
		EventBase:   shared.NewEventBase(EventReturned, AggregateType, e.id.String(), now),
		EquipmentID: e.id.String(),
		AssetTag:    e.assetTag.String(),
		EmployeeID:  closed.employeeID.String(),
		ReturnedAt:  *closed.returnedAt,
		Condition:   cond,
		NewStatus:   string(next),
	})
	return nil
}

// Transfer は現在の貸出を Good で閉じ、to への新しい貸出を開始します。
func (e *Equipment) Transfer(to employee.ID, transferredAt, now time.Time) error {
	if e.status != StatusAssigned || e.current == nil {
		return ErrNotAssigned
	}
	if _, err := employee.ParseID(string(to)); err != nil {
		return ErrInvalidEmployeeID
	}
	if e.current.employeeID == to {
		return ErrTransferToSameEmployee
	}

	closed := *e.current
	if err := closed.complete(transferredAt, ConditionGood); err != nil {
		return err
	}

	e.history = append(e.history, closed)
	e.current = newAssignment(to, transferredAt)

	e.Record(Transferred{
		EventBase:      shared.NewEventBase(EventTransferred, AggregateType, e.id.String(), now),
		EquipmentID:    e.id.String(),
		AssetTag:       e.assetTag.String(),
		FromEmployeeID: closed.employeeID.String(),
		ToEmployeeID:   to.String(),
		TransferredAt:  e.current.assignedAt,
	})
	return nil
}

// Decommission は備品を廃棄します。貸出中は廃棄できません。
func (e *Equipment) Decommission(reason string, now time.Time) error {
	switch e.status {
	case StatusAssigned:
		return ErrAssignedCannotRetire
	case StatusDecommissioned:
		return ErrAlreadyDecommissioned
	}

	e.status = StatusDecommissioned
	e.decommissionReason = strings.TrimSpace(reason)

	e.Record(Decommissioned{
		EventBase:   shared.NewEventBase(EventDecommissioned, AggregateType, e.id.String(), now),
		EquipmentID: e.id.String(),
		AssetTag:    e.assetTag.String(),
		Reason:      e.decommissionReason,
	})
	return nil
}

// CompleteMaintenance は InMaintenance の備品を Available に戻します。
func (e *Equipment) CompleteMaintenance(now time.Time) error {
	if e.status != StatusInMaintenance {
		return ErrNotInMaintenance
	}

	e.status = StatusAvailable

	e.Record(MaintenanceCompleted{
		EventBase:   shared.NewEventBase(EventMaintenanceCompleted, AggregateType, e.id.String(), now),
		EquipmentID: e.id.String(),
		AssetTag:    e.assetTag.String(),
	})
	return nil
}

func (e *Equipment) ID() string                  { return e.id.String() }
func (e *Equipment) EquipmentID() ID             { return e.id }
func (e *Equipment) AssetTag() AssetTag          { return e.assetTag }
func (e *Equipment) SerialNumber() SerialNumber  { return e.serialNumber }
func (e *Equipment) Type() Type                  { return e.equipmentType }
func (e *Equipment) Brand() string               { return e.brand }
func (e *Equipment) Model() string               { return e.model }
func (e *Equipment) PurchaseDate() time.Time     { return e.purchaseDate }
func (e *Equipment) PurchasePrice() shared.Money { return e.purchasePrice }
func (e *Equipment) Status() Status              { return e.status }
func (e *Equipment) DecommissionReason() string  { return e.decommissionReason }

// CurrentAssignment は未返却の貸出を返します。貸出中でなければ nil です。
func (e *Equipment) CurrentAssignment() *Assignment {
	if e.current == nil {
		return nil
	}
	a := *e.current
	return &a
}

// History は返却済みの貸出を古い順に返します。
func (e *Equipment) History() []Assignment {
	return append([]Assignment(nil), e.history...)
}

// Snapshot は永続化層との受け渡しに使う備品の状態です。
type Snapshot struct {
	ID                 ID
	AssetTag           AssetTag
	SerialNumber       SerialNumber
	Type               Type
	Brand              string
	Model              string
	PurchaseDate       time.Time
	PurchasePrice      shared.Money
	Status             Status
	Current            *Assignment
	History            []Assignment
	DecommissionReason string
}

func (e *Equipment) Snapshot() Snapshot {
	return Snapshot{
		ID:                 e.id,
		AssetTag:           e.assetTag,
		SerialNumber:       e.serialNumber,
		Type:               e.equipmentType,
		Brand:              e.brand,
		Model:              e.model,
		PurchaseDate:       e.purchaseDate,
		PurchasePrice:      e.purchasePrice,
		Status:             e.status,
		Current:            e.CurrentAssignment(),
		History:            e.History(),
		DecommissionReason: e.decommissionReason,
	}
}

// Reconstitute は保存済みの状態から集約を復元します。
func Reconstitute(s Snapshot) *Equipment {
	var current *Assignment
	if s.Current != nil {
		a := *s.Current
		current = &a
	}
	return &Equipment{
		id:                 s.ID,
		assetTag:           s.AssetTag,
		serialNumber:       s.SerialNumber,
		equipmentType:      s.Type,
		brand:              s.Brand,
		model:              s.Model,
		purchaseDate:       s.PurchaseDate,
		purchasePrice:      s.PurchasePrice,
		status:             s.Status,
		current:            current,
		history:            append([]Assignment(nil), s.History...),
		decommissionReason: s.DecommissionReason,
	}
}
