package equipment

import (
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

const AggregateType = "equipment"

const (
	EventAdded                = "equipment.added"
	EventIssued               = "equipment.issued"
	EventReturned             = "equipment.returned"
	EventTransferred          = "equipment.transferred"
	EventDecommissioned       = "equipment.decommissioned"
	EventMaintenanceCompleted = "equipment.maintenance_completed"
)

type Added struct {
	shared.EventBase
	EquipmentID   string    `json:"equipment_id"`
	AssetTag      string    `json:"asset_tag"`
	SerialNumber  string    `json:"serial_number"`
	Type          string    `json:"type"`
	Brand         string    `json:"brand"`
	Model         string    `json:"model"`
	PurchaseDate  time.Time `json:"purchase_date"`
	PurchasePrice string    `json:"purchase_price"`
	Currency      string    `json:"currency"`
}

type Issued struct {
	shared.EventBase
	EquipmentID string    `json:"equipment_id"`
	AssetTag    string    `json:"asset_tag"`
	EmployeeID  string    `json:"employee_id"`
	AssignedAt  time.Time `json:"assigned_at"`
}

type Returned struct {
	shared.EventBase
	EquipmentID string    `json:"equipment_id"`
	AssetTag    string    `json:"asset_tag"`
	EmployeeID  string    `json:"employee_id"`
	ReturnedAt  time.Time `json:"returned_at"`
	Condition   string    `json:"condition"`
	NewStatus   string    `json:"new_status"`
}

// Transferred は旧貸出の返却と新貸出の開始を 1 件で表します。
type Transferred struct {
	shared.EventBase
	EquipmentID    string    `json:"equipment_id"`
	AssetTag       string    `json:"asset_tag"`
	FromEmployeeID string    `json:"from_employee_id"`
	ToEmployeeID   string    `json:"to_employee_id"`
	TransferredAt  time.Time `json:"transferred_at"`
}

type Decommissioned struct {
	shared.EventBase
	EquipmentID string `json:"equipment_id"`
	AssetTag    string `json:"asset_tag"`
	Reason      string `json:"reason"`
}

type MaintenanceCompleted struct {
	shared.EventBase
	EquipmentID string `json:"equipment_id"`
	AssetTag    string `json:"asset_tag"`
}
