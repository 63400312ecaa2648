package equipment

import (
	"fmt"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

var (
	ErrInvalidID           = shared.NewInvariant("equipment.id", "equipment: invalid id")
	ErrInvalidAssetTag     = shared.NewInvariant("equipment.asset_tag", "equipment: invalid asset tag")
	ErrInvalidSerialNumber = shared.NewInvariant("equipment.serial_number", "equipment: serial number must be at least 6 characters")
	ErrInvalidType         = shared.NewInvariant("equipment.type", "equipment: invalid equipment type")
	ErrInvalidStatus       = shared.NewInvariant("equipment.status", "equipment: invalid status")
	ErrInvalidBrand        = shared.NewInvariant("equipment.brand", "equipment: brand must be set")
	ErrInvalidModel        = shared.NewInvariant("equipment.model", "equipment: model must be set")
	ErrInvalidCondition    = shared.NewInvariant("equipment.condition", "equipment: return condition must be set")
	ErrReturnBeforeAssign  = shared.NewInvariant("equipment.return_date", "equipment: return date cannot be before assignment date")
	ErrInvalidEmployeeID   = shared.NewInvariant("equipment.employee_id", "equipment: invalid employee id")

	ErrNotAvailable            = shared.NewConflict("equipment.not_available", "equipment: not available for issue")
	ErrNotAssigned             = shared.NewConflict("equipment.not_assigned", "equipment: not currently assigned")
	ErrAssignedCannotRetire    = shared.NewConflict("equipment.assigned_decommission", "equipment: cannot decommission assigned equipment")
	ErrAlreadyDecommissioned   = shared.NewConflict("equipment.decommissioned", "equipment: already decommissioned")
	ErrNotInMaintenance        = shared.NewConflict("equipment.not_in_maintenance", "equipment: not in maintenance")
	ErrTransferToSameEmployee  = shared.NewConflict("equipment.transfer_same_employee", "equipment: cannot transfer to the current holder")
	ErrAssignmentAlreadyClosed = shared.NewConflict("equipment.assignment_closed", "equipment: assignment already returned")
	ErrSerialNumberExists      = shared.NewConflict("equipment.serial_unique", "equipment: serial number already registered")

	ErrEquipmentNotFound = fmt.Errorf("equipment: %w", shared.ErrNotFound)
)
