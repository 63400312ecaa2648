package leave

import (
	"fmt"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

var (
	ErrInvalidID           = shared.NewInvariant("leave.id", "leave: invalid id")
	ErrInvalidType         = shared.NewInvariant("leave.type", "leave: invalid leave type")
	ErrInvalidStatus       = shared.NewInvariant("leave.status", "leave: invalid status")
	ErrInvalidEmployeeID   = shared.NewInvariant("leave.employee_id", "leave: invalid employee id")
	ErrStartInPast         = shared.NewInvariant("leave.start_in_past", "leave: cannot request leave in the past")
	ErrRejectionReason     = shared.NewInvariant("leave.rejection_reason", "leave: rejection reason must be set")
	ErrInvalidDays         = shared.NewInvariant("leave.days", "leave: days must be positive")
	ErrInvalidYear         = shared.NewInvariant("leave.year", "leave: invalid year")
	ErrInvalidMonth        = shared.NewInvariant("leave.month", "leave: month must be between 1 and 12")
	ErrInvalidAccrualKind  = shared.NewInvariant("leave.accrual_kind", "leave: invalid accrual kind")
	ErrInvalidCancelWindow = shared.NewInvariant("leave.cancellation_window", "leave: cancellation window must not be negative")

	ErrNotPending            = shared.NewConflict("leave.not_pending", "leave: only pending requests can be approved or rejected")
	ErrCompletedCannotCancel = shared.NewConflict("leave.cancel_completed", "leave: cannot cancel completed leave")
	ErrNotCancellable        = shared.NewConflict("leave.not_cancellable", "leave: only pending or approved requests can be cancelled")
	ErrWithinCancelWindow    = shared.NewConflict("leave.cancel_window", "leave: cannot cancel leave this close to its start date")
	ErrNotCompletable        = shared.NewConflict("leave.not_completable", "leave: only approved requests that have ended can be completed")
	ErrOverlappingLeave      = shared.NewConflict("leave.overlap", "leave: employee already has leave in this period")
	ErrEmployeeNotActive     = shared.NewConflict("leave.employee_inactive", "leave: employee is not active")
	ErrInsufficientBalance   = shared.NewConflict("leave.insufficient_balance", "leave: insufficient leave balance")
	ErrPendingUnderflow      = shared.NewConflict("leave.pending_underflow", "leave: pending days cannot go below zero")
	ErrUsedUnderflow         = shared.NewConflict("leave.used_underflow", "leave: used days cannot go below zero")
	ErrAdjustmentUnderflow   = shared.NewConflict("leave.adjusted_underflow", "leave: adjustment would make the balance negative")

	ErrLeaveNotFound   = fmt.Errorf("leave: %w", shared.ErrNotFound)
	ErrBalanceNotFound = fmt.Errorf("leave balance: %w", shared.ErrNotFound)
)
