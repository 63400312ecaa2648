package equipment

import (
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newLaptop(t *testing.T) *Equipment {
	t.Helper()
	price, err := shared.ParseMoney("1299.99", "USD")
	if err != nil {
		t.Fatalf("ParseMoney returned error: %v", err)
	}
	eq, err := Add(NewID(), "ASSET-2025-0001", "SN-ABC-123", TypeLaptop, "Lenovo", "X1 Carbon", date(2025, 1, 2), price, date(2025, 1, 2))
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	eq.ReleaseEvents()
	return eq
}

func TestAdd_Validation(t *testing.T) {
	t.Parallel()

	price, _ := shared.ParseMoney("10", "USD")
	now := date(2025, 1, 2)

	cases := []struct {
		name   string
		serial SerialNumber
		brand  string
		want   error
	}{
		{name: "short serial", serial: "SN1", brand: "Dell", want: ErrInvalidSerialNumber},
		{name: "empty brand", serial: "SN-000001", brand: "  ", want: ErrInvalidBrand},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Add(NewID(), "ASSET-2025-0001", tc.serial, TypeMonitor, tc.brand, "U2720Q", now, price, now)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestIssue_OnlyFromAvailable(t *testing.T) {
	t.Parallel()

	eq := newLaptop(t)
	now := date(2025, 2, 1)

	if err := eq.Issue("EMP-2025-0001", now, now); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if eq.Status() != StatusAssigned {
		t.Fatalf("expected Assigned, got %s", eq.Status())
	}
	events := eq.ReleaseEvents()
	if len(events) != 1 || events[0].EventType() != EventIssued {
		t.Fatalf("expected issued event, got %+v", events)
	}

	err := eq.Issue("EMP-2025-0002", now, now)
	if !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
	if !shared.IsRuleConflict(err) {
		t.Fatalf("expected rule conflict, got %v", err)
	}
	if got := eq.CurrentAssignment().EmployeeID(); got != "EMP-2025-0001" {
		t.Fatalf("failed issue must not change the holder, got %s", got)
	}
	if len(eq.PendingEvents()) != 0 {
		t.Fatalf("failed issue must not record events")
	}
}

func TestReturn_ConditionDecidesStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		condition string
		want      Status
	}{
		{condition: "Good", want: StatusAvailable},
		{condition: "good", want: StatusAvailable},
		{condition: "Poor", want: StatusInMaintenance},
		{condition: "Damaged", want: StatusInMaintenance},
	}

	for _, tc := range cases {
		t.Run(tc.condition, func(t *testing.T) {
			t.Parallel()

			eq := newLaptop(t)
			issued := date(2025, 2, 1)
			if err := eq.Issue("EMP-2025-0001", issued, issued); err != nil {
				t.Fatalf("Issue returned error: %v", err)
			}
			eq.ReleaseEvents()

			returned := date(2025, 3, 1)
			if err := eq.Return(returned, tc.condition, returned); err != nil {
				t.Fatalf("Return returned error: %v", err)
			}
			if eq.Status() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, eq.Status())
			}
			if eq.CurrentAssignment() != nil {
				t.Fatalf("expected no current assignment")
			}
			history := eq.History()
			if len(history) != 1 || history[0].IsActive() || history[0].Condition() != tc.condition {
				t.Fatalf("unexpected history %+v", history)
			}
			if d := history[0].DurationInDays(returned); d != 28 {
				t.Fatalf("expected 28 days, got %d", d)
			}
			events := eq.ReleaseEvents()
			ev, ok := events[0].(Returned)
			if !ok || ev.NewStatus != string(tc.want) {
				t.Fatalf("unexpected returned event %+v", events)
			}
		})
	}
}

func TestReturn_Errors(t *testing.T) {
	t.Parallel()

	eq := newLaptop(t)
	now := date(2025, 2, 1)

	if err := eq.Return(now, "Good", now); !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}

	if err := eq.Issue("EMP-2025-0001", now, now); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if err := eq.Return(now, " ", now); !errors.Is(err, ErrInvalidCondition) {
		t.Fatalf("expected ErrInvalidCondition, got %v", err)
	}
	if err := eq.Return(now.AddDate(0, 0, -1), "Good", now); !errors.Is(err, ErrReturnBeforeAssign) {
		t.Fatalf("expected ErrReturnBeforeAssign, got %v", err)
	}
	if eq.Status() != StatusAssigned || eq.CurrentAssignment() == nil {
		t.Fatalf("failed return must leave the assignment open")
	}
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	eq := newLaptop(t)
	issued := date(2025, 2, 1)
	if err := eq.Issue("EMP-2025-0001", issued, issued); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	eq.ReleaseEvents()

	if err := eq.Transfer("EMP-2025-0001", issued, issued); !errors.Is(err, ErrTransferToSameEmployee) {
		t.Fatalf("expected ErrTransferToSameEmployee, got %v", err)
	}

	moved := date(2025, 4, 1)
	if err := eq.Transfer("EMP-2025-0002", moved, moved); err != nil {
		t.Fatalf("Transfer returned error: %v", err)
	}
	if eq.Status() != StatusAssigned {
		t.Fatalf("expected Assigned, got %s", eq.Status())
	}
	if got := eq.CurrentAssignment().EmployeeID(); got != employee.ID("EMP-2025-0002") {
		t.Fatalf("expected new holder, got %s", got)
	}
	history := eq.History()
	if len(history) != 1 || history[0].Condition() != ConditionGood || history[0].EmployeeID() != "EMP-2025-0001" {
		t.Fatalf("unexpected history %+v", history)
	}

	events := eq.ReleaseEvents()
	ev, ok := events[0].(Transferred)
	if !ok || ev.FromEmployeeID != "EMP-2025-0001" || ev.ToEmployeeID != "EMP-2025-0002" {
		t.Fatalf("unexpected transferred event %+v", events)
	}
}

func TestDecommission(t *testing.T) {
	t.Parallel()

	eq := newLaptop(t)
	now := date(2025, 2, 1)
	if err := eq.Issue("EMP-2025-0001", now, now); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if err := eq.Decommission("broken", now); !errors.Is(err, ErrAssignedCannotRetire) {
		t.Fatalf("expected ErrAssignedCannotRetire, got %v", err)
	}
	if err := eq.Return(now, "Cracked screen", now); err != nil {
		t.Fatalf("Return returned error: %v", err)
	}
	if err := eq.Decommission("beyond repair", now); err != nil {
		t.Fatalf("Decommission returned error: %v", err)
	}
	if eq.Status() != StatusDecommissioned || eq.DecommissionReason() != "beyond repair" {
		t.Fatalf("unexpected state %s %q", eq.Status(), eq.DecommissionReason())
	}
	if err := eq.Decommission("again", now); !errors.Is(err, ErrAlreadyDecommissioned) {
		t.Fatalf("expected ErrAlreadyDecommissioned, got %v", err)
	}
	if err := eq.Issue("EMP-2025-0002", now, now); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
}

func TestCompleteMaintenance(t *testing.T) {
	t.Parallel()

	eq := newLaptop(t)
	now := date(2025, 2, 1)
	if err := eq.CompleteMaintenance(now); !errors.Is(err, ErrNotInMaintenance) {
		t.Fatalf("expected ErrNotInMaintenance, got %v", err)
	}
	if err := eq.Issue("EMP-2025-0001", now, now); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if err := eq.Return(now, "Poor", now); err != nil {
		t.Fatalf("Return returned error: %v", err)
	}
	eq.ReleaseEvents()

	if err := eq.CompleteMaintenance(now); err != nil {
		t.Fatalf("CompleteMaintenance returned error: %v", err)
	}
	if eq.Status() != StatusAvailable {
		t.Fatalf("expected Available, got %s", eq.Status())
	}
	if events := eq.ReleaseEvents(); len(events) != 1 || events[0].EventType() != EventMaintenanceCompleted {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestReconstitute_RoundTrip(t *testing.T) {
	t.Parallel()

	eq := newLaptop(t)
	now := date(2025, 2, 1)
	if err := eq.Issue("EMP-2025-0001", now, now); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	restored := Reconstitute(eq.Snapshot())
	if restored.Status() != StatusAssigned || restored.CurrentAssignment() == nil {
		t.Fatalf("unexpected restored state %+v", restored.Snapshot())
	}
	if len(restored.PendingEvents()) != 0 {
		t.Fatalf("reconstitute must not record events")
	}
	if err := restored.Return(now, "Good", now); err != nil {
		t.Fatalf("Return on restored returned error: %v", err)
	}
	if eq.CurrentAssignment() == nil {
		t.Fatalf("restored aggregate must not share state with the original")
	}
}

func TestType_Classification(t *testing.T) {
	t.Parallel()

	if !TypeLaptop.IsPrimaryDevice() || TypeLaptop.IsAccessory() {
		t.Fatalf("laptop must be a primary device")
	}
	if !TypeMouse.IsAccessory() || TypeMouse.IsPrimaryDevice() {
		t.Fatalf("mouse must be an accessory")
	}
	if TypeMonitor.IsAccessory() || TypeMonitor.IsPrimaryDevice() {
		t.Fatalf("monitor is neither")
	}
	if _, err := ParseType("Printer"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if _, err := ParseAssetTag("ASSET-25-1"); !errors.Is(err, ErrInvalidAssetTag) {
		t.Fatalf("expected ErrInvalidAssetTag, got %v", err)
	}
}
