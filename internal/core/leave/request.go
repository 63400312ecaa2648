package leave

import (
	"strings"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// DefaultCancellationWindow は開始前に取り消しできなくなる時間幅です。
const DefaultCancellationWindow = 24 * time.Hour

// Request は休暇申請集約です。
type Request struct {
	shared.AggregateRoot

	id              ID
	employeeID      employee.ID
	leaveType       Type
	period          shared.DateRange
	reason          string
	status          Status
	requestedAt     time.Time
	approvedBy      *employee.ID
	approvedAt      *time.Time
	rejectedBy      *employee.ID
	rejectedAt      *time.Time
	rejectionReason string
	cancelledAt     *time.Time
	completedAt     *time.Time
}

// NewRequest は Pending の休暇申請を作成し leave.requested を記録します。
// Sick 以外は開始日が今日より前だと失敗します。
func NewRequest(id ID, employeeID employee.ID, leaveType Type, period shared.DateRange, reason string, now time.Time) (*Request, error) {
	if _, err := ParseID(string(id)); err != nil {
		return nil, err
	}
	if _, err := employee.ParseID(string(employeeID)); err != nil {
		return nil, ErrInvalidEmployeeID
	}
	if _, err := ParseType(string(leaveType)); err != nil {
		return nil, err
	}
	if !leaveType.IsSick() && period.Start().Before(shared.DateOf(now)) {
		return nil, ErrStartInPast
	}

	r := &Request{
		id:          id,
		employeeID:  employeeID,
		leaveType:   leaveType,
		period:      period,
		reason:      strings.TrimSpace(reason),
		status:      StatusPending,
		requestedAt: now.UTC(),
	}

	r.Record(Requested{
		EventBase:  shared.NewEventBase(EventRequested, AggregateType, id.String(), now),
		LeaveID:    id.String(),
		EmployeeID: employeeID.String(),
		Type:       string(leaveType),
		StartDate:  period.Start(),
		EndDate:    period.End(),
		Days:       period.Days(),
		Reason:     r.reason,
	})
	return r, nil
}

// Approve は Pending の申請を承認します。
func (r *Request) Approve(approverID employee.ID, now time.Time) error {
	if r.status != StatusPending {
		return ErrNotPending
	}
	if _, err := employee.ParseID(string(approverID)); err != nil {
		return ErrInvalidEmployeeID
	}

	at := now.UTC()
	r.status = StatusApproved
	r.approvedBy = &approverID
	r.approvedAt = &at

	r.Record(Approved{
		EventBase:  shared.NewEventBase(EventApproved, AggregateType, r.id.String(), now),
		LeaveID:    r.id.String(),
		EmployeeID: r.employeeID.String(),
		ApprovedBy: approverID.String(),
		StartDate:  r.period.Start(),
		EndDate:    r.period.End(),
		Days:       r.period.Days(),
	})
	return nil
}

// Reject は Pending の申請を却下します。
func (r *Request) Reject(rejecterID employee.ID, reason string, now time.Time) error {
	if r.status != StatusPending {
		return ErrNotPending
	}
	if _, err := employee.ParseID(string(rejecterID)); err != nil {
		return ErrInvalidEmployeeID
	}
	why := strings.TrimSpace(reason)
	if why == "" {
		return ErrRejectionReason
	}

	at := now.UTC()
	r.status = StatusRejected
	r.rejectedBy = &rejecterID
	r.rejectedAt = &at
	r.rejectionReason = why

	r.Record(Rejected{
		EventBase:  shared.NewEventBase(EventRejected, AggregateType, r.id.String(), now),
		LeaveID:    r.id.String(),
		EmployeeID: r.employeeID.String(),
		RejectedBy: rejecterID.String(),
		Reason:     why,
	})
	return nil
}

// Cancel は Pending または Approved の申請を取り消します。
// 開始日時 (開始日 0 時 UTC) までの残りが 0 より大きく window 未満の間だけ拒否します。
func (r *Request) Cancel(now time.Time, window time.Duration) error {
	switch r.status {
	case StatusCompleted:
		return ErrCompletedCannotCancel
	case StatusPending, StatusApproved:
	default:
		return ErrNotCancellable
	}
	if window < 0 {
		return ErrInvalidCancelWindow
	}
	if untilStart := r.period.Start().Sub(now); untilStart > 0 && untilStart < window {
		return ErrWithinCancelWindow
	}

	previous := r.status
	at := now.UTC()
	r.status = StatusCancelled
	r.cancelledAt = &at

	r.Record(Cancelled{
		EventBase:      shared.NewEventBase(EventCancelled, AggregateType, r.id.String(), now),
		LeaveID:        r.id.String(),
		EmployeeID:     r.employeeID.String(),
		PreviousStatus: string(previous),
		StartDate:      r.period.Start(),
		EndDate:        r.period.End(),
		Days:           r.period.Days(),
	})
	return nil
}

// Complete は終了日を過ぎた Approved の申請を完了にします。
func (r *Request) Complete(now time.Time) error {
	if r.status != StatusApproved || !r.period.End().Before(shared.DateOf(now)) {
		return ErrNotCompletable
	}

	at := now.UTC()
	r.status = StatusCompleted
	r.completedAt = &at

	r.Record(Completed{
		EventBase:  shared.NewEventBase(EventCompleted, AggregateType, r.id.String(), now),
		LeaveID:    r.id.String(),
		EmployeeID: r.employeeID.String(),
		Days:       r.period.Days(),
	})
	return nil
}

func (r *Request) ID() string               { return r.id.String() }
func (r *Request) LeaveID() ID              { return r.id }
func (r *Request) EmployeeID() employee.ID  { return r.employeeID }
func (r *Request) Type() Type               { return r.leaveType }
func (r *Request) Period() shared.DateRange { return r.period }
func (r *Request) Reason() string           { return r.reason }
func (r *Request) Status() Status           { return r.status }
func (r *Request) RequestedAt() time.Time   { return r.requestedAt }
func (r *Request) RejectionReason() string  { return r.rejectionReason }
func (r *Request) ApprovedBy() *employee.ID { return copyEmployeeID(r.approvedBy) }
func (r *Request) ApprovedAt() *time.Time   { return copyTime(r.approvedAt) }
func (r *Request) RejectedBy() *employee.ID { return copyEmployeeID(r.rejectedBy) }
func (r *Request) RejectedAt() *time.Time   { return copyTime(r.rejectedAt) }
func (r *Request) CancelledAt() *time.Time  { return copyTime(r.cancelledAt) }
func (r *Request) CompletedAt() *time.Time  { return copyTime(r.completedAt) }

// TotalDays は両端を含む暦日数です。
func (r *Request) TotalDays() int { return r.period.Days() }

// BalanceYear は台帳を引く年で、開始日の年です。
func (r *Request) BalanceYear() int { return r.period.Start().Year() }

// RequestSnapshot は永続化層との受け渡しに使う申請の状態です。
type RequestSnapshot struct {
	ID              ID
	EmployeeID      employee.ID
	Type            Type
	Period          shared.DateRange
	Reason          string
	Status          Status
	RequestedAt     time.Time
	ApprovedBy      *employee.ID
	ApprovedAt      *time.Time
	RejectedBy      *employee.ID
	RejectedAt      *time.Time
	RejectionReason string
	CancelledAt     *time.Time
	CompletedAt     *time.Time
}

func (r *Request) Snapshot() RequestSnapshot {
	return RequestSnapshot{
		ID:              r.id,
		EmployeeID:      r.employeeID,
		Type:            r.leaveType,
		Period:          r.period,
		Reason:          r.reason,
		Status:          r.status,
		RequestedAt:     r.requestedAt,
		ApprovedBy:      copyEmployeeID(r.approvedBy),
		ApprovedAt:      copyTime(r.approvedAt),
		RejectedBy:      copyEmployeeID(r.rejectedBy),
		RejectedAt:      copyTime(r.rejectedAt),
		RejectionReason: r.rejectionReason,
		CancelledAt:     copyTime(r.cancelledAt),
		CompletedAt:     copyTime(r.completedAt),
	}
}

// ReconstituteRequest は保存済みの状態から集約を復元します。
func ReconstituteRequest(s RequestSnapshot) *Request {
	return &Request{
		id:              s.ID,
		employeeID:      s.EmployeeID,
		leaveType:       s.Type,
		period:          s.Period,
		reason:          s.Reason,
		status:          s.Status,
		requestedAt:     s.RequestedAt,
		approvedBy:      copyEmployeeID(s.ApprovedBy),
		approvedAt:      copyTime(s.ApprovedAt),
		rejectedBy:      copyEmployeeID(s.RejectedBy),
		rejectedAt:      copyTime(s.RejectedAt),
		rejectionReason: s.RejectionReason,
		cancelledAt:     copyTime(s.CancelledAt),
		completedAt:     copyTime(s.CompletedAt),
	}
}

func copyEmployeeID(id *employee.ID) *employee.ID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
