package shared

import (
	"fmt"
	"time"
)

var ErrInvalidDateRange = NewInvariant("date_range.order", "date range: start must be on or before end")

// DateRange は開始日と終了日 (両端を含む) の期間です。
type DateRange struct {
	start time.Time
	end   time.Time
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	s, e := DateOf(start), DateOf(end)
	if s.After(e) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return DateRange{start: s, end: e}, nil
}

func (r DateRange) Start() time.Time { return r.start }
func (r DateRange) End() time.Time   { return r.end }

// Days は両端を含む暦日数です。
func (r DateRange) Days() int {
	return DaysBetween(r.start, r.end) + 1
}

func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(r.start) && !d.After(r.end)
}

func (r DateRange) Overlaps(other DateRange) bool {
	return !r.start.After(other.end) && !other.start.After(r.end)
}

func (r DateRange) String() string {
	return r.start.Format(time.DateOnly) + ".." + r.end.Format(time.DateOnly)
}
