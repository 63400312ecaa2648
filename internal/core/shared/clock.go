package shared

import "time"

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

// RealClock はシステム時刻を UTC で返す Clock です。
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// DateOf は時刻を UTC の日付 (0 時) に切り詰めます。
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today は clock の現在日付を返します。
func Today(clock Clock) time.Time {
	return DateOf(clock.Now())
}

// DaysBetween は from から to までの暦日数を返します。
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)) / (24 * time.Hour))
}
