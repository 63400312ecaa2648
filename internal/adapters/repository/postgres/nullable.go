package postgres

import (
	"database/sql"
	"time"
)

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC()
}

// nullableDate は DATE 列へ渡す値を UTC の 0 時に揃えます。
func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return dateOf(*value)
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time.UTC()
	return &t
}

func datePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	d := dateOf(value.Time)
	return &d
}

func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
