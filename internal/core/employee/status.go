package employee

import "fmt"

// Status は雇用状態を表します。
type Status string

const (
	StatusActive     Status = "Active"
	StatusTerminated Status = "Terminated"
	StatusOnLeave    Status = "OnLeave"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusActive, StatusTerminated, StatusOnLeave:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

func (s Status) String() string { return string(s) }
