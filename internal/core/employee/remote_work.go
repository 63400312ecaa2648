package employee

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// RemoteWorkType はリモート勤務ポリシーの種別です。
type RemoteWorkType string

const (
	RemoteFull       RemoteWorkType = "FullRemote"
	RemoteHybrid     RemoteWorkType = "Hybrid"
	RemoteOfficeOnly RemoteWorkType = "OfficeOnly"
)

var workWeek = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// RemoteWorkPolicy は FullRemotePolicy / HybridPolicy / OfficeOnlyPolicy のいずれかです。
type RemoteWorkPolicy interface {
	Type() RemoteWorkType
	// RemoteDays はリモート勤務となる曜日を月曜から順に返します。
	RemoteDays() []time.Weekday
	isRemoteWorkPolicy()
}

// FullRemotePolicy は平日すべてリモートです。
type FullRemotePolicy struct{}

func (FullRemotePolicy) Type() RemoteWorkType       { return RemoteFull }
func (FullRemotePolicy) RemoteDays() []time.Weekday { return slices.Clone(workWeek) }
func (FullRemotePolicy) isRemoteWorkPolicy()        {}

// OfficeOnlyPolicy はリモート勤務なしです。
type OfficeOnlyPolicy struct{}

func (OfficeOnlyPolicy) Type() RemoteWorkType       { return RemoteOfficeOnly }
func (OfficeOnlyPolicy) RemoteDays() []time.Weekday { return nil }
func (OfficeOnlyPolicy) isRemoteWorkPolicy()        {}

// HybridPolicy は指定曜日のみリモートです。曜日は 1 日以上必要です。
type HybridPolicy struct {
	days []time.Weekday
}

// NewHybridPolicy は重複を除き月曜から順に並べた HybridPolicy を生成します。
func NewHybridPolicy(days ...time.Weekday) (HybridPolicy, error) {
	set := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if !slices.Contains(workWeek, d) {
			return HybridPolicy{}, fmt.Errorf("%w: %s", ErrInvalidWeekday, d)
		}
		if !slices.Contains(set, d) {
			set = append(set, d)
		}
	}
	if len(set) == 0 {
		return HybridPolicy{}, ErrHybridRequiresDays
	}
	slices.Sort(set)
	return HybridPolicy{days: set}, nil
}

func (HybridPolicy) Type() RemoteWorkType         { return RemoteHybrid }
func (p HybridPolicy) RemoteDays() []time.Weekday { return slices.Clone(p.days) }
func (HybridPolicy) isRemoteWorkPolicy()          {}

// ValidateRemoteWorkPolicy は Hybrid に曜日が 1 日以上あることを確認します。nil は解除として受け付けます。
func ValidateRemoteWorkPolicy(policy RemoteWorkPolicy) error {
	if policy == nil {
		return nil
	}
	days := policy.RemoteDays()
	for _, d := range days {
		if !slices.Contains(workWeek, d) {
			return fmt.Errorf("%w: %s", ErrInvalidWeekday, d)
		}
	}
	if policy.Type() == RemoteHybrid && len(days) == 0 {
		return ErrHybridRequiresDays
	}
	return nil
}

// IsRemoteOn は policy が day にリモート勤務を許可するか判定します。policy が nil の場合は false です。
func IsRemoteOn(policy RemoteWorkPolicy, day time.Weekday) bool {
	if policy == nil {
		return false
	}
	return slices.Contains(policy.RemoteDays(), day)
}

// ParseWeekday は "Monday".."Friday" を受け付けます。大文字小文字は区別しません。
func ParseWeekday(raw string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, d := range workWeek {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, raw)
}

// ParseRemoteWorkPolicy は種別と曜日名からポリシーを組み立てます。
// FullRemote / OfficeOnly に曜日を指定した場合はエラーです。
func ParseRemoteWorkPolicy(kind string, days []string) (RemoteWorkPolicy, error) {
	switch RemoteWorkType(strings.TrimSpace(kind)) {
	case RemoteFull:
		if len(days) > 0 {
			return nil, fmt.Errorf("%w: full remote policy takes no days", ErrInvalidRemotePolicy)
		}
		return FullRemotePolicy{}, nil
	case RemoteOfficeOnly:
		if len(days) > 0 {
			return nil, fmt.Errorf("%w: office only policy takes no days", ErrInvalidRemotePolicy)
		}
		return OfficeOnlyPolicy{}, nil
	case RemoteHybrid:
		weekdays := make([]time.Weekday, 0, len(days))
		for _, raw := range days {
			d, err := ParseWeekday(raw)
			if err != nil {
				return nil, err
			}
			weekdays = append(weekdays, d)
		}
		return NewHybridPolicy(weekdays...)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidRemotePolicy, kind)
	}
}

// WeekdayNames は曜日を文字列に変換します。
func WeekdayNames(days []time.Weekday) []string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return names
}
