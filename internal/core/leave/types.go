package leave

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var idPattern = regexp.MustCompile(`^LEAVE-(\d{4})-(\d{4})$`)

// MaxSequence は 1 年あたりの休暇申請連番の上限です。
const MaxSequence = 9999

// ID は LEAVE-YYYY-NNNN 形式の休暇申請 ID です。
type ID string

func ParseID(raw string) (ID, error) {
	value := strings.TrimSpace(raw)
	if !idPattern.MatchString(value) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return ID(value), nil
}

func NewID(year, sequence int) (ID, error) {
	if year < 1000 || year > 9999 || sequence < 1 || sequence > MaxSequence {
		return "", fmt.Errorf("%w: year=%d sequence=%d", ErrInvalidID, year, sequence)
	}
	return ID(fmt.Sprintf("LEAVE-%04d-%04d", year, sequence)), nil
}

func (id ID) String() string { return string(id) }

// Parts は ID の採番年と連番を返します。形式外の ID では 0, 0 です。
func (id ID) Parts() (year, sequence int) {
	m := idPattern.FindStringSubmatch(string(id))
	if m == nil {
		return 0, 0
	}
	year, _ = strconv.Atoi(m[1])
	sequence, _ = strconv.Atoi(m[2])
	return year, sequence
}

// Type は休暇種別です。
type Type string

const (
	TypeVacation    Type = "Vacation"
	TypeSick        Type = "Sick"
	TypeUnpaid      Type = "Unpaid"
	TypeBereavement Type = "Bereavement"
	TypeParental    Type = "Parental"
	TypePersonal    Type = "Personal"
)

// Types は全休暇種別を定義順で返します。
func Types() []Type {
	return []Type{TypeVacation, TypeSick, TypeUnpaid, TypeBereavement, TypeParental, TypePersonal}
}

func ParseType(raw string) (Type, error) {
	switch t := Type(strings.TrimSpace(raw)); t {
	case TypeVacation, TypeSick, TypeUnpaid, TypeBereavement, TypeParental, TypePersonal:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, raw)
	}
}

func (t Type) IsSick() bool { return t == TypeSick }

// RequiresBalance は残高台帳で日数を管理する種別か判定します。Sick と Bereavement は対象外です。
func (t Type) RequiresBalance() bool {
	return t != TypeSick && t != TypeBereavement
}

// Status は休暇申請の状態です。
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.TrimSpace(raw)); s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// IsActive は期間が他の申請と重複してはならない状態か判定します。
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}
