package team

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var idPattern = regexp.MustCompile(`^TEAM-(\d{4})$`)

// MaxSequence は TEAM-NNNN の連番上限です。
const MaxSequence = 9999

// ID は TEAM-NNNN 形式のチーム ID です。
type ID string

func ParseID(raw string) (ID, error) {
	value := strings.TrimSpace(raw)
	if !idPattern.MatchString(value) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return ID(value), nil
}

// NewID は連番から ID を組み立てます。
func NewID(sequence int) (ID, error) {
	if sequence < 1 || sequence > MaxSequence {
		return "", fmt.Errorf("%w: sequence=%d", ErrInvalidID, sequence)
	}
	return ID(fmt.Sprintf("TEAM-%04d", sequence)), nil
}

func (id ID) String() string { return string(id) }

const maxNameLength = 100

// Name はトリム済みで 1〜100 文字のチーム名です。
type Name string

func ParseName(raw string) (Name, error) {
	value := strings.TrimSpace(raw)
	if value == "" || utf8.RuneCountInString(value) > maxNameLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, raw)
	}
	return Name(value), nil
}

func (n Name) String() string { return string(n) }

// MemberRole はチーム内の役割です。
type MemberRole string

const (
	RoleMember   MemberRole = "Member"
	RoleTeamLead MemberRole = "TeamLead"
	RoleTechLead MemberRole = "TechLead"
)

// ParseMemberRole は空文字を Member として扱います。
func ParseMemberRole(raw string) (MemberRole, error) {
	switch r := MemberRole(strings.TrimSpace(raw)); r {
	case "":
		return RoleMember, nil
	case RoleMember, RoleTeamLead, RoleTechLead:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

func (r MemberRole) Validate() error {
	switch r {
	case RoleMember, RoleTeamLead, RoleTechLead:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, string(r))
	}
}

func (r MemberRole) IsTeamLead() bool { return r == RoleTeamLead }

const (
	MinAllocation = 1
	MaxAllocation = 100
)

func validateAllocation(percentage int) error {
	if percentage < MinAllocation || percentage > MaxAllocation {
		return fmt.Errorf("%w: %d", ErrInvalidAllocation, percentage)
	}
	return nil
}
