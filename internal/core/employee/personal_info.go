package employee

import (
	"strings"
	"time"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// MinimumAge は入社時点で必要な年齢です。
const MinimumAge = 18

// PersonalInfo は社員の個人情報です。
type PersonalInfo struct {
	firstName   string
	middleName  string
	lastName    string
	email       shared.Email
	phone       shared.PhoneNumber
	dateOfBirth *time.Time
}

// NewPersonalInfo は氏名をトリムして検証します。middleName と dateOfBirth は任意です。
func NewPersonalInfo(firstName, middleName, lastName string, email shared.Email, phone shared.PhoneNumber, dateOfBirth *time.Time) (PersonalInfo, error) {
	first := strings.TrimSpace(firstName)
	if first == "" {
		return PersonalInfo{}, ErrInvalidFirstName
	}
	last := strings.TrimSpace(lastName)
	if last == "" {
		return PersonalInfo{}, ErrInvalidLastName
	}

	var dob *time.Time
	if dateOfBirth != nil {
		d := shared.DateOf(*dateOfBirth)
		dob = &d
	}

	return PersonalInfo{
		firstName:   first,
		middleName:  strings.TrimSpace(middleName),
		lastName:    last,
		email:       email,
		phone:       phone,
		dateOfBirth: dob,
	}, nil
}

func (p PersonalInfo) FirstName() string         { return p.firstName }
func (p PersonalInfo) MiddleName() string        { return p.middleName }
func (p PersonalInfo) LastName() string          { return p.lastName }
func (p PersonalInfo) Email() shared.Email       { return p.email }
func (p PersonalInfo) Phone() shared.PhoneNumber { return p.phone }

func (p PersonalInfo) DateOfBirth() *time.Time {
	if p.dateOfBirth == nil {
		return nil
	}
	d := *p.dateOfBirth
	return &d
}

func (p PersonalInfo) FullName() string {
	parts := []string{p.firstName}
	if p.middleName != "" {
		parts = append(parts, p.middleName)
	}
	parts = append(parts, p.lastName)
	return strings.Join(parts, " ")
}

// AgeOn は date 時点の満年齢を返します。生年月日が未設定の場合は ok=false です。
func (p PersonalInfo) AgeOn(date time.Time) (age int, ok bool) {
	if p.dateOfBirth == nil {
		return 0, false
	}
	dob := *p.dateOfBirth
	on := shared.DateOf(date)
	age = on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age, true
}

func (p PersonalInfo) validateAgeAt(hireDate time.Time) error {
	if age, ok := p.AgeOn(hireDate); ok && age < MinimumAge {
		return ErrUnderage
	}
	return nil
}
