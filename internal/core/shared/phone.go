package shared

import (
	"fmt"
	"strings"
)

var ErrInvalidPhone = NewInvariant("phone.format", "phone: must contain at least 10 digits")

const minPhoneDigits = 10

// PhoneNumber は数字と + のみに正規化した電話番号です。
type PhoneNumber struct {
	value string
}

func NewPhoneNumber(raw string) (PhoneNumber, error) {
	var b strings.Builder
	digits := 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits++
			b.WriteRune(r)
		case r == '+':
			b.WriteRune(r)
		}
	}
	if digits < minPhoneDigits {
		return PhoneNumber{}, fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return PhoneNumber{value: b.String()}, nil
}

func (p PhoneNumber) String() string { return p.value }

// Formatted は 10 桁の番号を (xxx) xxx-xxxx 形式で返します。それ以外は正規化済みの値をそのまま返します。
func (p PhoneNumber) Formatted() string {
	if len(p.value) != minPhoneDigits || strings.Contains(p.value, "+") {
		return p.value
	}
	return fmt.Sprintf("(%s) %s-%s", p.value[0:3], p.value[3:6], p.value[6:])
}
