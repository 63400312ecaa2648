package shared

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidEmail = NewInvariant("email.format", "email: invalid address")

var validate = validator.New()

// Email は小文字化・トリム済みのメールアドレスです。
type Email struct {
	value string
}

// NewEmail はアドレスを正規化して検証します。
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if err := validate.Var(normalized, "required,email"); err != nil {
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	return Email{value: normalized}, nil
}

func (e Email) String() string { return e.value }

// Domain は @ 以降を返します。
func (e Email) Domain() string {
	if i := strings.LastIndexByte(e.value, '@'); i >= 0 {
		return e.value[i+1:]
	}
	return ""
}
