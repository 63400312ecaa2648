package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct はタグ制約を検査し、最初の違反を "config: <section>.<key> ..." 形式で返します。
func validateStruct(c *Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("config: %w", err)
	}

	e := verrs[0]
	path := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "oneof":
		return fmt.Errorf("config: %s must be one of [%s], got %v", path, e.Param(), e.Value())
	case "min":
		return fmt.Errorf("config: %s must be at least %s", path, e.Param())
	case "max":
		return fmt.Errorf("config: %s must be at most %s", path, e.Param())
	default:
		return fmt.Errorf("config: %s is invalid", path)
	}
}
