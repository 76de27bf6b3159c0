package configx

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/red2n/opentele/core/errors"
)

// NewValidator creates a validator that reports fields by their env tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if env := field.Tag.Get("env"); env != "" {
			return env
		}
		return field.Name
	})
	return v
}

// Validate checks target's validate tags. The first failure is returned as
// an errors.ConfigError keyed by the field's env tag.
func Validate(target any) error {
	err := NewValidator().Struct(target)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.NewConfigError("", err.Error())
	}

	fe := verrs[0]
	return errors.NewConfigError(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
