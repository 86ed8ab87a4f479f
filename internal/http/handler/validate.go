package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a bad request body, path or query value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

const dateRule = "datetime=2006-01-02"

// Validator wraps go-playground/validator and reports fields by their JSON
// or query names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

func (v *Validator) Struct(s any) error {
	return v.convert(v.v.Struct(s), "")
}

// Var validates a single value such as a path parameter.
func (v *Validator) Var(field string, value any, rule string) error {
	return v.convert(v.v.Var(value, rule), field)
}

func (v *Validator) convert(err error, field string) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	fe := errs[0]
	if field == "" {
		field = fe.Field()
	}
	return &ValidationError{Field: field, Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", "YYYY-MM-DD")
	default:
		return "is invalid"
	}
}
