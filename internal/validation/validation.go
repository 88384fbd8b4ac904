// Package validation validates request payloads and collects per-field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps JSON field names to human-readable messages.
type Errors map[string][]string

// Error implements error.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Add appends a message for field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Field returns Errors holding a single message.
func Field(field, message string) Errors {
	return Errors{field: {message}}
}

// Message returns the first message in a stable field order.
func (e Errors) Message() string {
	if len(e) == 0 {
		return "The given data was invalid."
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	if msgs := e[fields[0]]; len(msgs) > 0 {
		return msgs[0]
	}
	return "The given data was invalid."
}

// As extracts Errors from err.
func As(err error) (Errors, bool) {
	var fieldErrs Errors
	if errors.As(err, &fieldErrs) {
		return fieldErrs, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct validates s and returns Errors keyed by JSON field name, or nil.
func Struct(s any) error {
	errValidate := validate.Struct(s)
	if errValidate == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(errValidate, &validationErrs) {
		return errValidate
	}
	out := Errors{}
	for _, fieldErr := range validationErrs {
		out.Add(fieldPath(fieldErr), message(fieldErr))
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fieldErr validator.FieldError) string {
	ns := fieldErr.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fieldErr.Field()
}

func message(fieldErr validator.FieldError) string {
	field := strings.ReplaceAll(fieldErr.Field(), "_", " ")
	switch fieldErr.Tag() {
	case "required", "required_if", "required_with":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must be at least %s characters.", field, fieldErr.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", field, fieldErr.Param())
	case "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fieldErr.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", field, fieldErr.Param())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("The %s field must be %s %s.", field, comparison(fieldErr.Tag()), fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", strings.TrimSuffix(field, " confirmation"))
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

func comparison(tag string) string {
	switch tag {
	case "gt":
		return "greater than"
	case "gte":
		return "greater than or equal to"
	case "lt":
		return "less than"
	default:
		return "less than or equal to"
	}
}
