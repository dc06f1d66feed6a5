// Package validation configures the shared request validator and converts its
// failures into field-level API errors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
)

// New returns a validator that reports JSON field names instead of Go field names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
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

// Struct validates payload and returns a VALIDATION_ERROR with field details on failure.
func Struct(v *validator.Validate, payload interface{}, message string) error {
	if v == nil {
		v = New()
	}
	if err := v.Struct(payload); err != nil {
		verr := appErrors.Validation(message, Errors(err))
		verr.Err = err
		return verr
	}
	return nil
}

// Errors flattens validator and JSON decoding failures into field errors.
func Errors(err error) []appErrors.FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]appErrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, appErrors.FieldError{Field: fe.Field(), Message: describe(fe)})
		}
		return details
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []appErrors.FieldError{{Field: typeErr.Field, Message: fmt.Sprintf("must be of type %s", typeErr.Type.String())}}
	}
	var dateErr *DateError
	if errors.As(err, &dateErr) {
		return []appErrors.FieldError{{Field: dateErr.Field, Message: "must be an ISO-8601 date"}}
	}
	return []appErrors.FieldError{{Field: "body", Message: err.Error()}}
}

// Bind converts a request binding failure into a VALIDATION_ERROR.
func Bind(err error, message string) error {
	verr := appErrors.Validation(message, Errors(err))
	verr.Err = err
	return verr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// DateError reports an unparseable date value.
type DateError struct {
	Field string
	Value string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q", e.Value)
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &DateError{Field: field, Value: raw}
}
