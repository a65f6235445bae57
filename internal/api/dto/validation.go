package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks req against its validate tags and returns a VALIDATION_FAILED error with
// one message per offending field. Strings are trimmed before the required check unless
// tagged trim:"false".
func Validate(req any) error {
	trimStrings(req)
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	details := make(map[string]any, len(fieldErrs))
	missing := false
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := formatFieldError(fe)
		details[fe.Field()] = msg
		messages = append(messages, msg)
		if fe.Tag() == "required" {
			missing = true
		}
	}
	if missing {
		return apperrors.NewValidationError("Please provide all required fields", details)
	}
	return apperrors.NewValidationError(strings.Join(messages, "; "), details)
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// trimStrings trims top-level string fields in place. Secrets opt out with trim:"false".
func trimStrings(req any) {
	v := reflect.ValueOf(req)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Tag.Get("trim") == "false" {
			continue
		}
		f := v.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
