// Package validation wraps go-playground/validator with the marketplace's
// custom rules and a field-level error type the HTTP layer can render.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// RequestValidationError collects every failed field. It matches
// common.ErrValidation under errors.Is.
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *RequestValidationError) Is(target error) bool {
	return target == common.ErrValidation
}

// Errorf builds a single-field validation error outside struct validation.
func Errorf(field, format string, args ...any) error {
	return &RequestValidationError{Fields: []FieldError{{
		Field:   field,
		Tag:     "custom",
		Message: fmt.Sprintf(format, args...),
	}}}
}

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// report json names, not Go names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("product_category", oneOf(models.ProductCategories))
		_ = validate.RegisterValidation("product_unit", oneOf(models.ProductUnits))
		_ = validate.RegisterValidation("product_status", oneOf(models.ProductStatuses))
	})
	return validate
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

// Struct validates s and returns a *RequestValidationError on failure.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}

	out := &RequestValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", f)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", f)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot be more than %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s cannot be more than %s", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be negative", f)
	case "role":
		return fmt.Sprintf("%s must be one of customer, vendor, admin", f)
	case "product_category":
		return fmt.Sprintf("%s must be one of %s", f, strings.Join(models.ProductCategories, ", "))
	case "product_unit":
		return fmt.Sprintf("%s must be one of %s", f, strings.Join(models.ProductUnits, ", "))
	case "product_status":
		return fmt.Sprintf("%s must be one of %s", f, strings.Join(models.ProductStatuses, ", "))
	}
	return fmt.Sprintf("%s is invalid", f)
}
