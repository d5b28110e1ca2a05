package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/interfaces/http/dto"
)

// SetupValidator makes gin's binding validator report wire-level field
// names (json/form tags) instead of Go struct field names.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
}

// BindingErrorResponse turns a binding failure into the error envelope,
// carrying per-field details when the failure came from validation tags.
func BindingErrorResponse(err error, message string) dto.Response {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.NewErrorResponse(dto.ErrCodeValidation, message)
	}

	details := make([]*shared.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, shared.NewValidationError(fe.Field(), fieldMessage(fe)))
	}
	return dto.NewErrorResponseWithDetails(dto.ErrCodeValidation, message, details)
}

// fieldMessage phrases the failed validation tag for API clients
func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "uuid":
		return "must be a valid uuid"
	case "gt":
		return "must be greater than " + e.Param()
	default:
		return "is invalid"
	}
}
