package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"malayalees/src/core/domain"
)

var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so the UI can highlight the input.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("tenantid", func(fl validator.FieldLevel) bool {
		return tenantIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs struct tag validation and converts the first failure
// into a domain validation error.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return domain.NewValidationError("", err.Error())
	}
	fe := ve[0]
	return domain.NewValidationError(fe.Field(), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "e164":
		return name + " must be an E.164 phone number like +14155550123"
	case "url", "http_url":
		return name + " must be a valid URL"
	case "hexcolor":
		return name + " must be a hex color like #1a2b3c"
	case "tenantid":
		return name + " must contain only lowercase letters, digits, hyphens and underscores"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must have at least %s entries", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must have at most %s entries", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %s", name, fe.Param())
	default:
		return name + " is invalid"
	}
}
