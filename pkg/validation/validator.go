package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxIdentifierLength bounds commodity, tech and region names.
	MaxIdentifierLength = 256

	// identifiers may not contain whitespace or control characters
	identPattern = regexp.MustCompile(`^[^\s\x00-\x1f]+$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report fields by their YAML names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	if err := validate.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return ValidateIdentifier(fl.Field().String()) == nil
	}); err != nil {
		panic(err)
	}
}

// ValidateStruct validates v against its `validate` struct tags.
func ValidateStruct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateIdentifier validates a model identifier
func ValidateIdentifier(id string) error {
	if id == "" {
		return errors.New("identifier cannot be empty")
	}
	if len(id) > MaxIdentifierLength {
		return fmt.Errorf("identifier '%s' exceeds maximum length of %d characters", id, MaxIdentifierLength)
	}
	if !identPattern.MatchString(id) {
		return fmt.Errorf("identifier '%s' contains whitespace or control characters", id)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %v", field, param, e.Value())
		case "ident":
			return fmt.Errorf("%s: invalid identifier %q", field, e.Value())
		case "nefield":
			return fmt.Errorf("%s: must differ from %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
