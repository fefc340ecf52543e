// Package validation checks configuration and catalogue values, combining
// struct tag rules with a fluent collector for cross-field checks.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Dataset and repository names are used as cache directory components.
	identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]*$`)
	// Column names may not contain a separator.
	columnPattern = regexp.MustCompile(`^[^\t, ]+$`)
)

// Separators accepted by the separator tag, by name and by value.
var Separators = map[string]string{
	"tab":   "\t",
	"comma": ",",
	"space": " ",
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	mustRegister("identifier", func(fl validator.FieldLevel) bool {
		return identifierPattern.MatchString(fl.Field().String())
	})
	mustRegister("column", func(fl validator.FieldLevel) bool {
		return columnPattern.MatchString(fl.Field().String())
	})
	mustRegister("separator", func(fl validator.FieldLevel) bool {
		_, err := ParseSeparator(fl.Field().String())
		return err == nil
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// ParseSeparator accepts "tab", "comma", "space" or the literal separator.
// Empty means auto-detect and is returned unchanged.
func ParseSeparator(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if sep, ok := Separators[strings.ToLower(s)]; ok {
		return sep, nil
	}
	for _, sep := range Separators {
		if s == sep {
			return sep, nil
		}
	}
	return "", fmt.Errorf("unknown separator %q", s)
}

// IsIdentifier reports whether s can name a dataset or repository.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Struct validates v against its validate tags and reports every violation.
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	return formatValidationError(validate.Struct(v))
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

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%s: field is required", field))
		case "min", "gte":
			errs = append(errs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max", "lte":
			errs = append(errs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "gt":
			errs = append(errs, fmt.Errorf("%s: must be greater than %s", field, param))
		case "lt":
			errs = append(errs, fmt.Errorf("%s: must be less than %s", field, param))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: must be one of [%s]", field, param))
		case "identifier":
			errs = append(errs, fmt.Errorf("%s: %q is not a valid name (letters, digits, '_', '.', '-')", field, e.Value()))
		case "column":
			errs = append(errs, fmt.Errorf("%s: %q is not a valid column name", field, e.Value()))
		case "separator":
			errs = append(errs, fmt.Errorf("%s: %q is not tab, comma or space", field, e.Value()))
		default:
			errs = append(errs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.Join(errs...)
}
