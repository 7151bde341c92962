package order

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/safar/go-shop/internal/models"
)

// ValidationError maps form field names to a message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid customer: " + strings.Join(parts, "; ")
}

var validate = newValidator()

// newValidator reports fields by their json names so errors line up with the
// checkout form.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NormalizeCustomer trims surrounding whitespace from every field.
func NormalizeCustomer(c models.Customer) models.Customer {
	return models.Customer{
		FirstName:  strings.TrimSpace(c.FirstName),
		LastName:   strings.TrimSpace(c.LastName),
		Email:      strings.TrimSpace(c.Email),
		Address:    strings.TrimSpace(c.Address),
		PostalCode: strings.TrimSpace(c.PostalCode),
		City:       strings.TrimSpace(c.City),
	}
}

// ValidateCustomer checks the trimmed fields against the rules tagged on
// models.Customer and returns a *ValidationError listing every bad field.
func ValidateCustomer(c models.Customer) error {
	err := validate.Struct(NormalizeCustomer(c))
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validate customer: %w", err)
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	default:
		return "Enter a valid value."
	}
}
