package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// passwordSpecials are the special characters a password must draw from
const passwordSpecials = "@$!%*?&"

const (
	minPasswordLength = 8
	mobileDigits      = 10
	mobileMessage     = "must be exactly 10 digits and not start with 0"
)

// newValidator creates a validator reporting JSON field names and knowing the mobile and password rules
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil functions
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return isValidMobile(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return isValidPassword(fl.Field().String())
	})

	return v
}

// isValidMobile reports whether s is exactly ten ASCII digits without a leading zero.
// Mobiles are stored as numbers, so a leading zero would not survive.
func isValidMobile(s string) bool {
	if len(s) != mobileDigits || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isValidPassword reports whether s is at least eight characters drawn from letters, digits
// and passwordSpecials, containing at least one of each of upper, lower, digit and special
func isValidPassword(s string) bool {
	if len(s) < minPasswordLength {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}

	return upper && lower && digit && special
}

// validateStruct runs the validator and converts failures into a *ValidationError
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = describeFieldError(fe)
		}
	}
	return &ValidationError{Fields: fields}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "mobile":
		return mobileMessage
	case "password":
		return fmt.Sprintf("must be at least %d characters and contain an upper case letter, a lower case letter, a digit and one of %s",
			minPasswordLength, passwordSpecials)
	default:
		return "is invalid"
	}
}
