package utils

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("password_strength", passwordStrength)
	return v
}

// passwordStrength requires a lower case letter, an upper case letter, a
// digit and one of @$!%*?&.
func passwordStrength(fl validator.FieldLevel) bool {
	var lower, upper, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case r == '@' || r == '$' || r == '!' || r == '%' || r == '*' || r == '?' || r == '&':
			special = true
		}
	}
	return lower && upper && digit && special
}

// ValidateStruct validates a struct based on `validate` tags.
func ValidateStruct(v any) error {
	return validate.Struct(v)
}

// ValidationErrorMessage returns a short, user-friendly message.
func ValidationErrorMessage(err error) string {
	if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "eqfield":
			return fmt.Sprintf("%s does not match", fe.Field())
		case "password_strength":
			return "password must contain lower case, upper case, number and special character"
		}
		return fmt.Sprintf("invalid %s", fe.Field())
	}
	return "invalid input"
}
