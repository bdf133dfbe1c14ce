// Package validation wraps a shared go-playground validator with the account rules
// used across registration and user provisioning.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var (
	once     sync.Once
	validate *validator.Validate

	rutPattern = regexp.MustCompile(`^\d{7,8}[0-9K]$`)
)

// Error carries per-field messages keyed by json field name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 1 {
		for field, msg := range e.Fields {
			return fmt.Sprintf("%s: %s", field, msg)
		}
	}
	return "validation failed"
}

// Field reports a single-field validation failure.
func Field(name, message string) *Error {
	return &Error{Fields: map[string]string{name: message}}
}

// Validator returns the shared instance, building it on first use.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		register(v, "company_rut", func(fl validator.FieldLevel) bool { return ValidCompanyRUT(fl.Field().String()) })
		register(v, "rut", func(fl validator.FieldLevel) bool { return ValidRUT(fl.Field().String()) })
		register(v, "phone", func(fl validator.FieldLevel) bool { return ValidPhone(fl.Field().String()) })
		register(v, "person_name", func(fl validator.FieldLevel) bool { return ValidPersonName(fl.Field().String()) })
		register(v, "alnum_password", func(fl validator.FieldLevel) bool { return ValidAlnumPassword(fl.Field().String()) })
		validate = v
	})
	return validate
}

func register(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		log.Error().Err(err).Str("tag", tag).Msg("Failed to register validation")
	}
}

// Struct validates s and converts validator errors into *Error.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long", fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "company_rut":
		return "Invalid company RUT"
	case "rut":
		return "Invalid RUT format"
	case "phone":
		return "Phone must have between 9 and 11 digits"
	case "person_name":
		return "Name must have at least 3 characters and contain only letters and spaces"
	case "alnum_password":
		return "Password must have at least 8 characters including letters and numbers"
	default:
		return fmt.Sprintf("Failed validation on the '%s' tag", fe.Tag())
	}
}

// NormalizeRUT strips dots, dashes and spaces and upper-cases the check digit.
func NormalizeRUT(rut string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(rut)))
}

// ValidRUT checks the shape of a personal RUT: 7-8 digits plus a digit or K.
func ValidRUT(rut string) bool {
	return rutPattern.MatchString(NormalizeRUT(rut))
}

// ValidCompanyRUT checks format, company range (body starting with 7, 8 or 9) and
// the modulo 11 check digit.
func ValidCompanyRUT(rut string) bool {
	clean := NormalizeRUT(rut)
	if !rutPattern.MatchString(clean) {
		return false
	}
	if first := clean[0]; first != '7' && first != '8' && first != '9' {
		return false
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1]
	return CheckDigit(body) == dv
}

// CheckDigit computes the modulo 11 verifier for a numeric RUT body.
func CheckDigit(body string) byte {
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch rest := 11 - sum%11; rest {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + rest)
	}
}

// ValidPhone accepts 9 to 11 digits with an optional leading + and spaces.
func ValidPhone(phone string) bool {
	clean := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(phone), "+"), " ", "")
	if len(clean) < 9 || len(clean) > 11 {
		return false
	}
	for _, c := range clean {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ValidPersonName requires at least 3 characters, letters and spaces only.
func ValidPersonName(name string) bool {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 3 {
		return false
	}
	for _, c := range name {
		if !unicode.IsLetter(c) && c != ' ' {
			return false
		}
	}
	return true
}

// ValidAlnumPassword requires 8+ characters with at least one letter and one digit.
func ValidAlnumPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var letter, digit bool
	for _, c := range pw {
		switch {
		case unicode.IsLetter(c):
			letter = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	return letter && digit
}
