package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	slugPattern       = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	mobilePattern     = regexp.MustCompile(`^010-\d{4}-\d{4}$`)
	personNamePattern = regexp.MustCompile(`^[가-힣a-zA-Z\s]+$`)
	letterPattern     = regexp.MustCompile(`[A-Za-z]`)
	digitPattern      = regexp.MustCompile(`\d`)
	specialPattern    = regexp.MustCompile(`[^A-Za-z0-9\s]`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("slug", matches(slugPattern))
	v.RegisterValidation("username", matches(usernamePattern))
	v.RegisterValidation("mobile", matches(mobilePattern))
	v.RegisterValidation("person_name", matches(personNamePattern))
	v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return IsValidPassword(fl.Field().String())
	})
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || re.MatchString(s)
	}
}

// IsValidSlug reports whether s only holds letters, digits and hyphens.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// IsValidPassword requires at least one letter, one digit and one special
// character.
func IsValidPassword(s string) bool {
	return letterPattern.MatchString(s) && digitPattern.MatchString(s) && specialPattern.MatchString(s)
}

// ValidateAndDecode decodes the JSON body into payload and validates it.
func ValidateAndDecode(r *http.Request, payload interface{}) *AppError {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}
	return ValidateStruct(payload)
}

func ValidateStruct(payload interface{}) *AppError {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return NewAppError(http.StatusBadRequest, "Invalid request", err)
	}

	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = describe(fe)
	}
	appErr := FromCode(ErrInvalidInput, nil)
	appErr.Details = details
	return appErr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "slug":
		return "may only contain letters, digits and hyphens"
	case "username":
		return "may only contain letters, digits and underscores"
	case "mobile":
		return "must look like 010-1234-5678"
	case "person_name":
		return "may only contain Korean or English letters"
	case "password_policy":
		return "must contain a letter, a digit and a special character"
	}
	return "failed on " + fe.Tag()
}
