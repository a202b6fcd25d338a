package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// UsernameMaxLength is counted in characters, not bytes.
	UsernameMaxLength = 150
	// ReservedUsername is the path segment of the self-service profile endpoint.
	ReservedUsername = "me"
)

var (
	ErrUsernameEmpty    = errors.New("username must not be empty")
	ErrUsernameTooLong  = fmt.Errorf("username must be at most %d characters", UsernameMaxLength)
	ErrUsernamePattern  = errors.New("username may contain only letters, digits and @/./+/-/_ characters")
	ErrUsernameReserved = fmt.Errorf("username %q is reserved", ReservedUsername)

	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}\p{M}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ValidateUsername is the only username check in the service. Signup,
// self-service profile updates and admin user management all go through it.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	if utf8.RuneCountInString(username) > UsernameMaxLength {
		return ErrUsernameTooLong
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernamePattern
	}
	if username == ReservedUsername {
		return ErrUsernameReserved
	}
	return nil
}

func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// Register installs the custom tags and reports field names by their json tag.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})
}

// FormatValidationError turns binding errors into per-field messages.
func FormatValidationError(err error) map[string][]string {
	fields := make(map[string][]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			fields[fe.Field()] = append(fields[fe.Field()], getFieldErrorMessage(fe))
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields[typeErr.Field] = []string{fmt.Sprintf("expected %s", typeErr.Type.String())}
		return fields
	}

	fields["non_field_errors"] = []string{err.Error()}
	return fields
}

func getFieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "username":
		value := reflect.Indirect(reflect.ValueOf(fe.Value()))
		if value.Kind() == reflect.String {
			if err := ValidateUsername(value.String()); err != nil {
				return err.Error()
			}
		}
		return "invalid username"
	case "slug":
		return "enter a valid slug consisting of letters, numbers, underscores or hyphens"
	default:
		return "invalid value"
	}
}
