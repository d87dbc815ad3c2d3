package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared struct validator with the board rules
// registered as the tags nickname, boardemail, password and phone.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		register := func(tag string, rule func(string) bool) {
			err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return rule(fl.Field().String())
			})
			if err != nil {
				panic(fmt.Sprintf("validation: register %q: %v", tag, err))
			}
		}
		register("nickname", IsValidNickname)
		register("boardemail", IsValidEmail)
		register("password", IsValidPassword)
		register("phone", IsValidPhone)
		validate = v
	})
	return validate
}

// Struct validates s with the shared validator.
func Struct(s interface{}) error {
	return Validator().Struct(s)
}

// FormatValidationError turns validator field errors into one readable line.
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "nickname":
		return Message(NicknameInvalid)
	case "boardemail":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "password":
		return Message(PasswordInvalid)
	case "phone":
		return Message(PhoneInvalid)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is not valid", fe.Field())
	}
}
