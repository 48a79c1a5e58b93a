package i18nprep

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PluginName identifies this preprocessor in errors.
const PluginName = "i18n-preprocess"

// ErrStreamingNotSupported is returned for files whose contents are a stream.
var ErrStreamingNotSupported = errors.New("streaming not supported")

// PluginError is returned when a file cannot be processed at all.
type PluginError struct {
	Plugin  string
	Message string
	Err     error
}

func (e *PluginError) Error() string {
	if e.Err != nil && !strings.EqualFold(e.Err.Error(), e.Message) {
		return fmt.Sprintf("%s: %s: %v", e.Plugin, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Plugin, e.Message)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

func newPluginError(message string, err error) *PluginError {
	return &PluginError{Plugin: PluginName, Message: message, Err: err}
}

// FieldError reports one invalid option.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiError is a collection of option errors.
type MultiError []FieldError

func (m MultiError) Error() string {
	if len(m) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(m))
	for _, err := range m {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidationToMultiError converts go-playground/validator errors to MultiError.
func ValidationToMultiError(err error) MultiError {
	var fieldErrors MultiError

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fieldErrors
	}

	for _, e := range validationErrs {
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", e.Field())
		case "min", "gte":
			message = fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
		case "max", "lte":
			message = fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
		case "required_with":
			message = fmt.Sprintf("%s is required with %s", e.Field(), e.Param())
		default:
			message = fmt.Sprintf("%s is invalid", e.Field())
		}
		fieldErrors = append(fieldErrors, FieldError{
			Field:   strings.ToLower(e.Field()),
			Message: message,
		})
	}

	return fieldErrors
}
