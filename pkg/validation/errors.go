// Package validation holds the error shape shared by the domain validators.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Error) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type Errors []Error

func (v Errors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details is the map form used in API error responses.
func (v Errors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

// Translate turns validator tag failures into readable messages.
func Translate(errs validator.ValidationErrors) Errors {
	var out Errors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +16502530000)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "unit_kind":
			message = fmt.Sprintf("%s must be one of: room, event_space", err.Field())
		case "booking_source":
			message = fmt.Sprintf("%s must be one of: front_desk, phone, email, website, walk_in, ota", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "duration_mode":
			message = fmt.Sprintf("%s must be one of: hourly, half_day, full_day", err.Field())
		}

		out = append(out, Error{
			Field:   err.Field(),
			Message: message,
		})
	}

	return out
}
