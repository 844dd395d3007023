package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"staybook/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Details renders the errors as a field -> message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, e := range v {
		details[e.Field] = e.Message
	}
	return details
}

type HotelValidator struct {
	validate *validator.Validate
}

func NewHotelValidator() *HotelValidator {
	v := validator.New()
	v.RegisterTagNameFunc(JSONFieldName)
	return &HotelValidator{validate: v}
}

func (v *HotelValidator) ValidateHotel(h *model.Hotel) error {
	return v.check(h)
}

func (v *HotelValidator) ValidateRoomType(rt *model.RoomType) error {
	return v.check(rt)
}

func (v *HotelValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

// Translate turns validator field errors into API-facing messages keyed by
// JSON field name.
func Translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, err := range errs {
		out = append(out, ValidationError{
			Field:   err.Field(),
			Message: message(err),
		})
	}
	return out
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", err.Param())
		}
		return fmt.Sprintf("must be at most %s", err.Param())
	case "uuid":
		return "must be a valid UUID"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %q validation", err.Tag())
	}
}

// JSONFieldName reports struct fields by their JSON name in validation errors.
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
