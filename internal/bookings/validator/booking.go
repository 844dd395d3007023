package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"

	hotelsvalidator "staybook/internal/hotels/validator"
	"staybook/pkg/model"
)

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(hotelsvalidator.JSONFieldName)
	return &BookingValidator{validate: v}
}

// ValidateRequest checks request shape only. Date semantics belong to the
// availability engine.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return hotelsvalidator.Translate(validationErrs)
		}
		return err
	}
	return nil
}
