package validator

import (
	"errors"
	"slices"

	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()

	if err := v.RegisterValidation("booking_source", validateBookingSource); err != nil {
		log.Fatal("Failed to register 'booking_source' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("duration_mode", validateDurationMode); err != nil {
		log.Fatal("Failed to register 'duration_mode' validator",
			"error", err,
		)
	}

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

func validateBookingSource(fl validator.FieldLevel) bool {
	return slices.Contains(model.BookingSources, model.BookingSource(fl.Field().String()))
}

func validateDurationMode(fl validator.FieldLevel) bool {
	switch model.DurationMode(fl.Field().String()) {
	case model.ModeHourly, model.ModeHalfDay, model.ModeFullDay:
		return true
	}
	return false
}

// Validate checks any of the request DTOs in pkg/model.
func (v *ReservationValidator) Validate(request any) error {
	if err := v.validate.Struct(request); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}
	return nil
}
