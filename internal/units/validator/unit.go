package validator

import (
	"errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type UnitValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewUnitValidator(log *logger.Logger) *UnitValidator {
	v := validator.New()

	if err := v.RegisterValidation("unit_kind", validateUnitKind); err != nil {
		log.Fatal("Failed to register 'unit_kind' validator",
			"error", err,
		)
	}

	log.Info("Unit validator initialized successfully")

	return &UnitValidator{
		validate: v,
		logger:   log,
	}
}

func validateUnitKind(fl validator.FieldLevel) bool {
	kind := model.UnitKind(fl.Field().String())
	return kind == model.UnitRoom || kind == model.UnitEventSpace
}

func (v *UnitValidator) Validate(unit *model.Unit) error {
	if err := v.validate.Struct(unit); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	var errs validation.Errors
	switch unit.Kind {
	case model.UnitRoom:
		if unit.MaxAdults < 1 {
			errs = append(errs, validation.Error{Field: "MaxAdults", Message: "rooms must accept at least one adult"})
		}
		if !unit.Rates.BaseRate.IsPositive() && !unit.Rates.NightlyOverrideRate.IsPositive() {
			errs = append(errs, validation.Error{Field: "Rates.BaseRate", Message: "rooms need a positive base or nightly override rate"})
		}
	case model.UnitEventSpace:
		if unit.MaxGuests < 1 {
			errs = append(errs, validation.Error{Field: "MaxGuests", Message: "event spaces must accept at least one guest"})
		}
		r := unit.Rates
		if !r.HourlyRate.IsPositive() && !r.HalfDayRate.IsPositive() && !r.FullDayRate.IsPositive() {
			errs = append(errs, validation.Error{Field: "Rates", Message: "event spaces need at least one positive hourly, half-day or full-day rate"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *UnitValidator) ValidateUpdate(update *model.UnitUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}
	return nil
}
