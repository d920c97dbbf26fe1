package service

import (
	"context"
	"errors"
	"sync"

	unitserrors "innkeep/internal/units/errors"
	"innkeep/internal/units/repository"
	"innkeep/internal/units/validator"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/sanitizer"
	"innkeep/pkg/validation"
)

type UnitService interface {
	Create(ctx context.Context, unit *model.Unit) error
	GetByID(ctx context.Context, id string) (*model.Unit, error)
	ListByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Unit, int64, error)
	// AllByHotel returns every unit of a hotel for availability searches.
	AllByHotel(ctx context.Context, hotelID string) ([]*model.Unit, error)
	Update(ctx context.Context, id string, updates *model.UnitUpdate) (*model.Unit, error)
}

type unitService struct {
	repo      repository.UnitRepository
	validator *validator.UnitValidator
	log       *logger.Logger
}

func NewUnitService(repo repository.UnitRepository, validator *validator.UnitValidator, cfg *config.Config) UnitService {
	return &unitService{
		repo:      repo,
		validator: validator,
		log:       cfg.Log.Component("units"),
	}
}

func (s *unitService) Create(ctx context.Context, unit *model.Unit) error {
	s.sanitize(unit)
	if err := s.validate(unit); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, unit); err != nil {
		s.log.Error("Failed to create unit", "hotel_id", unit.HotelID, "error", err)
		return apperrors.Internal("Failed to create unit", err)
	}

	s.log.Info("Unit created successfully",
		"id", unit.ID,
		"hotel_id", unit.HotelID,
		"kind", unit.Kind,
	)
	return nil
}

func (s *unitService) GetByID(ctx context.Context, id string) (*model.Unit, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Unit ID cannot be empty")
	}

	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve unit")
	}
	return unit, nil
}

func (s *unitService) ListByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Unit, int64, error) {
	hotelID = sanitizer.NormalizeIdentifier(hotelID)
	if hotelID == "" {
		return nil, 0, apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var units []*model.Unit
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByHotel(ctx, hotelID)
		if errCount != nil {
			s.log.Error("Failed to count units", "hotel_id", hotelID, "error", errCount)
			errCount = apperrors.Internal("Failed to count units", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		units, errFind = s.repo.FindByHotel(ctx, hotelID, limit, offset)
		if errFind != nil {
			s.log.Error("Failed to list units", "hotel_id", hotelID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve units", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return units, count, nil
}

func (s *unitService) AllByHotel(ctx context.Context, hotelID string) ([]*model.Unit, error) {
	hotelID = sanitizer.NormalizeIdentifier(hotelID)
	if hotelID == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	units, err := s.repo.FindByHotel(ctx, hotelID, 0, 0)
	if err != nil {
		s.log.Error("Failed to list hotel units", "hotel_id", hotelID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve units", err)
	}
	return units, nil
}

func (s *unitService) Update(ctx context.Context, id string, updates *model.UnitUpdate) (*model.Unit, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Unit ID cannot be empty")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check unit existence")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.log.Warn("Unit update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	merged := mergeUnitUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		s.log.Error("Failed to update unit", "id", id, "error", err)
		return nil, s.mapRepoError(err, id, "Failed to update unit")
	}

	s.log.Info("Unit updated successfully", "id", id, "available", merged.Available)
	return merged, nil
}

// --- Helpers ---

func (s *unitService) sanitize(u *model.Unit) {
	u.HotelID = sanitizer.NormalizeIdentifier(u.HotelID)
	u.Name = sanitizer.NormalizeName(u.Name)
}

func (s *unitService) validate(u *model.Unit) error {
	if err := s.validator.Validate(u); err != nil {
		s.log.Warn("Unit validation failed", "error", err)
		return validationError("Unit validation failed", err)
	}
	return nil
}

func (s *unitService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, unitserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Unit", id)
	case errors.Is(err, unitserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid unit ID format")
	default:
		s.log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func mergeUnitUpdates(existing *model.Unit, updates *model.UnitUpdate) *model.Unit {
	merged := *existing

	if updates.Name != nil {
		merged.Name = *updates.Name
	}
	if updates.MaxAdults != nil {
		merged.MaxAdults = *updates.MaxAdults
	}
	if updates.MaxChildren != nil {
		merged.MaxChildren = *updates.MaxChildren
	}
	if updates.MaxGuests != nil {
		merged.MaxGuests = *updates.MaxGuests
	}
	if updates.Rates != nil {
		merged.Rates = *updates.Rates
	}
	if updates.Available != nil {
		merged.Available = *updates.Available
	}

	return &merged
}

func validationError(message string, err error) *apperrors.AppError {
	var errs validation.Errors
	if errors.As(err, &errs) {
		return apperrors.Validation(message, errs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
