package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"innkeep/internal/reservations/availability"
	reservationserrors "innkeep/internal/reservations/errors"
	"innkeep/internal/reservations/events"
	"innkeep/internal/reservations/lifecycle"
	"innkeep/internal/reservations/locker"
	"innkeep/internal/reservations/pricing"
	"innkeep/internal/reservations/repository"
	"innkeep/internal/reservations/validator"
	"innkeep/pkg/clock"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/sanitizer"
	"innkeep/pkg/validation"

	"github.com/google/uuid"
)

const maxReferenceAttempts = 5

type ReservationService interface {
	CheckAvailability(ctx context.Context, hotelID string, checkIn, checkOut time.Time, filter model.AvailabilityFilter) ([]*model.Unit, error)
	QuotePrice(ctx context.Context, unitID string, req *model.QuoteRequest) (*pricing.Quote, error)

	CreateReservation(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetByReferenceCode(ctx context.Context, code string) (*model.Reservation, error)
	ListByUnit(ctx context.Context, unitID string, limit int, offset int64) ([]*model.Reservation, int64, error)

	Confirm(ctx context.Context, id string, action *model.StaffAction) (*model.Reservation, error)
	CheckIn(ctx context.Context, id string, action *model.StayAction) (*model.Reservation, error)
	CheckOut(ctx context.Context, id string, action *model.StayAction) (*model.Reservation, error)
	Cancel(ctx context.Context, id string, action *model.StaffAction) (*model.Reservation, error)
	MarkNoShow(ctx context.Context, id string, action *model.StaffAction) (*model.Reservation, error)
	RecordPayment(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error)
	RecordRefund(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error)
	Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Reservation, error)
}

// UnitDirectory is the slice of the units service reservations depend on.
type UnitDirectory interface {
	GetByID(ctx context.Context, id string) (*model.Unit, error)
	AllByHotel(ctx context.Context, hotelID string) ([]*model.Unit, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	units     UnitDirectory
	index     *availability.Index
	pricing   *pricing.Calculator
	locker    locker.UnitLocker
	publisher events.Publisher
	validator *validator.ReservationValidator
	clock     clock.Clock
	cfg       *config.Config
	log       *logger.Logger
}

func NewReservationService(
	repo repository.ReservationRepository,
	units UnitDirectory,
	unitLocker locker.UnitLocker,
	publisher events.Publisher,
	validator *validator.ReservationValidator,
	clk clock.Clock,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		units:     units,
		index:     availability.NewIndex(units, repo),
		pricing:   pricing.NewCalculator(nil),
		locker:    unitLocker,
		publisher: publisher,
		validator: validator,
		clock:     clk,
		cfg:       cfg,
		log:       cfg.Log.Component("reservations"),
	}
}

func (s *reservationService) CheckAvailability(ctx context.Context, hotelID string, checkIn, checkOut time.Time, filter model.AvailabilityFilter) ([]*model.Unit, error) {
	checkIn, checkOut = model.DateOf(checkIn), model.DateOf(checkOut)
	if err := validateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	units, err := s.units.AllByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	candidates := make([]*model.Unit, 0, len(units))
	for _, u := range units {
		if filter.Kind != "" && u.Kind != filter.Kind {
			continue
		}
		if filter.Guests > 0 && u.Capacity() < filter.Guests {
			continue
		}
		candidates = append(candidates, u)
	}

	available := make([]*model.Unit, 0, len(candidates))
	for unit, err := range s.index.FindAvailableUnits(ctx, candidates, checkIn, checkOut) {
		if err != nil {
			return nil, s.mapError(err, hotelID, "Failed to check availability")
		}
		available = append(available, unit)
	}
	return available, nil
}

func (s *reservationService) QuotePrice(ctx context.Context, unitID string, req *model.QuoteRequest) (*pricing.Quote, error) {
	if err := s.validate(req, "Quote validation failed"); err != nil {
		return nil, err
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	segments, err := parseSegments(req.Segments)
	if err != nil {
		return nil, err
	}

	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.Quote(unit, checkIn, checkOut, segments)
	if err != nil {
		s.log.Warn("Quote rejected", "unit_id", unitID, "error", err)
		return nil, s.mapError(err, unitID, "Failed to quote price")
	}
	return quote, nil
}

// CreateReservation runs the availability check and the insert in one
// transaction inside the unit's critical section, so two overlapping
// requests cannot both succeed.
func (s *reservationService) CreateReservation(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	s.sanitizeRequest(req)
	if err := s.validate(req, "Reservation validation failed"); err != nil {
		return nil, err
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	segments, err := parseSegments(req.Segments)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, req.UnitID)
	if err != nil {
		return nil, s.mapError(err, req.UnitID, "Failed to lock unit")
	}
	defer s.release(ctx, release, req.UnitID)

	unit, err := s.units.GetByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	if !unit.Fits(req.Adults, req.Children) {
		return nil, apperrors.Validation("Occupancy exceeds unit capacity", map[string]any{
			"adults":   req.Adults,
			"children": req.Children,
			"capacity": unit.Capacity(),
		})
	}

	quote, err := s.pricing.Quote(unit, checkIn, checkOut, segments)
	if err != nil {
		s.log.Warn("Reservation pricing rejected", "unit_id", unit.ID, "error", err)
		return nil, s.mapError(err, unit.ID, "Failed to price reservation")
	}

	draft := &model.Reservation{
		UnitID:        unit.ID,
		HotelID:       unit.HotelID,
		Guest:         req.Guest,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		Adults:        req.Adults,
		Children:      req.Children,
		BookingSource: req.BookingSource,
	}
	if unit.IsEventSpace() {
		draft.Segments = quotedSegments(quote)
	}

	reservation, err := lifecycle.Initialize(draft, quote.Total, req.StaffID, s.now())
	if err != nil {
		return nil, s.mapError(err, unit.ID, "Failed to initialize reservation")
	}

	if err := s.insert(ctx, unit, reservation); err != nil {
		s.log.Warn("Reservation rejected", "unit_id", unit.ID, "check_in", req.CheckIn, "check_out", req.CheckOut, "error", err)
		return nil, s.mapError(err, unit.ID, "Failed to create reservation")
	}

	s.log.Info("Reservation created successfully",
		"id", reservation.ID,
		"reference_code", reservation.ReferenceCode,
		"unit_id", reservation.UnitID,
		"check_in", req.CheckIn,
		"check_out", req.CheckOut,
		"total", reservation.TotalAmount.String(),
	)
	s.publish(ctx, model.EventReservationCreated, reservation, req.StaffID, 0)
	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve reservation")
	}
	return reservation, nil
}

func (s *reservationService) GetByReferenceCode(ctx context.Context, code string) (*model.Reservation, error) {
	code = sanitizer.NormalizeReferenceCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Reference code cannot be empty")
	}
	reservation, err := s.repo.FindByReferenceCode(ctx, code)
	if err != nil {
		return nil, s.mapError(err, code, "Failed to retrieve reservation")
	}
	return reservation, nil
}

func (s *reservationService) ListByUnit(ctx context.Context, unitID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if _, err := s.units.GetByID(ctx, unitID); err != nil {
		return nil, 0, err
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUnit(ctx, unitID)
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByUnit(ctx, unitID, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, s.mapError(errCount, unitID, "Failed to count reservations")
	}
	if errFind != nil {
		return nil, 0, s.mapError(errFind, unitID, "Failed to retrieve reservations")
	}
	return reservations, count, nil
}

func (s *reservationService) Confirm(ctx context.Context, id string, action *model.StaffAction) (*model.Reservation, error) {
	if err := s.validate(action, "Invalid confirm request"); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.EventReservationConfirmed, action.StaffID, 0,
		func(r *model.Reservation, now time.Time) (*model.Reservation, error) {
			return lifecycle.Confirm(r, action.StaffID, now)
		})
}

func (s *reservationService) CheckIn(ctx context.Context, id string, action *model.StayAction) (*model.Reservation, error) {
	if err := s.validate(action, "Invalid check-in request"); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.EventReservationCheckedIn, action.StaffID, 0,
		func(r *model.Reservation, now time.Time) (*model.Reservation, error) {
			return lifecycle.CheckIn(r, action.StaffID, actualOr(action.ActualTime, now), s.today())
		})
}

func (s *reservationService) CheckOut(ctx context.Context, id string, action *model.StayAction) (*model.Reservation, error) {
	if err := s.validate(action, "Invalid check-out request"); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.EventReservationCheckedOut, action.StaffID, 0,
		func(r *model.Reservation, now time.Time) (*model.Reservation, error) {
			return lifecycle.CheckOut(r, action.StaffID, actualOr(action.ActualTime, now))
		})
}

func (s *reservationService) Cancel(ctx context.Context, id string, action *model.StaffAction) (*model.Reservation, error) {
	if err := s.validate(action, "Invalid cancel request"); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.EventReservationCancelled, action.StaffID, 0,
		func(r *model.Reservation, now time.Time) (*model.Reservation, error) {
			return lifecycle.Cancel(r, action.StaffID, now)
		})
}

func (s *reservationService) MarkNoShow(ctx context.Context, id string, action *model.StaffAction) (*model.Reservation, error) {
	if err := s.validate(action, "Invalid no-show request"); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.EventReservationNoShow, action.StaffID, 0,
		func(r *model.Reservation, now time.Time) (*model.Reservation, error) {
			return lifecycle.MarkNoShow(r, action.StaffID, now, s.today())
		})
}

func (s *reservationService) RecordPayment(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
	if err := s.validate(req, "Invalid payment request"); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.EventReservationPayment, req.StaffID, req.Amount,
		func(r *model.Reservation, now time.Time) (*model.Reservation, error) {
			return lifecycle.RecordPayment(r, req.Amount, req.StaffID, now)
		})
}

func (s *reservationService) RecordRefund(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
	if err := s.validate(req, "Invalid refund request"); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.EventReservationRefund, req.StaffID, req.Amount,
		func(r *model.Reservation, now time.Time) (*model.Reservation, error) {
			return lifecycle.RecordRefund(r, req.Amount, req.StaffID, now)
		})
}

// Reschedule re-checks availability for the new range, ignoring the
// reservation's own dates, and reprices it under the unit lock.
func (s *reservationService) Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Reservation, error) {
	if err := s.validate(req, "Invalid reschedule request"); err != nil {
		return nil, err
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	segments, err := parseSegments(req.Segments)
	if err != nil {
		return nil, err
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanReschedule(current.BookingStatus) {
		err := fmt.Errorf("%w: cannot reschedule a %s reservation", reservationserrors.ErrInvalidTransition, current.BookingStatus)
		return nil, s.mapError(err, id, "Failed to reschedule reservation")
	}

	release, err := s.locker.Lock(ctx, current.UnitID)
	if err != nil {
		return nil, s.mapError(err, current.UnitID, "Failed to lock unit")
	}
	defer s.release(ctx, release, current.UnitID)

	unit, err := s.units.GetByID(ctx, current.UnitID)
	if err != nil {
		return nil, err
	}
	quote, err := s.pricing.Quote(unit, checkIn, checkOut, segments)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to price reservation")
	}

	var updated *model.Reservation
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.index.Check(txCtx, unit, checkIn, checkOut, current.ID); err != nil {
			return err
		}
		next, err := s.apply(txCtx, id, model.EventReservationRescheduled,
			func(r *model.Reservation, now time.Time) (*model.Reservation, error) {
				next, err := lifecycle.Reschedule(r, checkIn, checkOut, quote.Total, now)
				if err != nil {
					return nil, err
				}
				if unit.IsEventSpace() {
					next.Segments = quotedSegments(quote)
				}
				return next, nil
			})
		updated = next
		return err
	})
	if err != nil {
		s.log.Warn("Reschedule rejected", "id", id, "check_in", req.CheckIn, "check_out", req.CheckOut, "error", err)
		return nil, s.mapError(err, id, "Failed to reschedule reservation")
	}

	s.updated(ctx, model.EventReservationRescheduled, updated, req.StaffID, 0)
	return updated, nil
}

// transition applies fn and announces the stored result.
func (s *reservationService) transition(
	ctx context.Context,
	id string,
	eventType model.ReservationEventType,
	actor string,
	amount model.Money,
	fn func(r *model.Reservation, now time.Time) (*model.Reservation, error),
) (*model.Reservation, error) {
	next, err := s.apply(ctx, id, eventType, fn)
	if err != nil {
		return nil, err
	}
	s.updated(ctx, eventType, next, actor, amount)
	return next, nil
}

// apply loads the reservation, applies fn to a copy and stores it only if
// nobody else wrote in between.
func (s *reservationService) apply(
	ctx context.Context,
	id string,
	eventType model.ReservationEventType,
	fn func(r *model.Reservation, now time.Time) (*model.Reservation, error),
) (*model.Reservation, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := fn(current, s.now())
	if err != nil {
		s.log.Warn("Reservation change rejected",
			"id", id,
			"event", eventType,
			"status", current.BookingStatus,
			"error", err,
		)
		return nil, s.mapError(err, id, "Failed to update reservation")
	}

	if err := s.repo.UpdateIfVersion(ctx, next, current.Version); err != nil {
		return nil, s.mapError(err, id, "Failed to update reservation")
	}
	return next, nil
}

func (s *reservationService) updated(ctx context.Context, eventType model.ReservationEventType, next *model.Reservation, actor string, amount model.Money) {
	s.log.Info("Reservation updated successfully",
		"id", next.ID,
		"event", eventType,
		"booking_status", next.BookingStatus,
		"payment_status", next.PaymentStatus,
		"version", next.Version,
	)
	s.publish(ctx, eventType, next, actor, amount)
}

// --- Helpers ---

// insert re-checks availability and stores the reservation in one
// transaction. A reference code collision aborts the transaction, so each
// attempt runs in a fresh one.
func (s *reservationService) insert(ctx context.Context, unit *model.Unit, reservation *model.Reservation) error {
	var err error
	for range maxReferenceAttempts {
		reservation.ReferenceCode = s.newReferenceCode()
		err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			if err := s.index.Check(txCtx, unit, reservation.CheckInDate, reservation.CheckOutDate, ""); err != nil {
				return err
			}
			return s.repo.Create(txCtx, reservation)
		})
		if !errors.Is(err, reservationserrors.ErrDuplicateReference) {
			break
		}
		s.log.Warn("Reference code collision, regenerating", "reference_code", reservation.ReferenceCode)
	}
	return err
}

func (s *reservationService) release(ctx context.Context, release locker.Release, unitID string) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.log.Error("Failed to release unit lock", "unit_id", unitID, "error", err)
	}
}

func (s *reservationService) publish(ctx context.Context, eventType model.ReservationEventType, r *model.Reservation, actor string, amount model.Money) {
	event := model.NewReservationEvent(eventType, r, actor, r.UpdatedAt)
	event.Amount = amount
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.log.Error("Failed to publish reservation event",
			"id", r.ID,
			"event", eventType,
			"error", err,
		)
	}
}

func (s *reservationService) newReferenceCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return s.cfg.ReferenceCodePrefix + "-" + strings.ToUpper(raw[:8])
}

func (s *reservationService) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *reservationService) today() time.Time {
	return clock.Today(s.clock, s.cfg.HotelLocation)
}

func (s *reservationService) sanitizeRequest(req *model.ReservationRequest) {
	req.UnitID = sanitizer.NormalizeIdentifier(req.UnitID)
	req.StaffID = sanitizer.NormalizeIdentifier(req.StaffID)
	req.Guest.Name = sanitizer.NormalizeName(req.Guest.Name)
	req.Guest.Email = sanitizer.NormalizeEmail(req.Guest.Email)
	if phone := sanitizer.NormalizePhone(req.Guest.Phone, s.cfg.PhoneRegions...); phone != "" {
		req.Guest.Phone = phone
	}
}

func (s *reservationService) validate(request any, message string) error {
	if err := s.validator.Validate(request); err != nil {
		s.log.Warn(message, "error", err)
		var errs validation.Errors
		if errors.As(err, &errs) {
			return apperrors.Validation(message, errs.Details())
		}
		return apperrors.Validation(message, map[string]any{"error": err.Error()})
	}
	return nil
}

// mapError converts domain sentinels into AppErrors that keep the sentinel
// as their cause. AppErrors from collaborators pass through unchanged.
func (s *reservationService) mapError(err error, id, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, reservationserrors.ErrNotFound):
		appErr := apperrors.NotFoundWithID("Reservation", id)
		appErr.Err = err
		return appErr
	case errors.Is(err, reservationserrors.ErrInvalidID):
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "Invalid reservation ID format", http.StatusBadRequest)
	case errors.Is(err, reservationserrors.ErrInvalidDateRange):
		return apperrors.InvalidDateRange(err.Error(), err)
	case errors.Is(err, reservationserrors.ErrUnitUnavailable):
		return apperrors.UnitUnavailable(err.Error(), err)
	case errors.Is(err, reservationserrors.ErrDateRangeConflict):
		return apperrors.DateRangeConflict(err.Error(), err)
	case errors.Is(err, reservationserrors.ErrAlreadyProcessed):
		return apperrors.AlreadyProcessed(err.Error(), err)
	case errors.Is(err, reservationserrors.ErrInvalidTransition):
		return apperrors.InvalidTransition(err.Error(), err)
	case errors.Is(err, reservationserrors.ErrInvalidAmount):
		return apperrors.InvalidAmount(err.Error(), err)
	case errors.Is(err, reservationserrors.ErrConcurrentModification):
		s.log.Warn("Concurrent modification detected", "id", id)
		return apperrors.ConcurrentModification(err.Error(), err)
	case errors.Is(err, reservationserrors.ErrLockHeld):
		return apperrors.Wrap(err, apperrors.CodeConflict, "Unit is being booked by another request, try again", http.StatusConflict)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(message)
	default:
		s.log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func validateRange(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return apperrors.InvalidDateRange(
			fmt.Sprintf("check-out %s must be after check-in %s", checkOut.Format(time.DateOnly), checkIn.Format(time.DateOnly)),
			reservationserrors.ErrInvalidDateRange,
		)
	}
	return nil
}

func parseRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid check_in format, must be YYYY-MM-DD")
	}
	out, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid check_out format, must be YYYY-MM-DD")
	}
	if err := validateRange(in, out); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

func parseSegments(reqs []model.SegmentRequest) ([]model.PriceSegment, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	segments := make([]model.PriceSegment, 0, len(reqs))
	for _, r := range reqs {
		date, err := time.Parse(time.DateOnly, r.Date)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid segment date format, must be YYYY-MM-DD")
		}
		segments = append(segments, model.PriceSegment{Date: date, Mode: r.Mode, Count: r.Count})
	}
	return segments, nil
}

func quotedSegments(q *pricing.Quote) []model.PriceSegment {
	out := make([]model.PriceSegment, 0, len(q.Segments))
	for _, sq := range q.Segments {
		out = append(out, sq.Segment)
	}
	return out
}

func actualOr(actual *time.Time, now time.Time) time.Time {
	if actual == nil || actual.IsZero() {
		return now
	}
	return actual.UTC()
}
