// Package availability decides whether units are free for a date range.
//
// Date ranges are half-open: [checkIn, checkOut). A stay that checks out on
// day D never conflicts with one that checks in on day D.
package availability

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	reservationserrors "innkeep/internal/reservations/errors"
	"innkeep/pkg/model"
)

// UnitDirectory resolves unit references. It must return an error wrapping a
// not-found sentinel for unknown ids.
type UnitDirectory interface {
	GetByID(ctx context.Context, unitID string) (*model.Unit, error)
}

// ReservationLister returns reservations for a unit whose ranges may
// intersect [from, to). It may return extra rows; the index filters them.
type ReservationLister interface {
	ListByUnitInRange(ctx context.Context, unitID string, from, to time.Time) ([]*model.Reservation, error)
}

type Index struct {
	units        UnitDirectory
	reservations ReservationLister
}

func NewIndex(units UnitDirectory, reservations ReservationLister) *Index {
	return &Index{
		units:        units,
		reservations: reservations,
	}
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// IsAvailable resolves unitID and reports whether it can serve the range.
// excludeReservationID skips the reservation being edited.
func (ix *Index) IsAvailable(ctx context.Context, unitID string, checkIn, checkOut time.Time, excludeReservationID string) (bool, error) {
	unit, err := ix.units.GetByID(ctx, unitID)
	if err != nil {
		return false, err
	}
	return ix.IsUnitAvailable(ctx, unit, checkIn, checkOut, excludeReservationID)
}

func (ix *Index) IsUnitAvailable(ctx context.Context, unit *model.Unit, checkIn, checkOut time.Time, excludeReservationID string) (bool, error) {
	err := ix.Check(ctx, unit, checkIn, checkOut, excludeReservationID)
	switch {
	case err == nil:
		return true, nil
	case isOccupancyError(err):
		return false, nil
	default:
		return false, err
	}
}

// Check is IsUnitAvailable with the reason: it returns an error wrapping
// ErrUnitUnavailable when the unit is switched off and ErrDateRangeConflict
// when an active reservation overlaps the range.
func (ix *Index) Check(ctx context.Context, unit *model.Unit, checkIn, checkOut time.Time, excludeReservationID string) error {
	if !unit.Available {
		return fmt.Errorf("%w: %s", reservationserrors.ErrUnitUnavailable, unit.ID)
	}

	existing, err := ix.reservations.ListByUnitInRange(ctx, unit.ID, checkIn, checkOut)
	if err != nil {
		return fmt.Errorf("failed to list reservations for unit %s: %w", unit.ID, err)
	}

	for _, r := range existing {
		if r.ID == excludeReservationID && excludeReservationID != "" {
			continue
		}
		if !r.BookingStatus.OccupiesInventory() {
			continue
		}
		if Overlaps(r.CheckInDate, r.CheckOutDate, checkIn, checkOut) {
			return fmt.Errorf("%w: %s (%s to %s)",
				reservationserrors.ErrDateRangeConflict,
				r.ReferenceCode,
				r.CheckInDate.Format(time.DateOnly),
				r.CheckOutDate.Format(time.DateOnly),
			)
		}
	}
	return nil
}

// FindAvailableUnits yields the units that can serve the range, in input
// order. The sequence is evaluated lazily against current reservation state
// and can be ranged over more than once. Iteration stops at the first
// lookup failure, which is yielded with a nil unit.
func (ix *Index) FindAvailableUnits(ctx context.Context, units []*model.Unit, checkIn, checkOut time.Time) iter.Seq2[*model.Unit, error] {
	return func(yield func(*model.Unit, error) bool) {
		for _, unit := range units {
			ok, err := ix.IsUnitAvailable(ctx, unit, checkIn, checkOut, "")
			if err != nil {
				yield(nil, err)
				return
			}
			if ok && !yield(unit, nil) {
				return
			}
		}
	}
}

func isOccupancyError(err error) bool {
	return errors.Is(err, reservationserrors.ErrUnitUnavailable) || errors.Is(err, reservationserrors.ErrDateRangeConflict)
}
