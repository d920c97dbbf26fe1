// Package lifecycle owns reservation status transitions and the derived
// payment fields. Every function works on a copy of the reservation and
// leaves its argument unchanged, including on error.
package lifecycle

import (
	"fmt"
	"slices"
	"time"

	reservationserrors "innkeep/internal/reservations/errors"
	"innkeep/pkg/model"
)

type Event string

const (
	EventConfirm    Event = "confirm"
	EventCheckIn    Event = "check_in"
	EventCheckOut   Event = "check_out"
	EventCancel     Event = "cancel"
	EventMarkNoShow Event = "mark_no_show"
)

type transition struct {
	from []model.BookingStatus
	to   model.BookingStatus
}

var transitions = map[Event]transition{
	EventConfirm:    {from: []model.BookingStatus{model.BookingPending}, to: model.BookingConfirmed},
	EventCheckIn:    {from: []model.BookingStatus{model.BookingPending, model.BookingConfirmed}, to: model.BookingCheckedIn},
	EventCheckOut:   {from: []model.BookingStatus{model.BookingCheckedIn}, to: model.BookingCheckedOut},
	EventCancel:     {from: []model.BookingStatus{model.BookingPending, model.BookingConfirmed}, to: model.BookingCancelled},
	EventMarkNoShow: {from: []model.BookingStatus{model.BookingConfirmed}, to: model.BookingNoShow},
}

// CanTransition reports whether event is legal from status, ignoring guards
// that depend on dates.
func CanTransition(status model.BookingStatus, event Event) bool {
	t, ok := transitions[event]
	return ok && slices.Contains(t.from, status)
}

// AllowedEvents lists the events legal from status in a stable order.
func AllowedEvents(status model.BookingStatus) []Event {
	var out []Event
	for _, e := range []Event{EventConfirm, EventCheckIn, EventCheckOut, EventCancel, EventMarkNoShow} {
		if CanTransition(status, e) {
			out = append(out, e)
		}
	}
	return out
}

// Initialize prepares a new reservation in the pending state.
func Initialize(r *model.Reservation, total model.Money, staffID string, at time.Time) (*model.Reservation, error) {
	if !r.CheckOutDate.After(r.CheckInDate) {
		return nil, reservationserrors.ErrInvalidDateRange
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total %s", reservationserrors.ErrInvalidAmount, total)
	}

	next := r.Clone()
	next.BookingStatus = model.BookingPending
	next.TotalAmount = total
	next.AmountPaid = 0
	next.RefundedAmount = 0
	next.Payments = nil
	next.CreatedAt = at
	next.CreatedBy = staffID
	next.UpdatedAt = at
	next.Version = 1
	settle(next)
	return next, nil
}

func Confirm(r *model.Reservation, staffID string, at time.Time) (*model.Reservation, error) {
	next, err := begin(r, EventConfirm)
	if err != nil {
		return nil, err
	}
	next.ConfirmedAt, next.ConfirmedBy = stamp(next.ConfirmedAt, next.ConfirmedBy, staffID, at)
	return finish(next, at), nil
}

// CheckIn requires today, the hotel-local calendar date, to fall within
// [check-in date, check-out date). actual is the recorded arrival time.
func CheckIn(r *model.Reservation, staffID string, actual, today time.Time) (*model.Reservation, error) {
	next, err := begin(r, EventCheckIn)
	if err != nil {
		return nil, err
	}
	if r.CheckedInAt != nil {
		return nil, fmt.Errorf("%w: reservation %s was already checked in", reservationserrors.ErrInvalidTransition, r.ReferenceCode)
	}
	if today.Before(r.CheckInDate) || !today.Before(r.CheckOutDate) {
		return nil, fmt.Errorf("%w: check-in is only possible from %s until %s, today is %s",
			reservationserrors.ErrInvalidTransition,
			r.CheckInDate.Format(time.DateOnly),
			r.CheckOutDate.Format(time.DateOnly),
			today.Format(time.DateOnly),
		)
	}
	next.CheckedInAt, next.CheckedInBy = stamp(next.CheckedInAt, next.CheckedInBy, staffID, actual)
	return finish(next, actual), nil
}

// CheckOut requires actual to be no earlier than the recorded check-in time.
func CheckOut(r *model.Reservation, staffID string, actual time.Time) (*model.Reservation, error) {
	next, err := begin(r, EventCheckOut)
	if err != nil {
		return nil, err
	}
	if r.CheckedInAt != nil && actual.Before(*r.CheckedInAt) {
		return nil, fmt.Errorf("%w: check-out time %s is before check-in time %s",
			reservationserrors.ErrInvalidTransition,
			actual.Format(time.RFC3339),
			r.CheckedInAt.Format(time.RFC3339),
		)
	}
	next.CheckedOutAt, next.CheckedOutBy = stamp(next.CheckedOutAt, next.CheckedOutBy, staffID, actual)
	return finish(next, actual), nil
}

func Cancel(r *model.Reservation, staffID string, at time.Time) (*model.Reservation, error) {
	next, err := begin(r, EventCancel)
	if err != nil {
		return nil, err
	}
	if r.CheckedInAt != nil {
		return nil, fmt.Errorf("%w: reservation %s was already checked in", reservationserrors.ErrInvalidTransition, r.ReferenceCode)
	}
	next.CancelledAt, next.CancelledBy = stamp(next.CancelledAt, next.CancelledBy, staffID, at)
	return finish(next, at), nil
}

// MarkNoShow requires today to be strictly after the check-in date.
func MarkNoShow(r *model.Reservation, staffID string, at, today time.Time) (*model.Reservation, error) {
	next, err := begin(r, EventMarkNoShow)
	if err != nil {
		return nil, err
	}
	if r.CheckedInAt != nil {
		return nil, fmt.Errorf("%w: guest already checked in", reservationserrors.ErrInvalidTransition)
	}
	if !today.After(r.CheckInDate) {
		return nil, fmt.Errorf("%w: check-in date %s has not passed yet",
			reservationserrors.ErrInvalidTransition, r.CheckInDate.Format(time.DateOnly))
	}
	next.NoShowAt, next.NoShowBy = stamp(next.NoShowAt, next.NoShowBy, staffID, at)
	return finish(next, at), nil
}

// RecordPayment adds amount to amount_paid. It never changes the booking
// status.
func RecordPayment(r *model.Reservation, amount model.Money, staffID string, at time.Time) (*model.Reservation, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment %s", reservationserrors.ErrInvalidAmount, amount)
	}
	switch r.BookingStatus {
	case model.BookingCancelled, model.BookingNoShow:
		return nil, fmt.Errorf("%w: cannot record payment on a %s reservation", reservationserrors.ErrInvalidTransition, r.BookingStatus)
	}
	if amount > r.TotalAmount-r.AmountPaid {
		return nil, fmt.Errorf("%w: payment %s exceeds balance due %s", reservationserrors.ErrInvalidAmount, amount, r.BalanceDue)
	}

	next := r.Clone()
	next.AmountPaid += amount
	next.Payments = append(next.Payments, model.PaymentEntry{
		Kind:       model.PaymentKindPayment,
		Amount:     amount,
		StaffID:    staffID,
		RecordedAt: at,
	})
	return finish(next, at), nil
}

// RecordRefund returns money on a cancelled or checked-out reservation. The
// refunded amount is the explicit marker that makes payment status refunded.
func RecordRefund(r *model.Reservation, amount model.Money, staffID string, at time.Time) (*model.Reservation, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund %s", reservationserrors.ErrInvalidAmount, amount)
	}
	switch r.BookingStatus {
	case model.BookingCancelled, model.BookingCheckedOut:
	default:
		return nil, fmt.Errorf("%w: refunds require a cancelled or checked-out reservation, status is %s",
			reservationserrors.ErrInvalidTransition, r.BookingStatus)
	}
	if amount > r.AmountPaid {
		return nil, fmt.Errorf("%w: refund %s exceeds amount paid %s", reservationserrors.ErrInvalidAmount, amount, r.AmountPaid)
	}

	next := r.Clone()
	next.AmountPaid -= amount
	next.RefundedAmount += amount
	next.Payments = append(next.Payments, model.PaymentEntry{
		Kind:       model.PaymentKindRefund,
		Amount:     amount,
		StaffID:    staffID,
		RecordedAt: at,
	})
	return finish(next, at), nil
}

// Reschedule moves an open reservation to new dates at a new total. The
// caller must already have checked availability for the new range. A higher
// total on a fully paid reservation reopens a balance, so payment status
// drops back to partial.
func Reschedule(r *model.Reservation, checkIn, checkOut time.Time, total model.Money, at time.Time) (*model.Reservation, error) {
	if !checkOut.After(checkIn) {
		return nil, reservationserrors.ErrInvalidDateRange
	}
	if !CanReschedule(r.BookingStatus) {
		return nil, fmt.Errorf("%w: cannot reschedule a %s reservation", reservationserrors.ErrInvalidTransition, r.BookingStatus)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total %s", reservationserrors.ErrInvalidAmount, total)
	}
	if total < r.AmountPaid {
		return nil, fmt.Errorf("%w: new total %s is below amount paid %s", reservationserrors.ErrInvalidAmount, total, r.AmountPaid)
	}

	next := r.Clone()
	next.CheckInDate = checkIn
	next.CheckOutDate = checkOut
	next.TotalAmount = total
	return finish(next, at), nil
}

// CanReschedule reports whether dates may still move: only before arrival.
func CanReschedule(status model.BookingStatus) bool {
	return status == model.BookingPending || status == model.BookingConfirmed
}

// DerivePaymentStatus classifies how much of the total has been collected.
// Refunded wins over everything once any refund has been recorded.
func DerivePaymentStatus(r *model.Reservation) model.PaymentStatus {
	switch {
	case r.RefundedAmount > 0:
		return model.PaymentRefunded
	case r.AmountPaid >= r.TotalAmount && r.TotalAmount > 0:
		return model.PaymentPaid
	case r.AmountPaid > 0:
		return model.PaymentPartial
	default:
		return model.PaymentPending
	}
}

func begin(r *model.Reservation, event Event) (*model.Reservation, error) {
	t, ok := transitions[event]
	if !ok {
		return nil, fmt.Errorf("%w: unknown event %q", reservationserrors.ErrInvalidTransition, event)
	}
	if r.BookingStatus == t.to {
		return nil, fmt.Errorf("%w: reservation %s is already %s", reservationserrors.ErrAlreadyProcessed, r.ReferenceCode, t.to)
	}
	if !slices.Contains(t.from, r.BookingStatus) {
		return nil, fmt.Errorf("%w: cannot %s a %s reservation, allowed: %v",
			reservationserrors.ErrInvalidTransition, event, r.BookingStatus, AllowedEvents(r.BookingStatus))
	}
	next := r.Clone()
	next.BookingStatus = t.to
	return next, nil
}

func finish(r *model.Reservation, at time.Time) *model.Reservation {
	settle(r)
	r.UpdatedAt = at
	return r
}

func settle(r *model.Reservation) {
	r.BalanceDue = r.TotalAmount - r.AmountPaid
	r.PaymentStatus = DerivePaymentStatus(r)
}

// stamp sets an actor/time pair unless it was already written.
func stamp(current *time.Time, by, staffID string, at time.Time) (*time.Time, string) {
	if current != nil {
		return current, by
	}
	return &at, staffID
}
