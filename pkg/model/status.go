package model

import "fmt"

// BookingStatus is the operational lifecycle state of a reservation.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
)

var bookingStatuses = []BookingStatus{
	BookingPending,
	BookingConfirmed,
	BookingCheckedIn,
	BookingCheckedOut,
	BookingCancelled,
	BookingNoShow,
}

func (s BookingStatus) IsValid() bool {
	for _, known := range bookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition can leave this status.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingCheckedOut, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

// OccupiesInventory reports whether a reservation in this status blocks its
// unit for its dates.
func (s BookingStatus) OccupiesInventory() bool {
	return s != BookingCancelled && s != BookingNoShow
}

func (s BookingStatus) String() string {
	return string(s)
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// PaymentStatus classifies how much of the total has been collected. It is
// always derived, never assigned by callers.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

// Rank orders the forward progression pending < partial < paid.
// Refunded sits outside that progression and ranks -1.
func (s PaymentStatus) Rank() int {
	switch s {
	case PaymentPending:
		return 0
	case PaymentPartial:
		return 1
	case PaymentPaid:
		return 2
	}
	return -1
}
