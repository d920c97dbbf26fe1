package model

import "time"

// SegmentRequest is a PriceSegment as sent by clients, with a YYYY-MM-DD date.
// Non-positive counts are left to pricing, which reports INVALID_AMOUNT.
type SegmentRequest struct {
	Date  string       `json:"date" validate:"required,datetime=2006-01-02"`
	Mode  DurationMode `json:"mode" validate:"required,duration_mode"`
	Count int          `json:"count" validate:"lte=24"`
}

type ReservationRequest struct {
	UnitID        string           `json:"unit_id" validate:"required,mongodb"`
	Guest         Guest            `json:"guest" validate:"required"`
	CheckIn       string           `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut      string           `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults        int              `json:"adults" validate:"gte=1,lte=5000"`
	Children      int              `json:"children" validate:"gte=0,lte=5000"`
	Segments      []SegmentRequest `json:"segments,omitempty" validate:"omitempty,max=62,dive"`
	BookingSource BookingSource    `json:"booking_source" validate:"required,booking_source"`
	StaffID       string           `json:"staff_id" validate:"required,min=1,max=64"`
}

type QuoteRequest struct {
	CheckIn  string           `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string           `json:"check_out" validate:"required,datetime=2006-01-02"`
	Segments []SegmentRequest `json:"segments,omitempty" validate:"omitempty,max=62,dive"`
}

// StaffAction carries the acting staff member of a lifecycle transition.
type StaffAction struct {
	StaffID string `json:"staff_id" validate:"required,min=1,max=64"`
}

// StayAction is a check-in or check-out. ActualTime defaults to now.
type StayAction struct {
	StaffID    string     `json:"staff_id" validate:"required,min=1,max=64"`
	ActualTime *time.Time `json:"actual_time,omitempty"`
}

// PaymentRequest records a payment or refund. The amount is checked by the
// lifecycle rules so that non-positive values report INVALID_AMOUNT.
type PaymentRequest struct {
	StaffID string `json:"staff_id" validate:"required,min=1,max=64"`
	Amount  Money  `json:"amount"`
}

type RescheduleRequest struct {
	StaffID  string           `json:"staff_id" validate:"required,min=1,max=64"`
	CheckIn  string           `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string           `json:"check_out" validate:"required,datetime=2006-01-02"`
	Segments []SegmentRequest `json:"segments,omitempty" validate:"omitempty,max=62,dive"`
}

// AvailabilityFilter narrows an availability search. Zero values match all.
type AvailabilityFilter struct {
	Kind   UnitKind
	Guests int
}
