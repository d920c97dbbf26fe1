package model

import "time"

type ReservationEventType string

const (
	EventReservationCreated     ReservationEventType = "reservation.created"
	EventReservationConfirmed   ReservationEventType = "reservation.confirmed"
	EventReservationCheckedIn   ReservationEventType = "reservation.checked_in"
	EventReservationCheckedOut  ReservationEventType = "reservation.checked_out"
	EventReservationCancelled   ReservationEventType = "reservation.cancelled"
	EventReservationNoShow      ReservationEventType = "reservation.no_show"
	EventReservationPayment     ReservationEventType = "reservation.payment_recorded"
	EventReservationRefund      ReservationEventType = "reservation.refund_recorded"
	EventReservationRescheduled ReservationEventType = "reservation.rescheduled"
)

// ReservationEvent is published after every successful reservation change.
type ReservationEvent struct {
	Type          ReservationEventType `json:"event_type"`
	ReservationID string               `json:"reservation_id"`
	ReferenceCode string               `json:"reference_code"`
	UnitID        string               `json:"unit_id"`
	HotelID       string               `json:"hotel_id"`
	BookingStatus BookingStatus        `json:"booking_status"`
	PaymentStatus PaymentStatus        `json:"payment_status"`
	CheckInDate   time.Time            `json:"check_in_date"`
	CheckOutDate  time.Time            `json:"check_out_date"`
	TotalAmount   Money                `json:"total_amount"`
	AmountPaid    Money                `json:"amount_paid"`
	BalanceDue    Money                `json:"balance_due"`
	Amount        Money                `json:"amount,omitempty"`
	Actor         string               `json:"actor"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func NewReservationEvent(t ReservationEventType, r *Reservation, actor string, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          t,
		ReservationID: r.ID,
		ReferenceCode: r.ReferenceCode,
		UnitID:        r.UnitID,
		HotelID:       r.HotelID,
		BookingStatus: r.BookingStatus,
		PaymentStatus: r.PaymentStatus,
		CheckInDate:   r.CheckInDate,
		CheckOutDate:  r.CheckOutDate,
		TotalAmount:   r.TotalAmount,
		AmountPaid:    r.AmountPaid,
		BalanceDue:    r.BalanceDue,
		Actor:         actor,
		OccurredAt:    at,
	}
}
