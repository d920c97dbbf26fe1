package model

import "time"

type BookingSource string

const (
	SourceFrontDesk BookingSource = "front_desk"
	SourcePhone     BookingSource = "phone"
	SourceEmail     BookingSource = "email"
	SourceWebsite   BookingSource = "website"
	SourceWalkIn    BookingSource = "walk_in"
	SourceOTA       BookingSource = "ota"
)

var BookingSources = []BookingSource{
	SourceFrontDesk,
	SourcePhone,
	SourceEmail,
	SourceWebsite,
	SourceWalkIn,
	SourceOTA,
}

type Guest struct {
	Name  string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
}

// PriceSegment is one priced slice of an event-space booking: a date, a
// duration mode and how many hours or days of that mode.
type PriceSegment struct {
	Date  time.Time    `json:"date" bson:"date"`
	Mode  DurationMode `json:"mode" bson:"mode"`
	Count int          `json:"count" bson:"count"`
}

type PaymentKind string

const (
	PaymentKindPayment PaymentKind = "payment"
	PaymentKindRefund  PaymentKind = "refund"
)

type PaymentEntry struct {
	Kind       PaymentKind `json:"kind" bson:"kind"`
	Amount     Money       `json:"amount" bson:"amount"`
	StaffID    string      `json:"staff_id" bson:"staff_id"`
	RecordedAt time.Time   `json:"recorded_at" bson:"recorded_at"`
}

// Reservation is a booking of one unit over the half-open date range
// [CheckInDate, CheckOutDate). Dates are calendar days stored at UTC midnight.
type Reservation struct {
	ID            string         `json:"id,omitempty" bson:"_id,omitempty"`
	ReferenceCode string         `json:"reference_code" bson:"reference_code"`
	UnitID        string         `json:"unit_id" bson:"unit_id"`
	HotelID       string         `json:"hotel_id" bson:"hotel_id"`
	Guest         Guest          `json:"guest" bson:"guest"`
	CheckInDate   time.Time      `json:"check_in_date" bson:"check_in_date"`
	CheckOutDate  time.Time      `json:"check_out_date" bson:"check_out_date"`
	Adults        int            `json:"adults" bson:"adults"`
	Children      int            `json:"children" bson:"children"`
	Segments      []PriceSegment `json:"segments,omitempty" bson:"segments,omitempty"`
	BookingSource BookingSource  `json:"booking_source" bson:"booking_source"`

	TotalAmount    Money          `json:"total_amount" bson:"total_amount"`
	AmountPaid     Money          `json:"amount_paid" bson:"amount_paid"`
	BalanceDue     Money          `json:"balance_due" bson:"balance_due"`
	RefundedAmount Money          `json:"refunded_amount" bson:"refunded_amount"`
	Payments       []PaymentEntry `json:"payments,omitempty" bson:"payments,omitempty"`

	BookingStatus BookingStatus `json:"booking_status" bson:"booking_status"`
	PaymentStatus PaymentStatus `json:"payment_status" bson:"payment_status"`

	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	CreatedBy    string     `json:"created_by,omitempty" bson:"created_by,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	ConfirmedBy  string     `json:"confirmed_by,omitempty" bson:"confirmed_by,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty" bson:"checked_in_at,omitempty"`
	CheckedInBy  string     `json:"checked_in_by,omitempty" bson:"checked_in_by,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty" bson:"checked_out_at,omitempty"`
	CheckedOutBy string     `json:"checked_out_by,omitempty" bson:"checked_out_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledBy  string     `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	NoShowAt     *time.Time `json:"no_show_at,omitempty" bson:"no_show_at,omitempty"`
	NoShowBy     string     `json:"no_show_by,omitempty" bson:"no_show_by,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`

	// Version increments on every persisted change and guards concurrent
	// writers against each other.
	Version int64 `json:"version" bson:"version"`
}

// Nights is the number of calendar days between check-in and check-out,
// rounded up and never below one.
func (r *Reservation) Nights() int {
	return NightsBetween(r.CheckInDate, r.CheckOutDate)
}

// Clone returns a deep copy so a transition can be applied without touching
// the caller's value.
func (r *Reservation) Clone() *Reservation {
	c := *r
	if r.Segments != nil {
		c.Segments = append([]PriceSegment(nil), r.Segments...)
	}
	if r.Payments != nil {
		c.Payments = append([]PaymentEntry(nil), r.Payments...)
	}
	c.ConfirmedAt = cloneTime(r.ConfirmedAt)
	c.CheckedInAt = cloneTime(r.CheckedInAt)
	c.CheckedOutAt = cloneTime(r.CheckedOutAt)
	c.CancelledAt = cloneTime(r.CancelledAt)
	c.NoShowAt = cloneTime(r.NoShowAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
