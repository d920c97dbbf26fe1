package model

import "time"

// UnitKind distinguishes the two kinds of bookable inventory.
type UnitKind string

const (
	UnitRoom       UnitKind = "room"
	UnitEventSpace UnitKind = "event_space"
)

// DurationMode is how an event space is booked.
type DurationMode string

const (
	ModeHourly  DurationMode = "hourly"
	ModeHalfDay DurationMode = "half_day"
	ModeFullDay DurationMode = "full_day"
)

// RateSchedule holds every price attached to a unit. Rooms use BaseRate and
// the optional NightlyOverrideRate; event spaces use the hourly/half-day/
// full-day rates and WeekendRateMultiplier.
type RateSchedule struct {
	BaseRate              Money   `json:"base_rate,omitempty" bson:"base_rate" validate:"gte=0"`
	NightlyOverrideRate   Money   `json:"nightly_override_rate,omitempty" bson:"nightly_override_rate,omitempty" validate:"gte=0"`
	HourlyRate            Money   `json:"hourly_rate,omitempty" bson:"hourly_rate,omitempty" validate:"gte=0"`
	HalfDayRate           Money   `json:"half_day_rate,omitempty" bson:"half_day_rate,omitempty" validate:"gte=0"`
	FullDayRate           Money   `json:"full_day_rate,omitempty" bson:"full_day_rate,omitempty" validate:"gte=0"`
	WeekendRateMultiplier float64 `json:"weekend_rate_multiplier,omitempty" bson:"weekend_rate_multiplier,omitempty" validate:"omitempty,gt=0,lte=10"`
}

type Unit struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID     string       `json:"hotel_id" bson:"hotel_id" validate:"required,min=1,max=64"`
	Kind        UnitKind     `json:"kind" bson:"kind" validate:"required,unit_kind"`
	Name        string       `json:"name" bson:"name" validate:"required,min=1,max=100"`
	MaxAdults   int          `json:"max_adults,omitempty" bson:"max_adults,omitempty" validate:"gte=0,lte=50"`
	MaxChildren int          `json:"max_children,omitempty" bson:"max_children,omitempty" validate:"gte=0,lte=50"`
	MaxGuests   int          `json:"max_guests,omitempty" bson:"max_guests,omitempty" validate:"gte=0,lte=5000"`
	Rates       RateSchedule `json:"rates" bson:"rates" validate:"required"`
	Available   bool         `json:"available" bson:"available"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

type UnitUpdate struct {
	Name        *string       `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	MaxAdults   *int          `json:"max_adults,omitempty" validate:"omitempty,gte=0,lte=50"`
	MaxChildren *int          `json:"max_children,omitempty" validate:"omitempty,gte=0,lte=50"`
	MaxGuests   *int          `json:"max_guests,omitempty" validate:"omitempty,gte=0,lte=5000"`
	Rates       *RateSchedule `json:"rates,omitempty"`
	Available   *bool         `json:"available,omitempty"`
}

func (u *Unit) IsRoom() bool {
	return u.Kind == UnitRoom
}

func (u *Unit) IsEventSpace() bool {
	return u.Kind == UnitEventSpace
}

// Capacity is the total number of occupants the unit can hold.
func (u *Unit) Capacity() int {
	if u.IsEventSpace() {
		return u.MaxGuests
	}
	return u.MaxAdults + u.MaxChildren
}

// Fits reports whether the occupancy fits the unit's capacity attributes.
func (u *Unit) Fits(adults, children int) bool {
	if u.IsEventSpace() {
		return adults+children <= u.MaxGuests
	}
	return adults <= u.MaxAdults && children <= u.MaxChildren
}
