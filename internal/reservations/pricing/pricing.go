// Package pricing computes reservation totals from a unit's rate schedule.
package pricing

import (
	"fmt"
	"time"

	reservationserrors "innkeep/internal/reservations/errors"
	"innkeep/pkg/model"
)

// WeekendFunc reports whether a calendar date is priced as a weekend.
type WeekendFunc func(date time.Time) bool

// SaturdaySunday is the default weekend predicate. Dates are calendar days
// already expressed in the hotel's local calendar.
func SaturdaySunday(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

type Calculator struct {
	isWeekend WeekendFunc
}

func NewCalculator(isWeekend WeekendFunc) *Calculator {
	if isWeekend == nil {
		isWeekend = SaturdaySunday
	}
	return &Calculator{isWeekend: isWeekend}
}

type SegmentQuote struct {
	Segment  model.PriceSegment `json:"segment"`
	Rate     model.Money        `json:"rate"`
	Weekend  bool               `json:"weekend"`
	Subtotal model.Money        `json:"subtotal"`
}

type Quote struct {
	UnitID   string         `json:"unit_id"`
	Kind     model.UnitKind `json:"kind"`
	Nights   int            `json:"nights,omitempty"`
	Rate     model.Money    `json:"rate,omitempty"`
	Segments []SegmentQuote `json:"segments,omitempty"`
	Total    model.Money    `json:"total"`
}

// hoursPerDay bounds what the segments of a single date may book.
const hoursPerDay = 24

var modeHours = map[model.DurationMode]int{
	model.ModeHourly:  1,
	model.ModeHalfDay: hoursPerDay / 2,
	model.ModeFullDay: hoursPerDay,
}

// Quote prices a booking of unit over [checkIn, checkOut). Rooms ignore
// segments. Event spaces price each segment on its own date, which must lie
// inside the stay; when none are given every day is one full-day segment.
func (c *Calculator) Quote(unit *model.Unit, checkIn, checkOut time.Time, segments []model.PriceSegment) (*Quote, error) {
	if !checkOut.After(checkIn) {
		return nil, reservationserrors.ErrInvalidDateRange
	}

	switch unit.Kind {
	case model.UnitRoom:
		rate, nights, total, err := c.roomTotal(unit, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		return &Quote{UnitID: unit.ID, Kind: unit.Kind, Nights: nights, Rate: rate, Total: total}, nil

	case model.UnitEventSpace:
		if len(segments) == 0 {
			segments = DefaultSegments(checkIn, checkOut)
		}
		if err := fitSegments(checkIn, checkOut, segments); err != nil {
			return nil, err
		}
		q := &Quote{UnitID: unit.ID, Kind: unit.Kind}
		for _, seg := range segments {
			sq, err := c.segmentQuote(unit, seg)
			if err != nil {
				return nil, err
			}
			q.Segments = append(q.Segments, sq)
			if q.Total, err = q.Total.Plus(sq.Subtotal); err != nil {
				return nil, fmt.Errorf("%w: %w", reservationserrors.ErrInvalidAmount, err)
			}
		}
		return q, nil

	default:
		return nil, fmt.Errorf("unsupported unit kind %q", unit.Kind)
	}
}

// DefaultSegments is one full-day segment for every day of the range, so
// each day is checked against the weekend predicate on its own.
func DefaultSegments(checkIn, checkOut time.Time) []model.PriceSegment {
	days := model.NightsBetween(checkIn, checkOut)
	out := make([]model.PriceSegment, 0, days)
	for i := range days {
		out = append(out, model.PriceSegment{
			Date:  model.DateOf(checkIn).AddDate(0, 0, i),
			Mode:  model.ModeFullDay,
			Count: 1,
		})
	}
	return out
}

// fitSegments checks that every segment books a date inside
// [checkIn, checkOut) and that no date is booked for more than a day.
func fitSegments(checkIn, checkOut time.Time, segments []model.PriceSegment) error {
	first, last := model.DateOf(checkIn), model.DateOf(checkIn).AddDate(0, 0, model.NightsBetween(checkIn, checkOut))
	booked := make(map[time.Time]int, len(segments))

	for _, seg := range segments {
		perUnit, ok := modeHours[seg.Mode]
		if !ok {
			return fmt.Errorf("%w: unknown duration mode %q", reservationserrors.ErrInvalidAmount, seg.Mode)
		}
		if seg.Count <= 0 {
			return fmt.Errorf("%w: %s count must be positive, got %d", reservationserrors.ErrInvalidAmount, seg.Mode, seg.Count)
		}

		day := model.DateOf(seg.Date)
		if day.Before(first) || !day.Before(last) {
			return fmt.Errorf("%w: segment date %s is outside the stay %s to %s",
				reservationserrors.ErrInvalidDateRange,
				day.Format(time.DateOnly),
				first.Format(time.DateOnly),
				last.Format(time.DateOnly),
			)
		}
		if seg.Count > hoursPerDay/perUnit || booked[day]+seg.Count*perUnit > hoursPerDay {
			return fmt.Errorf("%w: segments book more than %d hours on %s",
				reservationserrors.ErrInvalidDateRange, hoursPerDay, day.Format(time.DateOnly))
		}
		booked[day] += seg.Count * perUnit
	}
	return nil
}

func (c *Calculator) roomTotal(unit *model.Unit, checkIn, checkOut time.Time) (model.Money, int, model.Money, error) {
	rate := unit.Rates.BaseRate
	if unit.Rates.NightlyOverrideRate > 0 {
		rate = unit.Rates.NightlyOverrideRate
	}
	if !rate.IsPositive() {
		return 0, 0, 0, fmt.Errorf("%w: nightly rate for unit %s is %s", reservationserrors.ErrInvalidAmount, unit.ID, rate)
	}
	nights := model.NightsBetween(checkIn, checkOut)
	total, err := rate.Times(nights)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %w", reservationserrors.ErrInvalidAmount, err)
	}
	return rate, nights, total, nil
}

func (c *Calculator) segmentQuote(unit *model.Unit, seg model.PriceSegment) (SegmentQuote, error) {
	var rate model.Money
	switch seg.Mode {
	case model.ModeHourly:
		rate = unit.Rates.HourlyRate
	case model.ModeHalfDay:
		rate = unit.Rates.HalfDayRate
	case model.ModeFullDay:
		rate = unit.Rates.FullDayRate
	default:
		return SegmentQuote{}, fmt.Errorf("%w: unknown duration mode %q", reservationserrors.ErrInvalidAmount, seg.Mode)
	}
	if !rate.IsPositive() {
		return SegmentQuote{}, fmt.Errorf("%w: %s rate for unit %s is %s", reservationserrors.ErrInvalidAmount, seg.Mode, unit.ID, rate)
	}

	subtotal, err := rate.Times(seg.Count)
	if err != nil {
		return SegmentQuote{}, fmt.Errorf("%w: %w", reservationserrors.ErrInvalidAmount, err)
	}
	weekend := c.isWeekend(seg.Date)
	if weekend {
		multiplier := unit.Rates.WeekendRateMultiplier
		if multiplier == 0 {
			multiplier = 1.0
		}
		if multiplier < 0 {
			return SegmentQuote{}, fmt.Errorf("%w: weekend multiplier for unit %s is %v", reservationserrors.ErrInvalidAmount, unit.ID, multiplier)
		}
		if subtotal, err = subtotal.Mul(multiplier); err != nil {
			return SegmentQuote{}, fmt.Errorf("%w: %w", reservationserrors.ErrInvalidAmount, err)
		}
	}

	return SegmentQuote{Segment: seg, Rate: rate, Weekend: weekend, Subtotal: subtotal}, nil
}
