package availability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	reservationserrors "innkeep/internal/reservations/errors"
	"innkeep/pkg/model"
)

type fakeUnits map[string]*model.Unit

func (f fakeUnits) GetByID(_ context.Context, id string) (*model.Unit, error) {
	u, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrUnitNotFound, id)
	}
	return u, nil
}

type fakeReservations struct {
	rows  []*model.Reservation
	err   error
	calls int
}

func (f *fakeReservations) ListByUnitInRange(_ context.Context, unitID string, _, _ time.Time) ([]*model.Reservation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Reservation
	for _, r := range f.rows {
		if r.UnitID == unitID {
			out = append(out, r)
		}
	}
	return out, nil
}

func day(d int) time.Time {
	return time.Date(2025, 12, d, 0, 0, 0, 0, time.UTC)
}

func res(id, unitID string, in, out int, status model.BookingStatus) *model.Reservation {
	return &model.Reservation{
		ID:            id,
		ReferenceCode: "RSV-" + id,
		UnitID:        unitID,
		CheckInDate:   day(in),
		CheckOutDate:  day(out),
		BookingStatus: status,
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"identical", 10, 13, 10, 13, true},
		{"partial tail", 10, 13, 12, 15, true},
		{"partial head", 12, 15, 10, 13, true},
		{"contained", 10, 20, 12, 14, true},
		{"adjacent after", 10, 13, 13, 15, false},
		{"adjacent before", 13, 15, 10, 13, false},
		{"disjoint", 1, 3, 5, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(day(tt.aStart), day(tt.aEnd), day(tt.bStart), day(tt.bEnd))
			if got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAvailable(t *testing.T) {
	units := fakeUnits{
		"r1":  {ID: "r1", Kind: model.UnitRoom, Available: true},
		"off": {ID: "off", Kind: model.UnitRoom, Available: false},
	}
	rows := &fakeReservations{rows: []*model.Reservation{
		res("a", "r1", 10, 13, model.BookingConfirmed),
		res("b", "r1", 20, 22, model.BookingCancelled),
		res("c", "r1", 24, 26, model.BookingNoShow),
		res("d", "r1", 27, 29, model.BookingPending),
	}}
	ix := NewIndex(units, rows)

	tests := []struct {
		name    string
		unitID  string
		in, out int
		exclude string
		want    bool
	}{
		{"overlapping confirmed stay", "r1", 12, 15, "", false},
		{"same-day turnover after", "r1", 13, 15, "", true},
		{"same-day turnover before", "r1", 8, 10, "", true},
		{"over cancelled stay", "r1", 20, 22, "", true},
		{"over no-show stay", "r1", 24, 26, "", true},
		{"overlapping pending stay", "r1", 28, 30, "", false},
		{"editing own reservation", "r1", 11, 14, "a", true},
		{"administratively disabled", "off", 1, 2, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ix.IsAvailable(context.Background(), tt.unitID, day(tt.in), day(tt.out), tt.exclude)
			if err != nil {
				t.Fatalf("IsAvailable() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAvailable_UnknownUnit(t *testing.T) {
	ix := NewIndex(fakeUnits{}, &fakeReservations{})

	ok, err := ix.IsAvailable(context.Background(), "ghost", day(1), day(2), "")
	if !errors.Is(err, reservationserrors.ErrUnitNotFound) {
		t.Fatalf("IsAvailable() error = %v, want ErrUnitNotFound", err)
	}
	if ok {
		t.Error("unknown unit reported available")
	}
}

func TestCheck_Reasons(t *testing.T) {
	rows := &fakeReservations{rows: []*model.Reservation{res("a", "r1", 10, 13, model.BookingCheckedIn)}}
	ix := NewIndex(fakeUnits{}, rows)

	err := ix.Check(context.Background(), &model.Unit{ID: "r1", Available: true}, day(12), day(14), "")
	if !errors.Is(err, reservationserrors.ErrDateRangeConflict) {
		t.Errorf("Check() error = %v, want ErrDateRangeConflict", err)
	}

	err = ix.Check(context.Background(), &model.Unit{ID: "r1", Available: false}, day(1), day(2), "")
	if !errors.Is(err, reservationserrors.ErrUnitUnavailable) {
		t.Errorf("Check() error = %v, want ErrUnitUnavailable", err)
	}
	if rows.calls != 1 {
		t.Errorf("disabled unit should not query reservations, calls = %d", rows.calls)
	}
}

func TestCheck_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection reset")
	ix := NewIndex(fakeUnits{}, &fakeReservations{err: storeErr})

	_, err := ix.IsUnitAvailable(context.Background(), &model.Unit{ID: "r1", Available: true}, day(1), day(2), "")
	if !errors.Is(err, storeErr) {
		t.Errorf("IsUnitAvailable() error = %v, want wrapped store error", err)
	}
}

// Every range over a fixed calendar must be reported free exactly when it
// is disjoint from all booked stays.
func TestIsAvailable_MatchesDisjointness(t *testing.T) {
	booked := []*model.Reservation{
		res("a", "r1", 3, 5, model.BookingConfirmed),
		res("b", "r1", 5, 6, model.BookingPending),
		res("c", "r1", 9, 14, model.BookingCheckedIn),
		res("d", "r1", 20, 21, model.BookingConfirmed),
	}
	ix := NewIndex(fakeUnits{}, &fakeReservations{rows: booked})
	unit := &model.Unit{ID: "r1", Available: true}

	for in := 1; in <= 24; in++ {
		for out := in + 1; out <= 25; out++ {
			want := true
			for _, r := range booked {
				if day(in).Before(r.CheckOutDate) && r.CheckInDate.Before(day(out)) {
					want = false
				}
			}
			got, err := ix.IsUnitAvailable(context.Background(), unit, day(in), day(out), "")
			if err != nil {
				t.Fatalf("[%d,%d) error = %v", in, out, err)
			}
			if got != want {
				t.Errorf("[%d,%d) available = %v, want %v", in, out, got, want)
			}
		}
	}
}

func TestFindAvailableUnits(t *testing.T) {
	units := []*model.Unit{
		{ID: "u1", Available: true},
		{ID: "u2", Available: true},
		{ID: "u3", Available: false},
		{ID: "u4", Available: true},
	}
	rows := &fakeReservations{rows: []*model.Reservation{res("x", "u2", 10, 12, model.BookingConfirmed)}}
	ix := NewIndex(fakeUnits{}, rows)

	seq := ix.FindAvailableUnits(context.Background(), units, day(11), day(13))

	collect := func() []string {
		var ids []string
		for u, err := range seq {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ids = append(ids, u.ID)
		}
		return ids
	}

	first := collect()
	if fmt.Sprint(first) != "[u1 u4]" {
		t.Errorf("first pass = %v, want [u1 u4]", first)
	}

	rows.rows[0].BookingStatus = model.BookingCancelled
	second := collect()
	if fmt.Sprint(second) != "[u1 u2 u4]" {
		t.Errorf("second pass = %v, want [u1 u2 u4]", second)
	}
}

func TestFindAvailableUnits_LazyAndStopsOnError(t *testing.T) {
	rows := &fakeReservations{}
	ix := NewIndex(fakeUnits{}, rows)
	units := []*model.Unit{{ID: "a", Available: true}, {ID: "b", Available: true}, {ID: "c", Available: true}}

	seq := ix.FindAvailableUnits(context.Background(), units, day(1), day(2))
	if rows.calls != 0 {
		t.Fatalf("sequence evaluated eagerly, calls = %d", rows.calls)
	}
	for range seq {
		break
	}
	if rows.calls != 1 {
		t.Errorf("early break should stop lookups, calls = %d", rows.calls)
	}

	rows.err = errors.New("boom")
	var gotErr error
	n := 0
	for _, err := range seq {
		n++
		gotErr = err
	}
	if gotErr == nil || n != 1 {
		t.Errorf("expected a single error yield, got n=%d err=%v", n, gotErr)
	}
}
