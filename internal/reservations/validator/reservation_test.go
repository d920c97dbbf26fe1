package validator

import (
	"errors"
	"testing"

	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"
)

func validRequest() *model.ReservationRequest {
	return &model.ReservationRequest{
		UnitID:        "665f1c2e8b3e4a0012345678",
		Guest:         model.Guest{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+16502530000"},
		CheckIn:       "2025-12-10",
		CheckOut:      "2025-12-13",
		Adults:        2,
		BookingSource: model.SourceFrontDesk,
		StaffID:       "staff-1",
	}
}

func TestValidateReservationRequest(t *testing.T) {
	v := NewReservationValidator(logger.Discard())

	tests := []struct {
		name      string
		mutate    func(r *model.ReservationRequest)
		wantField string
	}{
		{"valid", func(r *model.ReservationRequest) {}, ""},
		{"bad unit id", func(r *model.ReservationRequest) { r.UnitID = "room-101" }, "UnitID"},
		{"short guest name", func(r *model.ReservationRequest) { r.Guest.Name = "A" }, "Name"},
		{"bad email", func(r *model.ReservationRequest) { r.Guest.Email = "not-an-email" }, "Email"},
		{"phone not e164", func(r *model.ReservationRequest) { r.Guest.Phone = "650-253-0000" }, "Phone"},
		{"bad date format", func(r *model.ReservationRequest) { r.CheckIn = "10/12/2025" }, "CheckIn"},
		{"no adults", func(r *model.ReservationRequest) { r.Adults = 0 }, "Adults"},
		{"unknown source", func(r *model.ReservationRequest) { r.BookingSource = "fax" }, "BookingSource"},
		{"missing staff", func(r *model.ReservationRequest) { r.StaffID = "" }, "StaffID"},
		{"bad segment mode", func(r *model.ReservationRequest) {
			r.Segments = []model.SegmentRequest{{Date: "2025-12-13", Mode: "weekly", Count: 1}}
		}, "Mode"},
		{"valid segment", func(r *model.ReservationRequest) {
			r.Segments = []model.SegmentRequest{{Date: "2025-12-13", Mode: model.ModeHourly, Count: 4}}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := v.Validate(req)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var errs validation.Errors
			if !errors.As(err, &errs) {
				t.Fatalf("Validate() error = %v, want validation.Errors", err)
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want one on %s", errs, tt.wantField)
			}
		})
	}
}

func TestValidateActions(t *testing.T) {
	v := NewReservationValidator(logger.Discard())

	if err := v.Validate(&model.StaffAction{}); err == nil {
		t.Error("expected missing staff_id to fail")
	}
	if err := v.Validate(&model.PaymentRequest{StaffID: "s1", Amount: -5}); err != nil {
		t.Errorf("amount sign is not a validator concern, got %v", err)
	}
	if err := v.Validate(&model.RescheduleRequest{StaffID: "s1", CheckIn: "2025-12-10", CheckOut: "2025-12-1"}); err == nil {
		t.Error("expected malformed check_out to fail")
	}
}
