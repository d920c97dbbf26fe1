package service

import (
	"context"
	"testing"

	"innkeep/internal/units/repository"
	"innkeep/internal/units/validator"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

func newTestService() UnitService {
	log := logger.Discard()
	return NewUnitService(repository.NewMemoryUnitRepository(), validator.NewUnitValidator(log), &config.Config{Log: log})
}

func room(hotelID, name string) *model.Unit {
	return &model.Unit{
		HotelID:   hotelID,
		Kind:      model.UnitRoom,
		Name:      name,
		MaxAdults: 2,
		Rates:     model.RateSchedule{BaseRate: model.NewMoney(100, 0)},
		Available: true,
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	noRate := room("h1", "101")
	noRate.Rates = model.RateSchedule{}
	hall := &model.Unit{HotelID: "h1", Kind: model.UnitEventSpace, Name: "Hall", MaxGuests: 0, Rates: model.RateSchedule{HourlyRate: model.NewMoney(50, 0)}}
	villa := room("h1", "Villa")
	villa.Kind = "villa"

	tests := []struct {
		name    string
		unit    *model.Unit
		errCode string
	}{
		{"valid room", room("  h1 ", "  Room   101 "), ""},
		{"room without rate", noRate, apperrors.CodeValidation},
		{"event space without capacity", hall, apperrors.CodeValidation},
		{"unknown kind", villa, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(ctx, tt.unit)
			if tt.errCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tt.unit.ID == "" {
					t.Error("expected id to be assigned")
				}
				if tt.unit.HotelID != "h1" || tt.unit.Name != "Room 101" {
					t.Errorf("expected sanitized fields, got %q %q", tt.unit.HotelID, tt.unit.Name)
				}
				return
			}
			if !apperrors.HasCode(err, tt.errCode) {
				t.Errorf("expected %s, got %v", tt.errCode, err)
			}
		})
	}
}

func TestGetByID_Errors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, ""); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("empty id: expected INVALID_INPUT, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "not-an-object-id"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("malformed id: expected INVALID_INPUT, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "507f1f77bcf86cd799439011"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown id: expected NOT_FOUND, got %v", err)
	}
}

func TestListByHotel(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, name := range []string{"103", "101", "102"} {
		if err := svc.Create(ctx, room("h1", name)); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if err := svc.Create(ctx, room("h2", "201")); err != nil {
		t.Fatalf("create: %v", err)
	}

	units, total, err := svc.ListByHotel(ctx, "h1", 2, 1)
	if err != nil {
		t.Fatalf("ListByHotel: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(units) != 2 || units[0].Name != "102" || units[1].Name != "103" {
		t.Errorf("unexpected page %v", names(units))
	}

	all, err := svc.AllByHotel(ctx, "h1")
	if err != nil {
		t.Fatalf("AllByHotel: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 units, got %d", len(all))
	}

	if _, _, err := svc.ListByHotel(ctx, "  ", 10, 0); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("blank hotel: expected INVALID_INPUT, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	unit := room("h1", "101")
	if err := svc.Create(ctx, unit); err != nil {
		t.Fatalf("create: %v", err)
	}

	unavailable := false
	newName := "Suite 101"
	updated, err := svc.Update(ctx, unit.ID, &model.UnitUpdate{Name: &newName, Available: &unavailable})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != newName || updated.Available {
		t.Errorf("unexpected unit after update %+v", updated)
	}

	stored, err := svc.GetByID(ctx, unit.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Name != newName || stored.Available {
		t.Errorf("update not persisted: %+v", stored)
	}

	zero := 0
	if _, err := svc.Update(ctx, unit.ID, &model.UnitUpdate{MaxAdults: &zero}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("room with no adult capacity: expected VALIDATION_ERROR, got %v", err)
	}
}

func names(units []*model.Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Name
	}
	return out
}
