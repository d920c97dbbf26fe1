package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"innkeep/internal/reservations/pricing"
	"innkeep/internal/reservations/service"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// mockReservationService embeds the interface so tests only stub what they call.
type mockReservationService struct {
	service.ReservationService

	availabilityFunc func(ctx context.Context, hotelID string, checkIn, checkOut time.Time, filter model.AvailabilityFilter) ([]*model.Unit, error)
	quoteFunc        func(ctx context.Context, unitID string, req *model.QuoteRequest) (*pricing.Quote, error)
	createFunc       func(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error)
	getByIDFunc      func(ctx context.Context, id string) (*model.Reservation, error)
	getByCodeFunc    func(ctx context.Context, code string) (*model.Reservation, error)
	listByUnitFunc   func(ctx context.Context, unitID string, limit int, offset int64) ([]*model.Reservation, int64, error)
	confirmFunc      func(ctx context.Context, id string, action *model.StaffAction) (*model.Reservation, error)
	checkInFunc      func(ctx context.Context, id string, action *model.StayAction) (*model.Reservation, error)
	paymentFunc      func(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error)
	rescheduleFunc   func(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Reservation, error)
}

func (m *mockReservationService) CheckAvailability(ctx context.Context, hotelID string, checkIn, checkOut time.Time, filter model.AvailabilityFilter) ([]*model.Unit, error) {
	return m.availabilityFunc(ctx, hotelID, checkIn, checkOut, filter)
}

func (m *mockReservationService) QuotePrice(ctx context.Context, unitID string, req *model.QuoteRequest) (*pricing.Quote, error) {
	return m.quoteFunc(ctx, unitID, req)
}

func (m *mockReservationService) CreateReservation(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	return m.createFunc(ctx, req)
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockReservationService) GetByReferenceCode(ctx context.Context, code string) (*model.Reservation, error) {
	return m.getByCodeFunc(ctx, code)
}

func (m *mockReservationService) ListByUnit(ctx context.Context, unitID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return m.listByUnitFunc(ctx, unitID, limit, offset)
}

func (m *mockReservationService) Confirm(ctx context.Context, id string, action *model.StaffAction) (*model.Reservation, error) {
	return m.confirmFunc(ctx, id, action)
}

func (m *mockReservationService) CheckIn(ctx context.Context, id string, action *model.StayAction) (*model.Reservation, error) {
	return m.checkInFunc(ctx, id, action)
}

func (m *mockReservationService) RecordPayment(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
	return m.paymentFunc(ctx, id, req)
}

func (m *mockReservationService) Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Reservation, error) {
	return m.rescheduleFunc(ctx, id, req)
}

func newTestRouter(svc service.ReservationService) *httprouter.Router {
	router := httprouter.New()
	NewReservationHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp.Code
}

func TestCheckAvailability_QueryParameters(t *testing.T) {
	var gotHotel string
	var gotIn, gotOut time.Time
	var gotFilter model.AvailabilityFilter
	svc := &mockReservationService{
		availabilityFunc: func(_ context.Context, hotelID string, checkIn, checkOut time.Time, filter model.AvailabilityFilter) ([]*model.Unit, error) {
			gotHotel, gotIn, gotOut, gotFilter = hotelID, checkIn, checkOut, filter
			return []*model.Unit{{ID: "u1", Name: "101"}}, nil
		},
	}
	router := newTestRouter(svc)

	tests := []struct {
		name       string
		query      string
		expectCode int
		errCode    string
	}{
		{"valid range", "?check_in=2025-12-12&check_out=2025-12-15", http.StatusOK, ""},
		{"valid with filters", "?check_in=2025-12-12&check_out=2025-12-15&kind=room&guests=2", http.StatusOK, ""},
		{"missing check_in", "?check_out=2025-12-15", http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"malformed check_out", "?check_in=2025-12-12&check_out=15-12-2025", http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"unknown kind", "?check_in=2025-12-12&check_out=2025-12-15&kind=villa", http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"non-numeric guests", "?check_in=2025-12-12&check_out=2025-12-15&guests=many", http.StatusBadRequest, apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, "/api/v1/hotels/h1/availability"+tt.query, "")
			if w.Code != tt.expectCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectCode, w.Code, w.Body.String())
			}
			if tt.errCode != "" {
				if code := decodeErrorCode(t, w); code != tt.errCode {
					t.Errorf("expected error code %s, got %s", tt.errCode, code)
				}
			}
		})
	}

	w := serve(router, http.MethodGet, "/api/v1/hotels/h1/availability?check_in=2025-12-12&check_out=2025-12-15&kind=event_space&guests=40", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotHotel != "h1" {
		t.Errorf("expected hotel h1, got %s", gotHotel)
	}
	if !gotIn.Equal(time.Date(2025, 12, 12, 0, 0, 0, 0, time.UTC)) || !gotOut.Equal(time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected range %v - %v", gotIn, gotOut)
	}
	if gotFilter.Kind != model.UnitEventSpace || gotFilter.Guests != 40 {
		t.Errorf("unexpected filter %+v", gotFilter)
	}
}

func TestCreate(t *testing.T) {
	var received *model.ReservationRequest
	svc := &mockReservationService{
		createFunc: func(_ context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
			received = req
			return &model.Reservation{
				ID:            "r1",
				ReferenceCode: "HTL-0A1B2C3D",
				TotalAmount:   model.NewMoney(300, 0),
				BookingStatus: model.BookingPending,
			}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"unit_id":"507f1f77bcf86cd799439011","guest":{"name":"Ada"},"check_in":"2025-12-12","check_out":"2025-12-15","adults":2,"booking_source":"walk_in","staff_id":"s1"}`
	w := serve(router, http.MethodPost, "/api/v1/reservations", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if received == nil || received.CheckIn != "2025-12-12" || received.Adults != 2 {
		t.Fatalf("service received %+v", received)
	}

	var resp struct {
		Data struct {
			ReferenceCode string  `json:"reference_code"`
			TotalAmount   float64 `json:"total_amount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ReferenceCode != "HTL-0A1B2C3D" || resp.Data.TotalAmount != 300 {
		t.Errorf("unexpected body %+v", resp.Data)
	}
}

func TestCreate_RejectsUnknownFields(t *testing.T) {
	called := false
	svc := &mockReservationService{
		createFunc: func(context.Context, *model.ReservationRequest) (*model.Reservation, error) {
			called = true
			return nil, nil
		},
	}
	w := serve(newTestRouter(svc), http.MethodPost, "/api/v1/reservations", `{"unit_id":"x","total_amount":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if called {
		t.Error("service must not be called for a malformed body")
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode int
		errCode    string
	}{
		{"not found", apperrors.NotFoundWithID("Reservation", "r1"), http.StatusNotFound, apperrors.CodeNotFound},
		{"date conflict", apperrors.DateRangeConflict("overlap", nil), http.StatusConflict, apperrors.CodeDateRangeConflict},
		{"invalid range", apperrors.InvalidDateRange("bad", nil), http.StatusBadRequest, apperrors.CodeInvalidDateRange},
		{"invalid transition", apperrors.InvalidTransition("no", nil), http.StatusConflict, apperrors.CodeInvalidTransition},
		{"plain error hidden", context.Canceled, http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{
				confirmFunc: func(context.Context, string, *model.StaffAction) (*model.Reservation, error) {
					return nil, tt.err
				},
			}
			w := serve(newTestRouter(svc), http.MethodPost, "/api/v1/reservations/id/r1/confirm", `{"staff_id":"s1"}`)
			if w.Code != tt.expectCode {
				t.Fatalf("expected status %d, got %d", tt.expectCode, w.Code)
			}
			if code := decodeErrorCode(t, w); code != tt.errCode {
				t.Errorf("expected code %s, got %s", tt.errCode, code)
			}
		})
	}
}

func TestLifecycleRoutes(t *testing.T) {
	var gotID string
	var gotPayment model.Money
	var gotActual *time.Time
	var gotReschedule *model.RescheduleRequest
	ok := func(id string) (*model.Reservation, error) {
		gotID = id
		return &model.Reservation{ID: id}, nil
	}
	svc := &mockReservationService{
		checkInFunc: func(_ context.Context, id string, action *model.StayAction) (*model.Reservation, error) {
			gotActual = action.ActualTime
			return ok(id)
		},
		paymentFunc: func(_ context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
			gotPayment = req.Amount
			return ok(id)
		},
		rescheduleFunc: func(_ context.Context, id string, req *model.RescheduleRequest) (*model.Reservation, error) {
			gotReschedule = req
			return ok(id)
		},
		getByCodeFunc: func(_ context.Context, code string) (*model.Reservation, error) {
			return ok(code)
		},
	}
	router := newTestRouter(svc)

	w := serve(router, http.MethodPost, "/api/v1/reservations/id/r7/check-in", `{"staff_id":"s1","actual_time":"2025-12-12T14:30:00Z"}`)
	if w.Code != http.StatusOK || gotID != "r7" {
		t.Fatalf("check-in: status %d id %s", w.Code, gotID)
	}
	if gotActual == nil || !gotActual.Equal(time.Date(2025, 12, 12, 14, 30, 0, 0, time.UTC)) {
		t.Errorf("check-in actual time not forwarded: %v", gotActual)
	}

	w = serve(router, http.MethodPost, "/api/v1/reservations/id/r8/payments", `{"staff_id":"s1","amount":"99.50"}`)
	if w.Code != http.StatusOK || gotID != "r8" {
		t.Fatalf("payment: status %d id %s", w.Code, gotID)
	}
	if gotPayment != model.NewMoney(99, 50) {
		t.Errorf("expected 99.50, got %s", gotPayment)
	}

	w = serve(router, http.MethodPost, "/api/v1/reservations/id/r9/reschedule", `{"staff_id":"s1","check_in":"2025-12-20","check_out":"2025-12-22"}`)
	if w.Code != http.StatusOK || gotReschedule == nil || gotReschedule.CheckOut != "2025-12-22" {
		t.Fatalf("reschedule: status %d req %+v", w.Code, gotReschedule)
	}

	w = serve(router, http.MethodGet, "/api/v1/reservations/code/HTL-0A1B2C3D", "")
	if w.Code != http.StatusOK || gotID != "HTL-0A1B2C3D" {
		t.Fatalf("get by code: status %d id %s", w.Code, gotID)
	}
}

func TestListByUnit_Pagination(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	svc := &mockReservationService{
		listByUnitFunc: func(_ context.Context, unitID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.Reservation{{ID: "r1", UnitID: unitID}}, 7, nil
		},
	}
	router := newTestRouter(svc)

	w := serve(router, http.MethodGet, "/api/v1/units/id/u1/reservations?limit=5&offset=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotLimit != 5 || gotOffset != 2 {
		t.Errorf("expected limit 5 offset 2, got %d %d", gotLimit, gotOffset)
	}
	var resp struct {
		TotalCount int64 `json:"total_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalCount != 7 {
		t.Errorf("expected total 7, got %d", resp.TotalCount)
	}

	w = serve(router, http.MethodGet, "/api/v1/units/id/u1/reservations?limit=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid limit, got %d", w.Code)
	}
}

func TestQuotePrice(t *testing.T) {
	svc := &mockReservationService{
		quoteFunc: func(_ context.Context, unitID string, req *model.QuoteRequest) (*pricing.Quote, error) {
			if unitID != "u1" || req.CheckIn != "2025-12-12" {
				t.Errorf("unexpected quote args %s %+v", unitID, req)
			}
			return &pricing.Quote{UnitID: unitID, Kind: model.UnitRoom, Nights: 3, Total: model.NewMoney(300, 0)}, nil
		},
	}
	w := serve(newTestRouter(svc), http.MethodPost, "/api/v1/units/id/u1/quote", `{"check_in":"2025-12-12","check_out":"2025-12-15"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"total":300.00`) {
		t.Errorf("expected total 300.00 in body, got %s", w.Body.String())
	}
}
