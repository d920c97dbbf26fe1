package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"innkeep/pkg/model"
)

func TestReservationClient_CreateAndPay(t *testing.T) {
	var lastKey, lastStaff string
	var lastBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastKey = r.Header.Get("Idempotency-Key")
		lastStaff = r.Header.Get("X-Staff-ID")
		raw, _ := io.ReadAll(r.Body)
		lastBody = nil
		_ = json.Unmarshal(raw, &lastBody)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/reservations":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"id":"r1","reference_code":"HTL-0A1B2C3D","total_amount":300.00,"booking_status":"pending"}}`))
		case "/api/v1/reservations/id/r1/payments":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"payment would exceed the total","code":"INVALID_AMOUNT"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found","code":"NOT_FOUND"}`))
		}
	}))
	defer srv.Close()

	c := NewReservationClient(srv.URL, "desk-1")
	ctx := context.Background()

	r, err := c.Create(ctx, &model.ReservationRequest{UnitID: "u1", CheckIn: "2025-12-12", CheckOut: "2025-12-15"}, "key-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ReferenceCode != "HTL-0A1B2C3D" || r.TotalAmount != model.NewMoney(300, 0) {
		t.Errorf("unexpected reservation %+v", r)
	}
	if lastKey != "key-1" || lastStaff != "desk-1" || lastBody["staff_id"] != "desk-1" {
		t.Errorf("headers or staff not forwarded: key=%q staff=%q body=%v", lastKey, lastStaff, lastBody)
	}

	_, err = c.RecordPayment(ctx, "r1", model.NewMoney(500, 0), "pay-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "INVALID_AMOUNT" {
		t.Errorf("unexpected error %+v", apiErr)
	}
	if lastBody["amount"] != 500.0 {
		t.Errorf("expected amount 500 on the wire, got %v", lastBody["amount"])
	}

	_, err = c.Get(ctx, "missing")
	if !errors.As(err, &apiErr) || apiErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestReservationClient_CheckAvailabilityQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data":[{"id":"u1","name":"101","kind":"room"}]}`))
	}))
	defer srv.Close()

	c := NewReservationClient(srv.URL, "desk-1")
	in := time.Date(2025, 12, 12, 0, 0, 0, 0, time.UTC)
	units, err := c.CheckAvailability(context.Background(), "h1", in, in.AddDate(0, 0, 3), model.AvailabilityFilter{Kind: model.UnitRoom, Guests: 2})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if len(units) != 1 || units[0].Name != "101" {
		t.Errorf("unexpected units %+v", units)
	}
	if gotQuery != "check_in=2025-12-12&check_out=2025-12-15&guests=2&kind=room" {
		t.Errorf("unexpected query %s", gotQuery)
	}
}

func TestWaitForHealthy_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewHttpClient(srv.URL).WaitForHealthy(context.Background(), 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
