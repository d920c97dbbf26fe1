package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"innkeep/pkg/model"
)

const dateLayout = "2006-01-02"

// ReservationClient calls the reservation HTTP API as one staff member.
type ReservationClient struct {
	http    *HttpClient
	staffID string
}

func NewReservationClient(baseURL, staffID string) *ReservationClient {
	c := NewHttpClient(baseURL)
	c.Headers["X-Staff-ID"] = staffID
	return &ReservationClient{http: c, staffID: staffID}
}

// QuoteResult mirrors the quote payload.
type QuoteResult struct {
	UnitID   string         `json:"unit_id"`
	Kind     model.UnitKind `json:"kind"`
	Nights   int            `json:"nights,omitempty"`
	Rate     model.Money    `json:"rate,omitempty"`
	Segments []struct {
		Segment  model.PriceSegment `json:"segment"`
		Rate     model.Money        `json:"rate"`
		Weekend  bool               `json:"weekend"`
		Subtotal model.Money        `json:"subtotal"`
	} `json:"segments,omitempty"`
	Total    model.Money    `json:"total"`
}

func (c *ReservationClient) CheckAvailability(ctx context.Context, hotelID string, checkIn, checkOut time.Time, filter model.AvailabilityFilter) ([]*model.Unit, error) {
	q := url.Values{}
	q.Set("check_in", checkIn.Format(dateLayout))
	q.Set("check_out", checkOut.Format(dateLayout))
	if filter.Kind != "" {
		q.Set("kind", string(filter.Kind))
	}
	if filter.Guests > 0 {
		q.Set("guests", strconv.Itoa(filter.Guests))
	}

	var units []*model.Unit
	err := c.get(ctx, "/api/v1/hotels/"+url.PathEscape(hotelID)+"/availability?"+q.Encode(), &units)
	return units, err
}

func (c *ReservationClient) Quote(ctx context.Context, unitID string, req *model.QuoteRequest) (*QuoteResult, error) {
	var quote QuoteResult
	if err := c.post(ctx, "/api/v1/units/id/"+url.PathEscape(unitID)+"/quote", req, "", &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// Create books a unit. A non-empty idempotencyKey makes retries safe.
func (c *ReservationClient) Create(ctx context.Context, req *model.ReservationRequest, idempotencyKey string) (*model.Reservation, error) {
	if req.StaffID == "" {
		req.StaffID = c.staffID
	}
	return c.reservation(ctx, http.MethodPost, "/api/v1/reservations", req, idempotencyKey)
}

func (c *ReservationClient) Get(ctx context.Context, id string) (*model.Reservation, error) {
	return c.reservation(ctx, http.MethodGet, "/api/v1/reservations/id/"+url.PathEscape(id), nil, "")
}

func (c *ReservationClient) GetByReferenceCode(ctx context.Context, code string) (*model.Reservation, error) {
	return c.reservation(ctx, http.MethodGet, "/api/v1/reservations/code/"+url.PathEscape(code), nil, "")
}

func (c *ReservationClient) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	return c.action(ctx, id, "confirm", model.StaffAction{StaffID: c.staffID}, "")
}

func (c *ReservationClient) CheckIn(ctx context.Context, id string, at *time.Time) (*model.Reservation, error) {
	return c.action(ctx, id, "check-in", model.StayAction{StaffID: c.staffID, ActualTime: at}, "")
}

func (c *ReservationClient) CheckOut(ctx context.Context, id string, at *time.Time) (*model.Reservation, error) {
	return c.action(ctx, id, "check-out", model.StayAction{StaffID: c.staffID, ActualTime: at}, "")
}

func (c *ReservationClient) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	return c.action(ctx, id, "cancel", model.StaffAction{StaffID: c.staffID}, "")
}

func (c *ReservationClient) MarkNoShow(ctx context.Context, id string) (*model.Reservation, error) {
	return c.action(ctx, id, "no-show", model.StaffAction{StaffID: c.staffID}, "")
}

func (c *ReservationClient) RecordPayment(ctx context.Context, id string, amount model.Money, idempotencyKey string) (*model.Reservation, error) {
	return c.action(ctx, id, "payments", model.PaymentRequest{StaffID: c.staffID, Amount: amount}, idempotencyKey)
}

func (c *ReservationClient) RecordRefund(ctx context.Context, id string, amount model.Money, idempotencyKey string) (*model.Reservation, error) {
	return c.action(ctx, id, "refunds", model.PaymentRequest{StaffID: c.staffID, Amount: amount}, idempotencyKey)
}

func (c *ReservationClient) Reschedule(ctx context.Context, id string, checkIn, checkOut time.Time) (*model.Reservation, error) {
	req := model.RescheduleRequest{
		StaffID:  c.staffID,
		CheckIn:  checkIn.Format(dateLayout),
		CheckOut: checkOut.Format(dateLayout),
	}
	return c.action(ctx, id, "reschedule", req, "")
}

func (c *ReservationClient) action(ctx context.Context, id, verb string, body any, idempotencyKey string) (*model.Reservation, error) {
	return c.reservation(ctx, http.MethodPost, "/api/v1/reservations/id/"+url.PathEscape(id)+"/"+verb, body, idempotencyKey)
}

func (c *ReservationClient) reservation(ctx context.Context, method, path string, body any, idempotencyKey string) (*model.Reservation, error) {
	var r model.Reservation
	var err error
	if method == http.MethodGet {
		err = c.get(ctx, path, &r)
	} else {
		err = c.post(ctx, path, body, idempotencyKey, &r)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *ReservationClient) get(ctx context.Context, path string, target any) error {
	resp, err := c.http.GET(ctx, path)
	if err != nil {
		return err
	}
	return decodeData(resp, target)
}

func (c *ReservationClient) post(ctx context.Context, path string, body any, idempotencyKey string, target any) error {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	resp, err := c.http.POSTWithHeaders(ctx, path, body, headers)
	if err != nil {
		return err
	}
	return decodeData(resp, target)
}

func decodeData(resp *Response, target any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	envelope := struct {
		Data any `json:"data"`
	}{Data: target}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
