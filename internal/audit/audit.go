// Package audit turns the reservation event stream into a structured audit
// trail. Each accepted event becomes one log record.
package audit

import (
	"context"
	"fmt"
	"sync"

	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

const defaultSeenCapacity = 10_000

var knownEvents = map[model.ReservationEventType]bool{
	model.EventReservationCreated:     true,
	model.EventReservationConfirmed:   true,
	model.EventReservationCheckedIn:   true,
	model.EventReservationCheckedOut:  true,
	model.EventReservationCancelled:   true,
	model.EventReservationNoShow:      true,
	model.EventReservationPayment:     true,
	model.EventReservationRefund:      true,
	model.EventReservationRescheduled: true,
}

// Auditor records reservation events. Redelivered events, recognised by their
// event id, are recorded once.
type Auditor struct {
	log *logger.Logger

	mu       sync.Mutex
	seen     map[string]struct{}
	order    []string
	capacity int
}

func NewAuditor(log *logger.Logger) *Auditor {
	return &Auditor{
		log:      log,
		seen:     make(map[string]struct{}),
		capacity: defaultSeenCapacity,
	}
}

// Handle satisfies kafka.MessageHandler. Malformed events are permanent
// failures and end up in the dead letter topic.
func (a *Auditor) Handle(_ context.Context, msg kafka.Message) error {
	var event model.ReservationEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if err := check(event); err != nil {
		return kafka.NewPermanentError("invalid reservation event", err)
	}

	eventID := msg.GetEventID()
	if eventID != "" && !a.remember(eventID) {
		a.log.Debug("Duplicate reservation event skipped", "event_id", eventID)
		return nil
	}

	attrs := []any{
		"event_id", eventID,
		"event_type", event.Type,
		"reservation_id", event.ReservationID,
		"reference_code", event.ReferenceCode,
		"unit_id", event.UnitID,
		"hotel_id", event.HotelID,
		"booking_status", event.BookingStatus,
		"payment_status", event.PaymentStatus,
		"total_amount", event.TotalAmount.String(),
		"amount_paid", event.AmountPaid.String(),
		"balance_due", event.BalanceDue.String(),
		"actor", event.Actor,
		"occurred_at", event.OccurredAt,
		"partition", msg.Partition,
		"offset", msg.Offset,
	}
	if event.Amount != 0 {
		attrs = append(attrs, "amount", event.Amount.String())
	}
	a.log.Info("Reservation audit record", attrs...)
	return nil
}

// remember reports whether id is new, evicting the oldest ids past capacity.
func (a *Auditor) remember(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.seen[id]; ok {
		return false
	}
	a.seen[id] = struct{}{}
	a.order = append(a.order, id)
	if len(a.order) > a.capacity {
		delete(a.seen, a.order[0])
		a.order = a.order[1:]
	}
	return true
}

func check(event model.ReservationEvent) error {
	if !knownEvents[event.Type] {
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	if event.ReservationID == "" {
		return fmt.Errorf("missing reservation id")
	}
	if event.Actor == "" {
		return fmt.Errorf("missing actor")
	}
	if event.OccurredAt.IsZero() {
		return fmt.Errorf("missing occurred_at")
	}
	return nil
}
