package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

func eventMessage(t *testing.T, eventID string, event model.ReservationEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return kafka.Message{
		Key:     event.ReservationID,
		Value:   value,
		Headers: map[string]string{kafka.HeaderEventID: eventID},
	}
}

func validEvent() model.ReservationEvent {
	return model.ReservationEvent{
		Type:          model.EventReservationPayment,
		ReservationID: "r1",
		ReferenceCode: "HTL-0A1B2C3D",
		Actor:         "desk-1",
		Amount:        model.NewMoney(50, 0),
		OccurredAt:    time.Date(2025, 12, 12, 10, 0, 0, 0, time.UTC),
	}
}

func TestAuditor_Handle(t *testing.T) {
	unknown := validEvent()
	unknown.Type = "reservation.teleported"
	noActor := validEvent()
	noActor.Actor = ""

	tests := []struct {
		name      string
		msg       kafka.Message
		permanent bool
	}{
		{"valid event", eventMessage(t, "e1", validEvent()), false},
		{"unknown type", eventMessage(t, "e2", unknown), true},
		{"missing actor", eventMessage(t, "e3", noActor), true},
		{"not json", kafka.Message{Value: []byte("{"), Headers: map[string]string{}}, true},
	}

	auditor := NewAuditor(logger.Discard())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auditor.Handle(context.Background(), tt.msg)
			if !tt.permanent {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
				t.Errorf("expected permanent error, got %v", err)
			}
		})
	}
}

func TestAuditor_DeduplicatesRedeliveries(t *testing.T) {
	auditor := NewAuditor(logger.Discard())
	auditor.capacity = 2

	for _, id := range []string{"e1", "e1", "e2"} {
		if err := auditor.Handle(context.Background(), eventMessage(t, id, validEvent())); err != nil {
			t.Fatalf("handle %s: %v", id, err)
		}
	}
	if len(auditor.seen) != 2 {
		t.Fatalf("expected 2 remembered ids, got %d", len(auditor.seen))
	}

	if !auditor.remember("e3") {
		t.Fatal("e3 is new")
	}
	if _, ok := auditor.seen["e1"]; ok {
		t.Error("oldest id should have been evicted")
	}
	if auditor.remember("e2") {
		t.Error("e2 is still remembered")
	}
}
