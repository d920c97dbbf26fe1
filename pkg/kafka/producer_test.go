package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"innkeep/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu     sync.Mutex
	err    error
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("res-1").
		WithValue(map[string]string{"event_type": "reservation.created"}).
		WithEventType("reservation.created").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("expected timestamp header")
	}

	if _, err := NewMessage().WithValue("x").Build(); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("missing key: got %v, want ErrEmptyKey", err)
	}
	if _, err := NewMessage().WithKey("k").Build(); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("missing value: got %v, want ErrEmptyValue", err)
	}
	if _, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build(); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("unencodable value: got %v, want ErrInvalidMessage", err)
	}
}

func TestRetryCountPastNine(t *testing.T) {
	msg := Message{}
	for range 12 {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}
}

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "reservation-events", "", logger.Discard())

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next PublishFunc) error {
		seen = append(seen, "outer:"+msg.Topic)
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next PublishFunc) error {
		seen = append(seen, "inner")
		return next(ctx, msg)
	})

	msg, _ := NewMessage().WithKey("res-1").WithValue("payload").WithEventType("reservation.confirmed").Build()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "res-1" {
		t.Errorf("key = %q, want res-1", w.msgs[0].Key)
	}
	if got := header(w.msgs[0], HeaderEventType); got != "reservation.confirmed" {
		t.Errorf("event-type header = %q", got)
	}
	if len(seen) != 2 || seen[0] != "outer:reservation-events" || seen[1] != "inner" {
		t.Errorf("middleware order = %v", seen)
	}
}

func TestProducerFailureGoesToDLQ(t *testing.T) {
	w := &fakeWriter{err: errors.New("connection refused")}
	dlq := &fakeWriter{}
	p := newProducer(w, dlq, "reservation-events", "reservation-events-dlq", logger.Discard())

	msg, _ := NewMessage().WithKey("res-1").WithValue("payload").Build()
	err := p.Publish(context.Background(), msg)
	if err == nil {
		t.Fatal("expected publish error")
	}
	if ClassifyError(err) != ErrorTypeTransient {
		t.Errorf("ClassifyError() = %v, want transient", ClassifyError(err))
	}
	if len(dlq.msgs) != 1 {
		t.Fatalf("DLQ got %d messages, want 1", len(dlq.msgs))
	}
	if got := header(dlq.msgs[0], HeaderOriginalTopic); got != "reservation-events" {
		t.Errorf("original-topic = %q", got)
	}
	if _, ok := msg.Headers[HeaderOriginalTopic]; ok {
		t.Error("DLQ headers leaked into the caller's message")
	}
}

func TestProducerClosed(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "t", "", logger.Discard())
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !w.closed {
		t.Error("writer not closed")
	}
	msg, _ := NewMessage().WithKey("k").WithValue("v").Build()
	if err := p.Publish(context.Background(), msg); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("Publish after Close = %v, want ErrProducerClosed", err)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeUnknown},
		{errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{errors.New("i/o timeout"), ErrorTypeTransient},
		{errors.New("unknown topic or partition"), ErrorTypePermanent},
		{errors.New("something odd"), ErrorTypePermanent},
		{NewTransientError("wrapped", errors.New("x")), ErrorTypeTransient},
	}
	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
