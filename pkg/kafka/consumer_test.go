package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"innkeep/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	drained   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{pending: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		m := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	if len(r.pending) == 0 {
		select {
		case <-r.drained:
		default:
			close(r.drained)
		}
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func runUntilDrained(t *testing.T, c *Consumer, r *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-r.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain the reader")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start() = %v, want context.Canceled", err)
	}
}

func TestConsumerRetriesTransientErrors(t *testing.T) {
	r := newFakeReader(kafka.Message{Key: []byte("res-1"), Value: []byte(`{}`)})
	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("broker busy", errors.New("timeout"))
		}
		return nil
	}
	dlq := &fakeWriter{}
	c := newConsumer(r, dlq, "reservation-events", "audit", "dlq", handler, logger.Discard())
	c.retryBackoff = 0

	runUntilDrained(t, c, r)

	if calls != 3 {
		t.Errorf("handler called %d times, want 3", calls)
	}
	if len(r.committed) != 1 {
		t.Errorf("committed %d, want 1", len(r.committed))
	}
	if len(dlq.msgs) != 0 {
		t.Errorf("DLQ got %d messages, want 0", len(dlq.msgs))
	}
}

func TestConsumerParksPermanentFailures(t *testing.T) {
	r := newFakeReader(kafka.Message{Key: []byte("res-1"), Value: []byte(`not json`), Offset: 42})
	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		var v map[string]any
		return msg.DecodeValue(&v)
	}
	dlq := &fakeWriter{}
	c := newConsumer(r, dlq, "reservation-events", "audit", "dlq", handler, logger.Discard())
	c.retryBackoff = 0

	var seen int
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seen++
		return next(ctx, msg)
	})

	runUntilDrained(t, c, r)

	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
	if seen != 1 {
		t.Errorf("middleware saw %d calls, want 1", seen)
	}
	if len(dlq.msgs) != 1 {
		t.Fatalf("DLQ got %d messages, want 1", len(dlq.msgs))
	}
	if got := header(dlq.msgs[0], "original-offset"); got != "42" {
		t.Errorf("original-offset = %q, want 42", got)
	}
	if len(r.committed) != 1 {
		t.Errorf("committed %d, want 1", len(r.committed))
	}
}

func TestConsumerClosed(t *testing.T) {
	c := newConsumer(newFakeReader(), nil, "t", "g", "", func(context.Context, Message) error { return nil }, logger.Discard())
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrConsumerClosed) {
		t.Errorf("Start after Close = %v, want ErrConsumerClosed", err)
	}
}
