package locker

import (
	"context"
	"sync"
)

type memoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewMemoryLocker serialises callers within one process. Waiting callers
// give up when their context ends.
func NewMemoryLocker() UnitLocker {
	return &memoryLocker{slots: make(map[string]*slot)}
}

func (l *memoryLocker) Lock(ctx context.Context, unitID string) (Release, error) {
	l.mu.Lock()
	s, ok := l.slots[unitID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[unitID] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(unitID, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-s.ch
			l.unref(unitID, s)
		})
		return nil
	}, nil
}

func (l *memoryLocker) unref(unitID string, s *slot) {
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, unitID)
	}
	l.mu.Unlock()
}
