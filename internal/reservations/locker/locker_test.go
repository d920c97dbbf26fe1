package locker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	reservationserrors "innkeep/internal/reservations/errors"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestMemoryLocker_SerialisesSameUnit(t *testing.T) {
	l := NewMemoryLocker()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(context.Background(), "unit-1")
			if err != nil {
				t.Errorf("Lock() error = %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			_ = release(context.Background())
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxInside)
	}
}

func TestMemoryLocker_DifferentUnitsIndependent(t *testing.T) {
	l := NewMemoryLocker()
	releaseA, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("Lock(a) error = %v", err)
	}
	defer releaseA(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	releaseB, err := l.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("Lock(b) blocked by a: %v", err)
	}
	_ = releaseB(context.Background())
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	l := NewMemoryLocker()
	release, _ := l.Lock(context.Background(), "a")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "a"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Lock() error = %v, want deadline exceeded", err)
	}

	_ = release(context.Background())
	_ = release(context.Background())

	again, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("Lock() after release error = %v", err)
	}
	_ = again(context.Background())

	ml := l.(*memoryLocker)
	if len(ml.slots) != 0 {
		t.Errorf("slots leaked: %d", len(ml.slots))
	}
}

type fakeLockRepo struct {
	mu    sync.Mutex
	locks map[string]model.ReservationLock
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: make(map[string]model.ReservationLock)}
}

func (f *fakeLockRepo) Create(_ context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.locks[lock.ID]; ok {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}
	}
	f.locks[lock.ID] = *lock
	return lock, nil
}

func (f *fakeLockRepo) Delete(_ context.Context, lockID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.locks[lockID]; ok && l.Token == token {
		delete(f.locks, lockID)
	}
	return nil
}

func (f *fakeLockRepo) DeleteExpired(_ context.Context, lockID string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.locks[lockID]; ok && !l.ExpiresAt.After(now) {
		delete(f.locks, lockID)
		return true, nil
	}
	return false, nil
}

func TestMongoLocker(t *testing.T) {
	repo := newFakeLockRepo()
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	l := &mongoLocker{locks: repo, ttl: 10 * time.Second, now: func() time.Time { return now }}

	release, err := l.Lock(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	if _, err := l.Lock(context.Background(), "unit-1"); !errors.Is(err, reservationserrors.ErrLockHeld) {
		t.Fatalf("second Lock() error = %v, want ErrLockHeld", err)
	}

	if err := release(context.Background()); err != nil {
		t.Fatalf("release error = %v", err)
	}
	release, err = l.Lock(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Lock() after release error = %v", err)
	}

	now = now.Add(11 * time.Second)
	stolen, err := l.Lock(context.Background(), "unit-1")
	if err != nil {
		t.Fatalf("Lock() over expired lock error = %v", err)
	}

	// The first holder's late release must not remove the new holder's lock.
	_ = release(context.Background())
	if _, err := l.Lock(context.Background(), "unit-1"); !errors.Is(err, reservationserrors.ErrLockHeld) {
		t.Errorf("stale release freed the lock: %v", err)
	}
	_ = stolen(context.Background())
}
