// Package locker provides the per-unit critical section that makes the
// availability check and the reservation write atomic across callers.
package locker

import (
	"context"
	"fmt"
	"time"

	"innkeep/internal/reservations/repository"
	"innkeep/pkg/config"
)

// Release ends a critical section. It is safe to call once.
type Release func(ctx context.Context) error

type UnitLocker interface {
	// Lock enters the critical section for unitID. Distributed backends fail
	// fast with ErrLockHeld instead of waiting.
	Lock(ctx context.Context, unitID string) (Release, error)
}

// New builds the backend selected by LOCK_BACKEND.
func New(cfg *config.Config) (UnitLocker, error) {
	switch cfg.LockBackend {
	case config.LockBackendMemory:
		return NewMemoryLocker(), nil
	case config.LockBackendMongo:
		return NewMongoLocker(repository.NewReservationLockRepository(cfg), cfg.LockTTL), nil
	case config.LockBackendRedis:
		return NewRedisLocker(cfg.Client.Redis, cfg.LockTTL), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}

func lockKey(unitID string) string {
	return "unit_lock_" + unitID
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl).UTC()
}
