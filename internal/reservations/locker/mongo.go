package locker

import (
	"context"
	"fmt"
	"time"

	reservationserrors "innkeep/internal/reservations/errors"
	"innkeep/internal/reservations/repository"
	"innkeep/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoLocker struct {
	locks repository.ReservationLockRepository
	ttl   time.Duration
	now   func() time.Time
}

// NewMongoLocker takes an advisory lock document per unit. A second writer
// hits the unique _id and is turned away.
func NewMongoLocker(locks repository.ReservationLockRepository, ttl time.Duration) UnitLocker {
	return &mongoLocker{locks: locks, ttl: ttl, now: time.Now}
}

func (l *mongoLocker) Lock(ctx context.Context, unitID string) (Release, error) {
	lockID := lockKey(unitID)
	token := uuid.NewString()

	err := l.create(ctx, lockID, token)
	if mongo.IsDuplicateKeyError(err) {
		// The TTL monitor runs about once a minute, so a stale lock can
		// outlive its expiry. Clear it and try once more.
		cleared, delErr := l.locks.DeleteExpired(ctx, lockID, l.now().UTC())
		if delErr != nil {
			return nil, fmt.Errorf("failed to clear expired lock: %w", delErr)
		}
		if cleared {
			err = l.create(ctx, lockID, token)
		}
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", reservationserrors.ErrLockHeld, unitID)
		}
		return nil, fmt.Errorf("failed to acquire unit lock: %w", err)
	}

	return func(ctx context.Context) error {
		return l.locks.Delete(ctx, lockID, token)
	}, nil
}

func (l *mongoLocker) create(ctx context.Context, lockID, token string) error {
	_, err := l.locks.Create(ctx, &model.ReservationLock{
		ID:        lockID,
		Token:     token,
		ExpiresAt: expiry(l.now(), l.ttl),
	})
	return err
}
