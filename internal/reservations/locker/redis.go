package locker

import (
	"context"
	"fmt"
	"time"

	reservationserrors "innkeep/internal/reservations/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client redis.Scripter
	setNX  func(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) UnitLocker {
	return &redisLocker{client: client, setNX: client.SetNX, ttl: ttl}
}

func (l *redisLocker) Lock(ctx context.Context, unitID string) (Release, error) {
	key := "innkeep:" + lockKey(unitID)
	token := uuid.NewString()

	ok, err := l.setNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire unit lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrLockHeld, unitID)
	}

	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}
